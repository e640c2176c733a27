package evaluation

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-eval/geometry"
)

// Outcome is the label the matcher assigns to a detection.
type Outcome int

const (
	// FalsePositive marks a detection that matched nothing, or a ground truth that was already claimed.
	FalsePositive Outcome = iota
	// TruePositive marks a detection that claimed an unmatched, non-difficult ground truth.
	TruePositive
	// Ignored marks a detection absorbed by a difficult ground truth. It counts as neither tp nor fp.
	Ignored
)

func (o Outcome) String() string {
	switch o {
	case TruePositive:
		return "tp"
	case FalsePositive:
		return "fp"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}

// MatchResult is the per-detection labelling of one class.
type MatchResult struct {
	// Detections is the input sorted by descending confidence.
	Detections []Detection
	// Outcomes is parallel to Detections.
	Outcomes []Outcome
	// TP and FP are 0/1 sequences over the counted (non-ignored) detections,
	// in confidence order. They always have the same length.
	TP []float64
	FP []float64
	// UnknownImages counts detections whose image is absent from the index.
	UnknownImages int
}

// Counts returns the number of true positives, false positives and ignored detections.
func (m *MatchResult) Counts() (tp, fp, ignored int) {
	for _, o := range m.Outcomes {
		switch o {
		case TruePositive:
			tp++
		case FalsePositive:
			fp++
		case Ignored:
			ignored++
		}
	}
	return tp, fp, ignored
}

// SortDetections returns a copy of dets ordered by descending confidence.
//
// The sort is stable: detections with equal confidence keep their input order,
// which makes tp/fp assignment at tied scores deterministic.
func SortDetections(dets []Detection) []Detection {
	sorted := make([]Detection, len(dets))
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})
	return sorted
}

// Match greedily assigns each detection of a class to its best overlapping ground truth.
//
// Detections are walked in descending confidence. For each one the ground
// truth with the highest IoU in the same image is selected (first index on
// ties). Then:
//   - IoU <= threshold, or no ground truth in the image: false positive.
//   - the selected object is difficult: ignored.
//   - the selected object was already claimed: false positive (duplicate).
//   - otherwise: true positive, and the object is claimed.
//
// Detections on images unknown to the index are false positives.
//
// Arguments:
//   - index: The ground-truth index of the class. Its matched flags are mutated.
//   - dets: The detections of the class, in any order.
//   - threshold: The IoU a detection must strictly exceed.
//
// Returns:
//   - *MatchResult: The labelled detections.
//   - error: If any detection is invalid.
//
// @example
// idx, _ := NewClassIndex(dataset, "person")
// res, err := Match(idx, dets, 0.5)
func Match(index *ClassIndex, dets []Detection, threshold float64) (*MatchResult, error) {
	if index == nil {
		return nil, errors.New("nil class index")
	}
	if err := ValidateDetections(dets); err != nil {
		return nil, err
	}

	sorted := SortDetections(dets)
	res := &MatchResult{
		Detections: sorted,
		Outcomes:   make([]Outcome, len(sorted)),
		TP:         make([]float64, 0, len(sorted)),
		FP:         make([]float64, 0, len(sorted)),
	}

	for d, det := range sorted {
		outcome := FalsePositive

		entry, ok := index.lookup(det.ImageID)
		if !ok {
			res.UnknownImages++
		} else {
			ovmax, jmax := geometry.MaxOverlap(det.Box, entry.boxes)
			if ovmax > threshold {
				switch {
				case entry.difficult[jmax]:
					outcome = Ignored
				case entry.matched[jmax]:
					outcome = FalsePositive
				default:
					outcome = TruePositive
					entry.matched[jmax] = true
				}
			}
		}

		res.Outcomes[d] = outcome
		switch outcome {
		case TruePositive:
			res.TP = append(res.TP, 1)
			res.FP = append(res.FP, 0)
		case FalsePositive:
			res.TP = append(res.TP, 0)
			res.FP = append(res.FP, 1)
		}
	}

	return res, nil
}
