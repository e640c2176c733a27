package evaluation

import (
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Sentinel is reported in place of recall, precision and AP for classes that
// cannot be scored.
const Sentinel = -1.0

// Status describes how a class result was produced.
type Status string

const (
	// StatusScored means the class produced a real AP.
	StatusScored Status = "scored"
	// StatusNoDetections means no detections were supplied for the class.
	StatusNoDetections Status = "no_detections"
	// StatusNoPositives means the class has no non-difficult ground truth, so recall is undefined.
	StatusNoPositives Status = "no_positives"
)

// ClassResult is the evaluation outcome of one class.
type ClassResult struct {
	Class  string `json:"class"`
	Status Status `json:"status"`
	// Recall and Precision have one entry per counted detection. They are nil
	// for unscored classes.
	Recall    []float64 `json:"recall,omitempty"`
	Precision []float64 `json:"precision,omitempty"`
	// FinalRecall and FinalPrecision are the last curve values, or Sentinel.
	FinalRecall    float64 `json:"final_recall"`
	FinalPrecision float64 `json:"final_precision"`
	// AP is the average precision, or Sentinel.
	AP             float64        `json:"ap"`
	Positives      int            `json:"npos"`
	Detections     int            `json:"detections"`
	TruePositives  int            `json:"tp"`
	FalsePositives int            `json:"fp"`
	Ignored        int            `json:"ignored"`
	UnknownImages  int            `json:"unknown_images"`
	Missed         []MissedObject `json:"missed,omitempty"`
	Duration       time.Duration  `json:"duration"`
}

// Scored reports whether the class produced a real AP.
func (r *ClassResult) Scored() bool {
	return r.Status == StatusScored
}

// setSentinel marks the result as unscored.
func (r *ClassResult) setSentinel(status Status) {
	r.Status = status
	r.Recall = nil
	r.Precision = nil
	r.FinalRecall = Sentinel
	r.FinalPrecision = Sentinel
	r.AP = Sentinel
}

// MeanAP averages class APs according to policy.
//
// With SentinelExclude only scored classes take part. With SentinelInclude
// every class takes part, sentinel values included, which matches the
// VOC devkit python evaluation, which averages every class.
//
// Arguments:
//   - results: The per-class results.
//   - policy: How sentinel values are treated.
//
// Returns:
//   - float64: The mean AP.
//   - int: The number of classes averaged.
//   - error: ErrNoScoredClasses when nothing is averaged.
func MeanAP(results []ClassResult, policy SentinelPolicy) (float64, int, error) {
	aps := make([]float64, 0, len(results))
	for i := range results {
		if policy == SentinelExclude && !results[i].Scored() {
			continue
		}
		aps = append(aps, results[i].AP)
	}

	if len(aps) == 0 {
		return Sentinel, 0, errors.Wrapf(ErrNoScoredClasses, "%d classes, policy %q", len(results), policy)
	}

	return stat.Mean(aps, nil), len(aps), nil
}
