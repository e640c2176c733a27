// Package evaluation - PASCAL VOC style detection matching and mean Average Precision.
//
// The pipeline for a single class is strictly sequential:
//
//	Dataset -> ClassIndex -> Match -> BuildCurve -> AveragePrecision
//
// Classes are independent of each other and the Evaluator fans them out over
// a worker pool, building a fresh ClassIndex for every class.
package evaluation

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-eval/geometry"
)

// GroundTruthObject is a single annotated object in an image.
type GroundTruthObject struct {
	// Class is the label of the object.
	Class string `json:"class"`
	// Box is the zero-based bounding box.
	Box geometry.Box `json:"bbox"`
	// Difficult objects do not count as positives but can absorb a detection.
	Difficult bool `json:"difficult"`
}

// Dataset is the ground truth for an evaluation run.
type Dataset struct {
	// ImageIDs lists every image in the evaluation set, in order.
	ImageIDs []string `json:"image_ids"`
	// Objects maps an image id to its annotated objects. Images listed in
	// ImageIDs may be missing here; they are treated as having no objects.
	Objects map[string][]GroundTruthObject `json:"objects"`
}

// Validate rejects duplicate or empty image ids and invalid ground-truth boxes.
func (d *Dataset) Validate() error {
	if d == nil {
		return errors.Wrap(ErrInvalidDataset, "dataset is nil")
	}

	seen := make(map[string]struct{}, len(d.ImageIDs))
	for _, id := range d.ImageIDs {
		if id == "" {
			return errors.Wrap(ErrInvalidDataset, "empty image id")
		}
		if _, dup := seen[id]; dup {
			return errors.Wrapf(ErrInvalidDataset, "duplicate image id %q", id)
		}
		seen[id] = struct{}{}
	}

	for id, objs := range d.Objects {
		for i, obj := range objs {
			if err := obj.Box.Validate(); err != nil {
				return errors.Wrapf(err, "image %q object %d (%s)", id, i, obj.Class)
			}
		}
	}

	return nil
}

// Detection is a single scored box produced by a detector for one class.
type Detection struct {
	// ImageID identifies the image the detection belongs to.
	ImageID string `json:"image_id"`
	// Confidence is the detector score.
	Confidence float64 `json:"confidence"`
	// Box is the zero-based bounding box.
	Box geometry.Box `json:"bbox"`
}

// Validate rejects detections with no image, a non-finite or negative score, or a bad box.
func (d Detection) Validate() error {
	if d.ImageID == "" {
		return errors.Wrap(ErrInvalidDetection, "empty image id")
	}
	if math.IsNaN(d.Confidence) || math.IsInf(d.Confidence, 0) {
		return errors.Wrapf(ErrInvalidDetection, "non-finite confidence on image %q", d.ImageID)
	}
	if d.Confidence < 0 {
		return errors.Wrapf(ErrInvalidDetection, "negative confidence %f on image %q", d.Confidence, d.ImageID)
	}
	if err := d.Box.Validate(); err != nil {
		return fmt.Errorf("%w: image %q: %w", ErrInvalidDetection, d.ImageID, err)
	}
	return nil
}

// ValidateDetections validates every detection, reporting the first failure with its position.
func ValidateDetections(dets []Detection) error {
	for i, d := range dets {
		if err := d.Validate(); err != nil {
			return errors.Wrapf(err, "detection %d", i)
		}
	}
	return nil
}
