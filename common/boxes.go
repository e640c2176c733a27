package common

import (
	"encoding/json"
	"image"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-eval/evaluation"
)

// SizeFunc reports the pixel size of an image.
type SizeFunc func(imageID string) (image.Point, error)

// LoadBoxes reads raw detector output from a JSON file mapping image ids to boxes.
//
// @example
// {"000001": [{"label": "dog", "confidence": 0.9, "x1": 48, "y1": 240, "x2": 195, "y2": 371}]}
func LoadBoxes(path string) (map[string][]BoundingBox, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading detector output")
	}

	var boxes map[string][]BoundingBox
	if err := json.Unmarshal(data, &boxes); err != nil {
		return nil, errors.Wrapf(err, "decoding detector output %s", path)
	}
	return boxes, nil
}

// ToDetections converts raw detector output into per-class detection lists.
//
// Images are visited in sorted id order so the output is deterministic.
//
// Arguments:
//   - raw: Boxes keyed by image id.
//   - classes: Labels to keep. Empty keeps every label.
//   - size: When non-nil, boxes are treated as normalized and scaled to the
//     size it reports. When nil, boxes are already in pixels.
//
// Returns:
//   - map[string][]evaluation.Detection: Detections keyed by class.
//   - error: If an image size cannot be determined.
func ToDetections(raw map[string][]BoundingBox, classes []string, size SizeFunc) (map[string][]evaluation.Detection, error) {
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make(map[string][]evaluation.Detection, len(classes))
	for _, id := range ids {
		boxes := raw[id]
		if size != nil {
			pt, err := size(id)
			if err != nil {
				return nil, errors.Wrapf(err, "image %q", id)
			}
			scaled := make([]BoundingBox, len(boxes))
			for i, b := range boxes {
				scaled[i] = b.Scale(pt.X, pt.Y)
			}
			boxes = scaled
		}
		GroupByClass(id, boxes, classes, out)
	}
	return out, nil
}
