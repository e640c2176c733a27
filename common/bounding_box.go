// Package common - Adapters from raw detector output to evaluation detections.
package common

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-eval/evaluation"
	"github.com/nvr-ai/go-eval/geometry"
)

// BoundingBox represents a detector output box with its label, confidence, and coordinates.
//
// Coordinates are either pixels or normalized to [0, 1], depending on the
// detector. Call Scale on normalized boxes before converting them.
type BoundingBox struct {
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
	X1         float32 `json:"x1"`
	Y1         float32 `json:"y1"`
	X2         float32 `json:"x2"`
	Y2         float32 `json:"y2"`
}

// String formats the bounding box information for display.
//
// @example
// box := BoundingBox{Label: "person", Confidence: 0.95, X1: 100, Y1: 100, X2: 200, Y2: 300}
// fmt.Println(box.String()) // Object person (confidence 0.950000): (100.00, 100.00), (200.00, 300.00)
func (b BoundingBox) String() string {
	return fmt.Sprintf("Object %s (confidence %f): (%.2f, %.2f), (%.2f, %.2f)",
		b.Label, b.Confidence, b.X1, b.Y1, b.X2, b.Y2)
}

// Scale maps a normalized box onto a width x height image.
//
// The result is clamped to the image, and the corners are reordered so that
// X1 <= X2 and Y1 <= Y2.
//
// Arguments:
//   - width: Image width in pixels.
//   - height: Image height in pixels.
//
// Returns:
//   - BoundingBox: The scaled box.
//
// @example
// box := BoundingBox{X1: 0.1, Y1: 0.2, X2: 0.5, Y2: 1.2}
// box.Scale(640, 480) // (64, 96), (320, 480)
func (b BoundingBox) Scale(width, height int) BoundingBox {
	w, h := float32(width), float32(height)
	clamp := func(v, limit float32) float32 {
		return math32.Max(0, math32.Min(v*limit, limit))
	}

	x1, x2 := clamp(b.X1, w), clamp(b.X2, w)
	y1, y2 := clamp(b.Y1, h), clamp(b.Y2, h)

	b.X1, b.X2 = math32.Min(x1, x2), math32.Max(x1, x2)
	b.Y1, b.Y2 = math32.Min(y1, y2), math32.Max(y1, y2)
	return b
}

// Detection converts the box into an evaluation detection for imageID.
func (b BoundingBox) Detection(imageID string) evaluation.Detection {
	return evaluation.Detection{
		ImageID:    imageID,
		Confidence: float64(b.Confidence),
		Box: geometry.Box{
			XMin: float64(b.X1),
			YMin: float64(b.Y1),
			XMax: float64(b.X2),
			YMax: float64(b.Y2),
		},
	}
}

// GroupByClass appends the boxes of one image to into, keyed by label.
//
// Boxes whose confidence is not finite are dropped, as are boxes with a
// label outside classes when classes is non-empty.
//
// Arguments:
//   - imageID: The image the boxes were detected on.
//   - boxes: Detector output for that image.
//   - classes: Labels to keep. Empty keeps every label.
//   - into: The per-class detection map to fill.
//
// Returns:
//   - int: The number of boxes kept.
func GroupByClass(imageID string, boxes []BoundingBox, classes []string, into map[string][]evaluation.Detection) int {
	keep := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		keep[c] = struct{}{}
	}

	kept := 0
	for _, b := range boxes {
		if math32.IsNaN(b.Confidence) || math32.IsInf(b.Confidence, 0) {
			continue
		}
		if len(keep) > 0 {
			if _, ok := keep[b.Label]; !ok {
				continue
			}
		}
		into[b.Label] = append(into[b.Label], b.Detection(imageID))
		kept++
	}
	return kept
}
