// Package geometry - Axis-aligned box primitives used by the evaluation pipeline.
package geometry

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidBox is returned when a box has non-finite coordinates or inverted corners.
var ErrInvalidBox = errors.New("invalid bounding box")

// Box is an axis-aligned bounding box in zero-based pixel space.
//
// Unlike images.Rect the corners are continuous: XMax/YMax are not exclusive
// pixel indices, so the width of a box is simply XMax - XMin.
type Box struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
}

// NewBox creates a box and validates it.
//
// Arguments:
//   - xmin, ymin: The top-left corner.
//   - xmax, ymax: The bottom-right corner.
//
// Returns:
//   - Box: The constructed box.
//   - error: ErrInvalidBox (wrapped) when the coordinates are not finite or inverted.
//
// @example
// box, err := NewBox(0, 0, 10, 10)
func NewBox(xmin, ymin, xmax, ymax float64) (Box, error) {
	b := Box{XMin: xmin, YMin: ymin, XMax: xmax, YMax: ymax}
	if err := b.Validate(); err != nil {
		return Box{}, err
	}
	return b, nil
}

// Validate checks that every coordinate is finite and that the corners are ordered.
func (b Box) Validate() error {
	for _, v := range []float64{b.XMin, b.YMin, b.XMax, b.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrInvalidBox, "non-finite coordinate in %s", b)
		}
	}
	if b.XMin > b.XMax {
		return errors.Wrapf(ErrInvalidBox, "xmin %.2f > xmax %.2f", b.XMin, b.XMax)
	}
	if b.YMin > b.YMax {
		return errors.Wrapf(ErrInvalidBox, "ymin %.2f > ymax %.2f", b.YMin, b.YMax)
	}
	return nil
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 {
	return b.XMax - b.XMin
}

// Height returns the vertical extent of the box.
func (b Box) Height() float64 {
	return b.YMax - b.YMin
}

// Area returns the area of the box. Degenerate boxes have zero area.
func (b Box) Area() float64 {
	return b.Width() * b.Height()
}

// Shift translates every coordinate by delta.
//
// Result files are written 1-based while ground truth is zero-based, so
// readers and writers shift by +1/-1 at the boundary.
func (b Box) Shift(delta float64) Box {
	return Box{
		XMin: b.XMin + delta,
		YMin: b.YMin + delta,
		XMax: b.XMax + delta,
		YMax: b.YMax + delta,
	}
}

func (b Box) String() string {
	return fmt.Sprintf("[%.1f, %.1f, %.1f, %.1f]", b.XMin, b.YMin, b.XMax, b.YMax)
}
