package geometry

import "math"

var negInf = math.Inf(-1)

// IoU computes the Intersection over Union between two boxes.
//
// The intersection rectangle starts at the larger of the two top-left corners
// and ends at the smaller of the two bottom-right corners. A negative extent
// means the boxes do not overlap and is clamped to zero.
//
// The union follows inclusion-exclusion:
//
//	Area(Union) = Area(A) + Area(B) - Area(Intersection)
//
// A zero union only happens when both boxes are degenerate; the overlap is
// then defined as 0 rather than NaN.
//
// Arguments:
//   - a: The first box.
//   - b: The second box.
//
// Returns:
//   - float64: A value between 0.0 and 1.0.
//
// Example Usage:
// ```go
//
//	a := Box{XMin: 0, YMin: 0, XMax: 10, YMax: 10}
//	b := Box{XMin: 5, YMin: 5, XMax: 15, YMax: 15}
//	iou := IoU(a, b) // 25 / 175 = 0.142857
//
// ```
func IoU(a, b Box) float64 {
	iw := max(0, min(a.XMax, b.XMax)-max(a.XMin, b.XMin))
	ih := max(0, min(a.YMax, b.YMax)-max(a.YMin, b.YMin))
	inter := iw * ih

	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}

	return inter / union
}

// MaxOverlap returns the highest IoU between box and any of candidates, and its index.
//
// Ties resolve to the lowest index. With no candidates the index is -1 and the
// overlap is negative infinity, so no threshold comparison can succeed.
func MaxOverlap(box Box, candidates []Box) (float64, int) {
	best, idx := negInf, -1
	for j, c := range candidates {
		if ov := IoU(box, c); ov > best {
			best, idx = ov, j
		}
	}
	return best, idx
}
