package annotations

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-eval/evaluation"
	"github.com/nvr-ai/go-eval/geometry"
)

// ParseText parses a text annotation file.
//
// Each line holds `<index> <class> <xmin> <ymin> <xmax> <ymax>` with integer,
// one-based pixel coordinates. Objects whose class is not in classes are
// skipped. Coordinates are clamped to the image before being shifted to
// zero-based:
//   - an object starting right of the image (xmin > width) is dropped.
//   - negative xmin/ymin become 1.
//   - xmax > width becomes width-1, ymax > height becomes height-1.
//   - objects left inverted by clamping are dropped.
//
// Text annotations carry no difficulty information, so every object is
// non-difficult.
//
// Arguments:
//   - r: The annotation source.
//   - width, height: Size of the annotated image in pixels.
//   - classes: The label set to keep.
//
// Returns:
//   - []evaluation.GroundTruthObject: The parsed objects in file order.
//   - error: If a line is malformed.
func ParseText(r io.Reader, width, height int, classes []string) ([]evaluation.GroundTruthObject, error) {
	keep := classSet(classes)

	var objs []evaluation.GroundTruthObject
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 6 {
			return nil, errors.Errorf("line %d: expected 6 fields, got %d", line, len(fields))
		}

		name := fields[1]
		if _, ok := keep[name]; !ok {
			continue
		}

		var coords [4]int
		for i := range coords {
			v, err := strconv.Atoi(fields[2+i])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: coordinate %d", line, i)
			}
			coords[i] = v
		}

		xmin, ymin, xmax, ymax := coords[0], coords[1], coords[2], coords[3]
		if xmin > width {
			continue
		}
		if xmin < 0 {
			xmin = 1
		}
		if ymin < 0 {
			ymin = 1
		}
		if xmax > width {
			xmax = width - 1
		}
		if ymax > height {
			ymax = height - 1
		}

		// Clamping can invert a box that hugs the right or bottom edge.
		box, err := geometry.NewBox(float64(xmin), float64(ymin), float64(xmax), float64(ymax))
		if err != nil {
			continue
		}

		objs = append(objs, evaluation.GroundTruthObject{
			Class: name,
			Box:   box.Shift(-1),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading text annotations")
	}

	return objs, nil
}

func classSet(classes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		set[c] = struct{}{}
	}
	return set
}
