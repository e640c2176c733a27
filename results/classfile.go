// Package results - Reading and writing detection result files and evaluation reports.
package results

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-eval/evaluation"
	"github.com/nvr-ai/go-eval/geometry"
)

// ClassFilePath returns the path of the detection file of class under dir.
//
// @example
// ClassFilePath("eval", "person") // eval/results/result_person.txt
func ClassFilePath(dir, class string) string {
	return filepath.Join(dir, "results", fmt.Sprintf("result_%s.txt", class))
}

// WriteClassFile writes detections in the per-class VOC result format.
//
// Each line is `<image> <score> <xmin> <ymin> <xmax> <ymax>` with a three
// decimal score and one-based, one decimal coordinates.
func WriteClassFile(w io.Writer, dets []evaluation.Detection) error {
	bw := bufio.NewWriter(w)
	for _, d := range dets {
		b := d.Box.Shift(1)
		if _, err := fmt.Fprintf(bw, "%s %.3f %.1f %.1f %.1f %.1f\n",
			d.ImageID, d.Confidence, b.XMin, b.YMin, b.XMax, b.YMax); err != nil {
			return errors.Wrap(err, "writing detection")
		}
	}
	return errors.Wrap(bw.Flush(), "flushing detections")
}

// ReadClassFile parses a per-class result file written by WriteClassFile.
//
// Coordinates are shifted back to zero-based so that detections and ground
// truth share the same frame. Blank lines are skipped.
func ReadClassFile(r io.Reader) ([]evaluation.Detection, error) {
	var dets []evaluation.Detection

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 6 {
			return nil, errors.Errorf("line %d: expected 6 fields, got %d", line, len(fields))
		}

		var vals [5]float64
		for i := range vals {
			v, err := strconv.ParseFloat(fields[1+i], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: field %d", line, i+1)
			}
			vals[i] = v
		}

		box, err := geometry.NewBox(vals[1], vals[2], vals[3], vals[4])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		d := evaluation.Detection{ImageID: fields[0], Confidence: vals[0], Box: box.Shift(-1)}
		if err := d.Validate(); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		dets = append(dets, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading detections")
	}

	return dets, nil
}

// WriteDetections writes one result file per class under dir.
//
// Every class in classes gets a file, empty when it has no detections, so
// readers can tell "no detections" from "missing file".
func WriteDetections(dir string, classes []string, detections map[string][]evaluation.Detection) error {
	if err := os.MkdirAll(filepath.Join(dir, "results"), 0o755); err != nil {
		return errors.Wrap(err, "creating results directory")
	}

	for _, cls := range classes {
		if err := writeClass(ClassFilePath(dir, cls), detections[cls]); err != nil {
			return errors.Wrapf(err, "class %q", cls)
		}
	}
	return nil
}

func writeClass(path string, dets []evaluation.Detection) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating result file")
	}
	if err := WriteClassFile(f, dets); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "closing result file")
}

// ReadDetections reads the result file of every class under dir.
//
// A missing file is an error: a class without detections still has an
// (empty) file.
func ReadDetections(dir string, classes []string) (map[string][]evaluation.Detection, error) {
	detections := make(map[string][]evaluation.Detection, len(classes))
	for _, cls := range classes {
		f, err := os.Open(ClassFilePath(dir, cls))
		if err != nil {
			return nil, errors.Wrapf(err, "class %q", cls)
		}
		dets, err := ReadClassFile(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "class %q", cls)
		}
		detections[cls] = dets
	}
	return detections, nil
}
