package annotations

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-eval/evaluation"
	"github.com/nvr-ai/go-eval/geometry"
)

type vocAnnotation struct {
	XMLName xml.Name `xml:"annotation"`
	Objects []struct {
		Name   string `xml:"name"`
		BndBox struct {
			XMin float64 `xml:"xmin"`
			YMin float64 `xml:"ymin"`
			XMax float64 `xml:"xmax"`
			YMax float64 `xml:"ymax"`
		} `xml:"bndbox"`
		Difficult *int `xml:"difficult"`
	} `xml:"object"`
}

// ParseVOC parses a PASCAL VOC XML annotation.
//
// VOC coordinates are one-based and are shifted to zero-based. A missing
// <difficult> element means the object is not difficult. Objects whose class
// is not in classes are skipped.
func ParseVOC(r io.Reader, classes []string) ([]evaluation.GroundTruthObject, error) {
	var data vocAnnotation
	if err := xml.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "decoding VOC annotation")
	}

	keep := classSet(classes)
	objs := make([]evaluation.GroundTruthObject, 0, len(data.Objects))
	for i, raw := range data.Objects {
		if _, ok := keep[raw.Name]; !ok {
			continue
		}
		bb := raw.BndBox
		box, err := geometry.NewBox(bb.XMin, bb.YMin, bb.XMax, bb.YMax)
		if err != nil {
			return nil, errors.Wrapf(err, "object %d (%s)", i, raw.Name)
		}
		objs = append(objs, evaluation.GroundTruthObject{
			Class:     raw.Name,
			Box:       box.Shift(-1),
			Difficult: raw.Difficult != nil && *raw.Difficult != 0,
		})
	}

	return objs, nil
}
