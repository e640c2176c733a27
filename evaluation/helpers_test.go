package evaluation

import "github.com/nvr-ai/go-eval/geometry"

func box(xmin, ymin, xmax, ymax float64) geometry.Box {
	return geometry.Box{XMin: xmin, YMin: ymin, XMax: xmax, YMax: ymax}
}

func det(image string, conf float64, b geometry.Box) Detection {
	return Detection{ImageID: image, Confidence: conf, Box: b}
}

// singleObjectDataset has one non-difficult "X" object at [0,0,10,10] in img1.
func singleObjectDataset(difficult bool) *Dataset {
	return &Dataset{
		ImageIDs: []string{"img1"},
		Objects: map[string][]GroundTruthObject{
			"img1": {{Class: "X", Box: box(0, 0, 10, 10), Difficult: difficult}},
		},
	}
}
