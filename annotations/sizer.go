package annotations

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ImageSizer reports the pixel dimensions of an image file.
type ImageSizer interface {
	Size(path string) (image.Point, error)
}

// GoCVSizer reads image dimensions with OpenCV.
type GoCVSizer struct{}

// Size decodes the image at path and returns its width and height.
func (GoCVSizer) Size(path string) (image.Point, error) {
	mat := gocv.IMRead(path, gocv.IMReadUnchanged)
	defer mat.Close()

	if mat.Empty() {
		return image.Point{}, errors.Errorf("failed to read image %s", path)
	}

	return image.Point{X: mat.Cols(), Y: mat.Rows()}, nil
}

// StaticSizer returns the same dimensions for every image.
type StaticSizer image.Point

// Size returns the fixed dimensions.
func (s StaticSizer) Size(string) (image.Point, error) {
	return image.Point(s), nil
}
