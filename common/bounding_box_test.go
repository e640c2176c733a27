package common

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-eval/evaluation"
	"github.com/nvr-ai/go-eval/geometry"
)

func TestBoundingBoxString(t *testing.T) {
	box := BoundingBox{Label: "person", Confidence: 0.5, X1: 100, Y1: 100, X2: 200, Y2: 300}
	assert.Equal(t, "Object person (confidence 0.500000): (100.00, 100.00), (200.00, 300.00)", box.String())
}

func TestScale(t *testing.T) {
	tests := []struct {
		name string
		in   BoundingBox
		want BoundingBox
	}{
		{
			name: "inside",
			in:   BoundingBox{X1: 0.25, Y1: 0.5, X2: 0.5, Y2: 0.75},
			want: BoundingBox{X1: 160, Y1: 240, X2: 320, Y2: 360},
		},
		{
			name: "clamped",
			in:   BoundingBox{X1: -0.5, Y1: 0.5, X2: 1.5, Y2: 2},
			want: BoundingBox{X1: 0, Y1: 240, X2: 640, Y2: 480},
		},
		{
			name: "swapped corners",
			in:   BoundingBox{X1: 0.5, Y1: 0.75, X2: 0.25, Y2: 0.5},
			want: BoundingBox{X1: 160, Y1: 240, X2: 320, Y2: 360},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Scale(640, 480))
		})
	}
}

func TestDetection(t *testing.T) {
	b := BoundingBox{Label: "car", Confidence: 0.75, X1: 1, Y1: 2, X2: 3, Y2: 4}
	assert.Equal(t, evaluation.Detection{
		ImageID:    "img",
		Confidence: 0.75,
		Box:        geometry.Box{XMin: 1, YMin: 2, XMax: 3, YMax: 4},
	}, b.Detection("img"))
}

func TestGroupByClass(t *testing.T) {
	into := map[string][]evaluation.Detection{}
	boxes := []BoundingBox{
		{Label: "car", Confidence: 0.9, X2: 10, Y2: 10},
		{Label: "dog", Confidence: 0.8, X2: 10, Y2: 10},
		{Label: "car", Confidence: math32.NaN(), X2: 10, Y2: 10},
		{Label: "person", Confidence: 0.5, X2: 5, Y2: 5},
	}

	kept := GroupByClass("a", boxes, []string{"car", "person"}, into)
	assert.Equal(t, 2, kept)
	assert.Len(t, into["car"], 1)
	assert.Len(t, into["person"], 1)
	assert.NotContains(t, into, "dog")

	kept = GroupByClass("b", boxes[:2], nil, into)
	assert.Equal(t, 2, kept)
	assert.Len(t, into["car"], 2)
	assert.Equal(t, "b", into["dog"][0].ImageID)
}

func TestToDetections(t *testing.T) {
	raw := map[string][]BoundingBox{
		"b": {{Label: "car", Confidence: 0.4, X1: 0.5, Y1: 0.5, X2: 1, Y2: 1}},
		"a": {{Label: "car", Confidence: 0.9, X1: 0, Y1: 0, X2: 0.5, Y2: 0.5}},
	}

	t.Run("pixels", func(t *testing.T) {
		out, err := ToDetections(raw, nil, nil)
		require.NoError(t, err)
		require.Len(t, out["car"], 2)
		assert.Equal(t, "a", out["car"][0].ImageID)
		assert.Equal(t, 0.5, out["car"][0].Box.XMax)
	})

	t.Run("normalized", func(t *testing.T) {
		out, err := ToDetections(raw, []string{"car"}, func(string) (image.Point, error) {
			return image.Point{X: 200, Y: 100}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, geometry.Box{XMin: 100, YMin: 50, XMax: 200, YMax: 100}, out["car"][1].Box)
	})

	t.Run("size error", func(t *testing.T) {
		_, err := ToDetections(raw, nil, func(string) (image.Point, error) {
			return image.Point{}, errors.New("no image")
		})
		assert.ErrorContains(t, err, `image "a"`)
	})
}

func TestLoadBoxes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boxes.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"img": [{"label": "dog", "confidence": 0.5, "x1": 1, "y1": 2, "x2": 3, "y2": 4}]}`), 0o644))

	boxes, err := LoadBoxes(path)
	require.NoError(t, err)
	assert.Equal(t, []BoundingBox{{Label: "dog", Confidence: 0.5, X1: 1, Y1: 2, X2: 3, Y2: 4}}, boxes["img"])

	require.NoError(t, os.WriteFile(path, []byte(`[`), 0o644))
	_, err = LoadBoxes(path)
	assert.Error(t, err)
}
