package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-eval/annotations"
	"github.com/nvr-ai/go-eval/config"
	"github.com/nvr-ai/go-eval/evaluation"
)

const annotation = `<annotation>
	<object><name>dog</name><bndbox><xmin>11</xmin><ymin>11</ymin><xmax>51</xmax><ymax>51</ymax></bndbox></object>
	<object><name>cat</name><bndbox><xmin>61</xmin><ymin>61</ymin><xmax>91</xmax><ymax>91</ymax></bndbox></object>
</annotation>`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "set.txt"), "img\n")
	writeFile(t, filepath.Join(dir, "Annotations", "img.xml"), annotation)

	cfg := config.DefaultConfig()
	cfg.ImageSet = filepath.Join(dir, "set.txt")
	cfg.AnnotationDir = filepath.Join(dir, "Annotations")
	cfg.ImageDir = filepath.Join(dir, "images")
	cfg.ResultsDir = filepath.Join(dir, "det")
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.Evaluation.Classes = []string{"dog", "cat"}
	require.NoError(t, cfg.Validate())
	return cfg
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// TestRunFromResultFiles scores one-based result files against VOC XML ground truth.
//
// @example
// go test -v -run TestRunFromResultFiles ./cmd/voc-eval
func TestRunFromResultFiles(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.ResultsDir, "results", "result_dog.txt"), "img 0.900 11.0 11.0 51.0 51.0\n")
	writeFile(t, filepath.Join(cfg.ResultsDir, "results", "result_cat.txt"), "")

	report, files, err := run(context.Background(), cfg, annotations.StaticSizer{}, quietLogger())
	require.NoError(t, err)

	dog, ok := report.Class("dog")
	require.True(t, ok)
	assert.Equal(t, evaluation.StatusScored, dog.Status)
	assert.InDelta(t, 1.0, dog.AP, 1e-12)

	cat, _ := report.Class("cat")
	assert.Equal(t, evaluation.StatusNoDetections, cat.Status)
	assert.Len(t, cat.Missed, 1)

	assert.InDelta(t, 1.0, report.MeanAP, 1e-12)
	assert.FileExists(t, files.Report)
	assert.FileExists(t, files.Summary)
	assert.FileExists(t, files.Missed)
}

func TestRunConvertsNormalizedBoxes(t *testing.T) {
	cfg := testConfig(t)
	cfg.BoxesPath = filepath.Join(t.TempDir(), "boxes.json")
	cfg.NormalizedBoxes = true
	writeFile(t, cfg.BoxesPath, `{"img": [
		{"label": "dog", "confidence": 0.8, "x1": 0.1, "y1": 0.1, "x2": 0.5, "y2": 0.5},
		{"label": "cat", "confidence": 0.7, "x1": 0.6, "y1": 0.6, "x2": 0.9, "y2": 0.9},
		{"label": "cat", "confidence": 0.6, "x1": 0.0, "y1": 0.0, "x2": 0.05, "y2": 0.05}
	]}`)

	report, _, err := run(context.Background(), cfg, annotations.StaticSizer{X: 100, Y: 100}, quietLogger())
	require.NoError(t, err)

	dog, _ := report.Class("dog")
	assert.InDelta(t, 1.0, dog.AP, 1e-6)

	cat, _ := report.Class("cat")
	assert.Equal(t, 1, cat.TruePositives)
	assert.Equal(t, 1, cat.FalsePositives)
	assert.InDelta(t, 0.5, cat.FinalPrecision, 1e-12)
	assert.FileExists(t, filepath.Join(cfg.ResultsDir, "results", "result_cat.txt"))
}

func TestRunErrors(t *testing.T) {
	t.Run("missing result file", func(t *testing.T) {
		cfg := testConfig(t)
		_, _, err := run(context.Background(), cfg, annotations.StaticSizer{}, quietLogger())
		assert.ErrorContains(t, err, "reading detections")
	})

	t.Run("missing ground truth", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.ImageSet = filepath.Join(t.TempDir(), "nope.txt")
		_, _, err := run(context.Background(), cfg, annotations.StaticSizer{}, quietLogger())
		assert.ErrorContains(t, err, "loading ground truth")
	})
}

func TestSplitClasses(t *testing.T) {
	assert.Equal(t, []string{"person", "car"}, splitClasses(" person, ,car,"))
	assert.Nil(t, splitClasses(""))
}
