// Package config - YAML configuration for evaluation runs.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-eval/annotations"
	"github.com/nvr-ai/go-eval/evaluation"
)

// Config describes a complete evaluation run: where the ground truth and the
// detections live, where reports go, and how the evaluator scores.
type Config struct {
	// ImageSet is the file listing the image ids to evaluate.
	ImageSet string `json:"imageSet" yaml:"imageSet"`
	// AnnotationDir holds one annotation file per image.
	AnnotationDir string `json:"annotationDir" yaml:"annotationDir"`
	// ImageDir holds the images, used to clamp text annotations and to scale
	// normalized detector boxes.
	ImageDir string `json:"imageDir" yaml:"imageDir"`
	// ImageExt is the image file extension.
	ImageExt string `json:"imageExt" yaml:"imageExt"`
	// Format is the annotation layout, "text" or "voc".
	Format annotations.Format `json:"format" yaml:"format"`
	// CachePath, when set, caches the parsed ground truth.
	CachePath string `json:"cachePath" yaml:"cachePath"`

	// ResultsDir contains results/result_<class>.txt detection files.
	ResultsDir string `json:"resultsDir" yaml:"resultsDir"`
	// BoxesPath optionally points to raw detector output in JSON. When set,
	// it is converted into per-class files under ResultsDir before scoring.
	BoxesPath string `json:"boxesPath" yaml:"boxesPath"`
	// NormalizedBoxes marks the raw boxes as normalized to [0, 1].
	NormalizedBoxes bool `json:"normalizedBoxes" yaml:"normalizedBoxes"`

	// OutputDir receives the JSON report, CSV summary and missed listing.
	OutputDir string `json:"outputDir" yaml:"outputDir"`

	// Evaluation holds the scoring parameters.
	Evaluation evaluation.Config `json:"evaluation" yaml:"evaluation"`
}

// DefaultConfig returns a configuration laid out like a VOC devkit checkout.
//
// Returns:
//   - *Config: The default configuration. Classes must still be set.
//
// @example
// cfg := DefaultConfig()
// cfg.Evaluation.Classes = []string{"person", "car"}
func DefaultConfig() *Config {
	return &Config{
		ImageSet:      "ImageSets/Main/test.txt",
		AnnotationDir: "Annotations",
		ImageDir:      "JPEGImages",
		ImageExt:      ".jpg",
		Format:        annotations.FormatVOC,
		ResultsDir:    ".",
		OutputDir:     "./eval_results",
		Evaluation:    evaluation.DefaultConfig(nil),
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
//
// Fields missing from the file keep their default values. The result is not
// validated, so callers can fill in the rest (from flags, for example) and
// call Validate once the configuration is complete.
//
// Arguments:
//   - path: The YAML file.
//
// Returns:
//   - *Config: The loaded configuration.
//   - error: If the file cannot be read or decoded.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "failed to write config file")
}

// Validate checks that the run has everything it needs.
func (c *Config) Validate() error {
	if c.ImageSet == "" {
		return errors.Wrap(evaluation.ErrInvalidConfig, "image set is required")
	}
	if c.AnnotationDir == "" {
		return errors.Wrap(evaluation.ErrInvalidConfig, "annotation directory is required")
	}
	switch c.Format {
	case annotations.FormatText, annotations.FormatVOC:
	default:
		return errors.Wrapf(evaluation.ErrInvalidConfig, "unknown annotation format %q", c.Format)
	}
	if c.ResultsDir == "" {
		return errors.Wrap(evaluation.ErrInvalidConfig, "results directory is required")
	}
	if c.OutputDir == "" {
		return errors.Wrap(evaluation.ErrInvalidConfig, "output directory is required")
	}
	if (c.Format == annotations.FormatText || c.NormalizedBoxes) && c.ImageDir == "" {
		return errors.Wrap(evaluation.ErrInvalidConfig, "image directory is required to read image sizes")
	}
	return c.Evaluation.Validate()
}

// LoaderOptions returns the ground-truth loader options of the run.
func (c *Config) LoaderOptions(sizer annotations.ImageSizer) annotations.LoaderOptions {
	return annotations.LoaderOptions{
		ImageSetPath:  c.ImageSet,
		AnnotationDir: c.AnnotationDir,
		ImageDir:      c.ImageDir,
		ImageExt:      c.ImageExt,
		Format:        c.Format,
		Classes:       c.Evaluation.Classes,
		CachePath:     c.CachePath,
		Sizer:         sizer,
	}
}

// ImagePath returns the path of the image with the given id.
func (c *Config) ImagePath(id string) string {
	return filepath.Join(c.ImageDir, id+c.ImageExt)
}
