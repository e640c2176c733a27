package evaluation

import (
	"math"
	"runtime"

	"github.com/pkg/errors"
)

// DefaultOverlapThreshold is the PASCAL VOC IoU threshold for a match.
const DefaultOverlapThreshold = 0.5

// Method selects how the precision-recall curve is integrated.
type Method string

const (
	// MethodArea integrates the exact area under the precision envelope.
	MethodArea Method = "area"
	// MethodVOC07 is the legacy 11-point interpolation. It is recognized so
	// that configurations asking for it fail loudly, but it is not supported.
	MethodVOC07 Method = "voc07"
)

// SentinelPolicy controls whether sentinel AP values take part in the mean.
type SentinelPolicy string

const (
	// SentinelExclude averages only classes that produced a real AP.
	SentinelExclude SentinelPolicy = "exclude"
	// SentinelInclude averages every class AP, sentinels included. This
	// reproduces the VOC devkit python evaluation.
	SentinelInclude SentinelPolicy = "include"
)

// Config holds every parameter of an evaluation run.
type Config struct {
	// OverlapThreshold is the IoU a detection must strictly exceed to match.
	OverlapThreshold float64 `json:"overlap_threshold" yaml:"overlapThreshold"`
	// Classes is the ordered label set. It fixes the report order.
	Classes []string `json:"classes" yaml:"classes"`
	// Method is the AP integration method.
	Method Method `json:"method" yaml:"method"`
	// SentinelPolicy decides how sentinel AP values affect the mean.
	SentinelPolicy SentinelPolicy `json:"sentinel_policy" yaml:"sentinelPolicy"`
	// Workers is the number of classes evaluated concurrently.
	Workers int `json:"workers" yaml:"workers"`
}

// DefaultConfig returns the standard VOC configuration for the given classes.
//
// Arguments:
//   - classes: The ordered label set.
//
// Returns:
//   - Config: A configuration with a 0.5 threshold, area integration and
//     sentinels excluded from the mean.
//
// @example
// cfg := DefaultConfig([]string{"person", "car"})
// cfg.OverlapThreshold = 0.7
func DefaultConfig(classes []string) Config {
	return Config{
		OverlapThreshold: DefaultOverlapThreshold,
		Classes:          classes,
		Method:           MethodArea,
		SentinelPolicy:   SentinelExclude,
		Workers:          runtime.NumCPU(),
	}
}

// Validate checks the configuration for values the evaluator cannot honor.
func (c Config) Validate() error {
	if math.IsNaN(c.OverlapThreshold) || c.OverlapThreshold < 0 || c.OverlapThreshold > 1 {
		return errors.Wrapf(ErrInvalidConfig, "overlap threshold %v outside [0, 1]", c.OverlapThreshold)
	}

	if len(c.Classes) == 0 {
		return errors.Wrap(ErrInvalidConfig, "no classes configured")
	}
	seen := make(map[string]struct{}, len(c.Classes))
	for _, cls := range c.Classes {
		if cls == "" {
			return errors.Wrap(ErrInvalidConfig, "empty class name")
		}
		if _, dup := seen[cls]; dup {
			return errors.Wrapf(ErrInvalidConfig, "duplicate class %q", cls)
		}
		seen[cls] = struct{}{}
	}

	switch c.Method {
	case MethodArea:
	case MethodVOC07:
		return errors.Wrap(ErrUnsupportedMethod, "11-point interpolation is not supported, use \"area\"")
	default:
		return errors.Wrapf(ErrUnsupportedMethod, "unknown method %q", c.Method)
	}

	switch c.SentinelPolicy {
	case SentinelExclude, SentinelInclude:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown sentinel policy %q", c.SentinelPolicy)
	}

	if c.Workers < 0 {
		return errors.Wrapf(ErrInvalidConfig, "workers must not be negative, got %d", c.Workers)
	}

	return nil
}
