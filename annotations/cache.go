package annotations

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-eval/evaluation"
)

// Cache is the on-disk form of a parsed ground truth.
//
// Format and Classes record how the annotations were filtered, so a cache
// built for a different label set or layout is never reused.
type Cache struct {
	Format  Format              `json:"format"`
	Classes []string            `json:"classes"`
	Dataset *evaluation.Dataset `json:"dataset"`
}

// LoadCache reads a cache previously written by SaveCache.
func LoadCache(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading annotation cache")
	}

	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, errors.Wrapf(err, "decoding annotation cache %s", path)
	}
	if err := cache.Dataset.Validate(); err != nil {
		return nil, errors.Wrapf(err, "annotation cache %s", path)
	}

	return &cache, nil
}

// SaveCache writes the cache to path as JSON, creating parent directories.
func SaveCache(path string, cache *Cache) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating cache directory")
	}

	data, err := json.Marshal(cache)
	if err != nil {
		return errors.Wrap(err, "encoding annotation cache")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "writing annotation cache")
	}
	return nil
}

// Matches reports whether the cache was built from exactly this image set,
// annotation format and label set. Class order does not matter.
func (c *Cache) Matches(ids []string, format Format, classes []string) bool {
	if c.Format != format || !slices.Equal(c.Dataset.ImageIDs, ids) {
		return false
	}
	return slices.Equal(sortedCopy(c.Classes), sortedCopy(classes))
}

func sortedCopy(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}
