package evaluation

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-eval/geometry"
)

// imageEntry holds the ground truth of one class in one image.
type imageEntry struct {
	boxes     []geometry.Box
	difficult []bool
	// matched is parallel to boxes and is only mutated by Match.
	matched []bool
}

// ClassIndex is the ground truth of a single class, keyed by image id.
//
// A ClassIndex owns its matched flags. It must not be shared between
// concurrent evaluations, and must be Reset (or rebuilt) before it is matched
// against a second detection list.
type ClassIndex struct {
	class   string
	order   []string
	entries map[string]*imageEntry
	npos    int
}

// MissedObject is a non-difficult ground-truth object that no detection claimed.
type MissedObject struct {
	ImageID string       `json:"image_id"`
	Class   string       `json:"class"`
	Box     geometry.Box `json:"bbox"`
}

// NewClassIndex builds the ground-truth index of class over every image in the dataset.
//
// Every image listed in dataset.ImageIDs gets an entry, even when it has no
// annotations, so lookups distinguish "no objects" from "unknown image".
//
// Arguments:
//   - dataset: The ground truth of the evaluation run.
//   - class: The class to index.
//
// Returns:
//   - *ClassIndex: The freshly built index with all matched flags cleared.
//   - error: If the dataset is invalid.
func NewClassIndex(dataset *Dataset, class string) (*ClassIndex, error) {
	if err := dataset.Validate(); err != nil {
		return nil, errors.Wrapf(err, "indexing class %q", class)
	}

	idx := &ClassIndex{
		class:   class,
		order:   dataset.ImageIDs,
		entries: make(map[string]*imageEntry, len(dataset.ImageIDs)),
	}

	for _, id := range dataset.ImageIDs {
		entry := &imageEntry{}
		for _, obj := range dataset.Objects[id] {
			if obj.Class != class {
				continue
			}
			entry.boxes = append(entry.boxes, obj.Box)
			entry.difficult = append(entry.difficult, obj.Difficult)
			if !obj.Difficult {
				idx.npos++
			}
		}
		entry.matched = make([]bool, len(entry.boxes))
		idx.entries[id] = entry
	}

	return idx, nil
}

// Class returns the indexed class.
func (c *ClassIndex) Class() string {
	return c.class
}

// Positives returns the number of non-difficult objects of the class.
func (c *ClassIndex) Positives() int {
	return c.npos
}

// Len returns the number of indexed images.
func (c *ClassIndex) Len() int {
	return len(c.entries)
}

// Reset clears every matched flag.
func (c *ClassIndex) Reset() {
	for _, e := range c.entries {
		clear(e.matched)
	}
}

// lookup returns the entry for an image and whether the image is known.
func (c *ClassIndex) lookup(imageID string) (*imageEntry, bool) {
	e, ok := c.entries[imageID]
	return e, ok
}

// Unmatched lists the non-difficult objects that no detection claimed, in image order.
func (c *ClassIndex) Unmatched() []MissedObject {
	var missed []MissedObject
	for _, id := range c.order {
		e := c.entries[id]
		for j, box := range e.boxes {
			if e.difficult[j] || e.matched[j] {
				continue
			}
			missed = append(missed, MissedObject{ImageID: id, Class: c.class, Box: box})
		}
	}
	return missed
}
