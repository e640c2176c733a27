// Package annotations - Ground-truth loading for evaluation runs.
//
// Two annotation layouts are supported: plain text files with one object per
// line, and PASCAL VOC XML files. Both produce zero-based boxes.
package annotations

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ReadImageSet reads an image set: one image id per line.
//
// Surrounding whitespace is trimmed and blank lines are skipped. Duplicate ids
// are rejected because they would count the same ground truth twice.
func ReadImageSet(r io.Reader) ([]string, error) {
	var (
		ids  []string
		seen = make(map[string]struct{})
	)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			return nil, errors.Errorf("line %d: duplicate image id %q", line, id)
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading image set")
	}

	return ids, nil
}

// LoadImageSet reads the image set file at path.
func LoadImageSet(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening image set")
	}
	defer f.Close()

	ids, err := ReadImageSet(f)
	if err != nil {
		return nil, errors.Wrapf(err, "image set %s", path)
	}
	return ids, nil
}
