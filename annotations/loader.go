package annotations

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-eval/evaluation"
	"github.com/nvr-ai/go-eval/profiler"
)

// Format identifies an annotation file layout.
type Format string

const (
	// FormatText is one object per line: `<index> <class> <xmin> <ymin> <xmax> <ymax>`.
	FormatText Format = "text"
	// FormatVOC is PASCAL VOC XML.
	FormatVOC Format = "voc"
)

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// ImageSetPath is the file listing the image ids to evaluate.
	ImageSetPath string
	// AnnotationDir holds one annotation file per image id.
	AnnotationDir string
	// ImageDir holds the images. Only needed for FormatText, to clamp boxes.
	ImageDir string
	// ImageExt is the image file extension, including the dot.
	ImageExt string
	// Format is the annotation layout.
	Format Format
	// Classes is the label set to keep.
	Classes []string
	// CachePath, when set, stores the parsed dataset for later runs.
	CachePath string
	// Sizer reports image dimensions. Defaults to GoCVSizer.
	Sizer ImageSizer
}

// Loader builds an evaluation.Dataset from annotation files.
type Loader struct {
	opts LoaderOptions
	log  logrus.FieldLogger
}

// NewLoader creates a loader.
//
// Arguments:
//   - opts: Where to find the image set and annotations.
//   - logger: Destination for progress logs. Nil uses the logrus standard logger.
//
// Returns:
//   - *Loader: The loader.
func NewLoader(opts LoaderOptions, logger logrus.FieldLogger) *Loader {
	if opts.ImageExt == "" {
		opts.ImageExt = ".jpg"
	}
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if opts.Sizer == nil {
		opts.Sizer = GoCVSizer{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Loader{opts: opts, log: logger}
}

// Load reads the image set and every annotation file.
//
// When a cache path is configured and the cache was built from the same image
// set, format and classes, the cache is used instead of the annotation files. Otherwise the
// annotations are parsed and the cache is refreshed.
func (l *Loader) Load() (*evaluation.Dataset, error) {
	ids, err := LoadImageSet(l.opts.ImageSetPath)
	if err != nil {
		return nil, err
	}

	if l.opts.CachePath != "" {
		cached, err := LoadCache(l.opts.CachePath)
		switch {
		case err == nil && cached.Matches(ids, l.opts.Format, l.opts.Classes):
			l.log.WithField("path", l.opts.CachePath).Info("📦 Loaded cached annotations")
			return cached.Dataset, nil
		case err == nil:
			l.log.WithField("path", l.opts.CachePath).Warn("⚠️  annotation cache is stale, rebuilding")
		case !errors.Is(err, os.ErrNotExist):
			l.log.WithError(err).Warn("⚠️  annotation cache unreadable, rebuilding")
		}
	}

	dataset := &evaluation.Dataset{
		ImageIDs: ids,
		Objects:  make(map[string][]evaluation.GroundTruthObject, len(ids)),
	}
	var timer profiler.Timer
	for i, id := range ids {
		timer.Tic()
		objs, err := l.loadImage(id)
		if err != nil {
			return nil, errors.Wrapf(err, "image %q", id)
		}
		dataset.Objects[id] = objs
		avg := timer.Toc(true)

		if (i+1)%100 == 0 {
			l.log.WithFields(logrus.Fields{"done": i + 1, "total": len(ids), "avg": avg}).Debug("Reading annotations")
		}
	}
	l.log.WithFields(logrus.Fields{
		"images": timer.Calls(),
		"took":   timer.Total(),
	}).Info("✅ Parsed annotations")

	if l.opts.CachePath != "" {
		cache := &Cache{Format: l.opts.Format, Classes: l.opts.Classes, Dataset: dataset}
		if err := SaveCache(l.opts.CachePath, cache); err != nil {
			return nil, err
		}
		l.log.WithField("path", l.opts.CachePath).Info("💾 Saved cached annotations")
	}

	return dataset, nil
}

func (l *Loader) loadImage(id string) ([]evaluation.GroundTruthObject, error) {
	switch l.opts.Format {
	case FormatText:
		size, err := l.opts.Sizer.Size(filepath.Join(l.opts.ImageDir, id+l.opts.ImageExt))
		if err != nil {
			return nil, err
		}
		f, err := os.Open(filepath.Join(l.opts.AnnotationDir, id+".txt"))
		if err != nil {
			return nil, errors.Wrap(err, "opening annotation")
		}
		defer f.Close()
		return ParseText(f, size.X, size.Y, l.opts.Classes)

	case FormatVOC:
		f, err := os.Open(filepath.Join(l.opts.AnnotationDir, id+".xml"))
		if err != nil {
			return nil, errors.Wrap(err, "opening annotation")
		}
		defer f.Close()
		return ParseVOC(f, l.opts.Classes)

	default:
		return nil, errors.Errorf("unknown annotation format %q", l.opts.Format)
	}
}
