package evaluation

import "github.com/pkg/errors"

var (
	// ErrZeroPositives is returned when a class has no non-difficult ground truth,
	// which leaves recall undefined.
	ErrZeroPositives = errors.New("class has zero positive ground-truth objects")
	// ErrLengthMismatch is returned when parallel sequences differ in length.
	ErrLengthMismatch = errors.New("sequence length mismatch")
	// ErrUnsupportedMethod is returned for AP methods that are recognized but not implemented.
	ErrUnsupportedMethod = errors.New("unsupported average precision method")
	// ErrNoScoredClasses is returned when no class contributes to the mean AP.
	ErrNoScoredClasses = errors.New("no scored classes to aggregate")
	// ErrInvalidDetection is returned for malformed detections.
	ErrInvalidDetection = errors.New("invalid detection")
	// ErrInvalidDataset is returned for malformed ground-truth collections.
	ErrInvalidDataset = errors.New("invalid dataset")
	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid evaluation config")
)
