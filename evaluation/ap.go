package evaluation

import "github.com/pkg/errors"

// AveragePrecision integrates the area under the precision envelope.
//
// The curve is padded with (0, 0) at the start and (1, 0) at the end. The
// envelope is then made non-increasing by propagating the running maximum
// from the right, and AP is the sum of recall steps times the envelope value
// at the right end of each step:
//
//	AP = sum_i (r[i+1] - r[i]) * env[i+1]   where r[i+1] != r[i]
//
// Arguments:
//   - recall: Non-decreasing recall values.
//   - precision: Precision values, same length as recall.
//
// Returns:
//   - float64: The average precision in [0, 1].
//   - error: ErrLengthMismatch when the inputs differ in length.
//
// @example
// ap, err := AveragePrecision([]float64{0.5, 1}, []float64{1, 1}) // 1.0
func AveragePrecision(recall, precision []float64) (float64, error) {
	if len(recall) != len(precision) {
		return 0, errors.Wrapf(ErrLengthMismatch, "recall has %d entries, precision has %d", len(recall), len(precision))
	}

	n := len(recall) + 2
	mrec := make([]float64, n)
	mpre := make([]float64, n)
	copy(mrec[1:], recall)
	copy(mpre[1:], precision)
	mrec[n-1] = 1

	for i := n - 1; i > 0; i-- {
		mpre[i-1] = max(mpre[i-1], mpre[i])
	}

	var ap float64
	for i := 0; i < n-1; i++ {
		if mrec[i+1] != mrec[i] {
			ap += (mrec[i+1] - mrec[i]) * mpre[i+1]
		}
	}

	return ap, nil
}
