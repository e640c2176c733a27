package evaluation

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// machineEpsilon is the float64 machine epsilon (2^-52). It keeps the
// precision denominator away from zero.
const machineEpsilon = 2.220446049250313e-16

// PRPoint is a single (recall, precision) sample.
type PRPoint struct {
	Recall    float64 `json:"recall"`
	Precision float64 `json:"precision"`
}

// Curve is a precision-recall curve with one sample per counted detection.
type Curve struct {
	Recall    []float64
	Precision []float64
	CumTP     []float64
	CumFP     []float64
}

// BuildCurve turns confidence-ordered tp/fp labels into recall and precision sequences.
//
//	recall[i]    = cumTP[i] / npos
//	precision[i] = cumTP[i] / max(cumTP[i] + cumFP[i], eps)
//
// Arguments:
//   - tp: 0/1 true-positive labels in confidence order.
//   - fp: 0/1 false-positive labels, same length as tp.
//   - npos: Number of non-difficult ground-truth objects.
//
// Returns:
//   - *Curve: The cumulative counts and the curve.
//   - error: ErrLengthMismatch for unequal inputs, ErrZeroPositives when npos is 0.
func BuildCurve(tp, fp []float64, npos int) (*Curve, error) {
	if len(tp) != len(fp) {
		return nil, errors.Wrapf(ErrLengthMismatch, "tp has %d entries, fp has %d", len(tp), len(fp))
	}
	if npos <= 0 {
		return nil, errors.Wrapf(ErrZeroPositives, "npos=%d", npos)
	}

	n := len(tp)
	c := &Curve{
		CumTP:     floats.CumSum(make([]float64, n), tp),
		CumFP:     floats.CumSum(make([]float64, n), fp),
		Recall:    make([]float64, n),
		Precision: make([]float64, n),
	}

	for i := 0; i < n; i++ {
		c.Recall[i] = c.CumTP[i] / float64(npos)
		c.Precision[i] = c.CumTP[i] / max(c.CumTP[i]+c.CumFP[i], machineEpsilon)
	}

	return c, nil
}

// Points returns the curve as (recall, precision) pairs.
func (c *Curve) Points() []PRPoint {
	pts := make([]PRPoint, len(c.Recall))
	for i := range c.Recall {
		pts[i] = PRPoint{Recall: c.Recall[i], Precision: c.Precision[i]}
	}
	return pts
}
