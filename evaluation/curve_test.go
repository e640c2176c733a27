package evaluation

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCurve(t *testing.T) {
	curve, err := BuildCurve([]float64{1, 0, 1, 0}, []float64{0, 1, 0, 1}, 4)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 1, 2, 2}, curve.CumTP)
	assert.Equal(t, []float64{0, 1, 1, 2}, curve.CumFP)
	assert.Equal(t, []float64{0.25, 0.25, 0.5, 0.5}, curve.Recall)
	assert.InDeltaSlice(t, []float64{1, 0.5, 2.0 / 3.0, 0.5}, curve.Precision, 1e-12)

	pts := curve.Points()
	require.Len(t, pts, 4)
	assert.Equal(t, PRPoint{Recall: 0.5, Precision: 0.5}, pts[3])
}

func TestBuildCurveZeroPositives(t *testing.T) {
	curve, err := BuildCurve([]float64{0}, []float64{1}, 0)
	assert.Nil(t, curve)
	assert.True(t, errors.Is(err, ErrZeroPositives))
}

func TestBuildCurveLengthMismatch(t *testing.T) {
	_, err := BuildCurve([]float64{1}, []float64{0, 1}, 1)
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestBuildCurveEmpty(t *testing.T) {
	curve, err := BuildCurve(nil, nil, 3)
	require.NoError(t, err)
	assert.Empty(t, curve.Recall)
	assert.Empty(t, curve.Precision)
}

func TestBuildCurveEpsilonGuard(t *testing.T) {
	// A 0/0 pair cannot come out of Match, but the builder must still not divide by zero.
	curve, err := BuildCurve([]float64{0}, []float64{0}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, curve.Precision[0])
	assert.False(t, math.IsNaN(curve.Precision[0]))
}

func TestAveragePrecision(t *testing.T) {
	tests := []struct {
		name      string
		recall    []float64
		precision []float64
		expected  float64
	}{
		{
			name:      "empty curve",
			expected:  0,
			recall:    []float64{},
			precision: []float64{},
		},
		{
			name:      "perfect single detection",
			recall:    []float64{1},
			precision: []float64{1},
			expected:  1,
		},
		{
			name:      "duplicate after full recall",
			recall:    []float64{1, 1},
			precision: []float64{1, 0.5},
			expected:  1,
		},
		{
			name:      "half recall",
			recall:    []float64{0.5, 0.5},
			precision: []float64{1, 0.5},
			expected:  0.5,
		},
		{
			name:      "false positive first",
			recall:    []float64{0, 0.5, 1},
			precision: []float64{0, 0.5, 2.0 / 3.0},
			expected:  2.0 / 3.0,
		},
		{
			name:      "envelope lifts a dip",
			recall:    []float64{0.25, 0.25, 0.5, 0.5},
			precision: []float64{1, 0.5, 2.0 / 3.0, 0.5},
			expected:  0.25*1 + 0.25*(2.0/3.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ap, err := AveragePrecision(tt.recall, tt.precision)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, ap, 1e-12)
		})
	}
}

func TestAveragePrecisionLengthMismatch(t *testing.T) {
	_, err := AveragePrecision([]float64{1}, nil)
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestAveragePrecisionTrailingZeroPrecision(t *testing.T) {
	recall := []float64{0.2, 0.4, 0.4, 0.6}
	precision := []float64{1, 1, 2.0 / 3.0, 0.75}

	base, err := AveragePrecision(recall, precision)
	require.NoError(t, err)

	for extra := 1; extra <= 5; extra++ {
		r := append(append([]float64(nil), recall...), make([]float64, extra)...)
		p := append(append([]float64(nil), precision...), make([]float64, extra)...)
		for i := len(recall); i < len(r); i++ {
			r[i] = recall[len(recall)-1]
		}
		ap, err := AveragePrecision(r, p)
		require.NoError(t, err)
		assert.Equal(t, base, ap, "appending %d zero-precision points changed AP", extra)
	}
}

func TestAveragePrecisionPerfectClass(t *testing.T) {
	const n = 7
	tp := make([]float64, n)
	fp := make([]float64, n)
	for i := range tp {
		tp[i] = 1
	}

	curve, err := BuildCurve(tp, fp, n)
	require.NoError(t, err)
	ap, err := AveragePrecision(curve.Recall, curve.Precision)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ap, 1e-12)
}
