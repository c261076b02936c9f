package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"energydash/domain/core"
)

// PearsonCorrelation computes the product-moment correlation of two
// index-aligned series.
//
// Mismatched lengths yield ErrInvalidInput, fewer than two samples
// ErrInsufficientData, and a constant series ErrUndefined. Sums are centred
// on the means. The coefficient is clamped to [-1, 1] to absorb rounding.
func PearsonCorrelation(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, core.NewLengthMismatchError(len(a), len(b))
	}
	if len(a) < 2 {
		return 0, core.ErrInsufficientData
	}

	if constant(a) || constant(b) {
		return 0, core.ErrUndefined
	}

	meanX, meanY := mean(a), mean(b)
	var sxx, syy, sxy float64
	for i := range a {
		dx, dy := a[i]-meanX, b[i]-meanY
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, core.ErrUndefined
	}

	r := sxy / math.Sqrt(sxx*syy)
	return math.Max(-1, math.Min(1, r)), nil
}

// CorrelationSignificance returns the two-tailed p-value of a Pearson
// coefficient r computed from n samples, using Student's t with n-2 degrees
// of freedom.
func CorrelationSignificance(r float64, n int) (float64, error) {
	if n < 3 {
		return 0, core.ErrInsufficientData
	}
	if math.IsNaN(r) || r < -1 || r > 1 {
		return 0, core.ErrInvalidInput
	}
	if math.Abs(r) == 1 {
		return 0, nil
	}

	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - dist.CDF(math.Abs(t)))
	return math.Max(0, math.Min(1, p)), nil
}
