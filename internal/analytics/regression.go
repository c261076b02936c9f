package analytics

import (
	"energydash/domain/core"
)

// Point is a paired (x, y) sample.
type Point struct {
	X float64
	Y float64
}

// Line is a fitted least-squares line y = Slope*x + Intercept.
type Line struct {
	Slope     float64
	Intercept float64
}

// Predict evaluates the line at x.
func (l Line) Predict(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// LinearRegression fits the ordinary least-squares line through points.
// Fewer than two points yield ErrInsufficientData; identical x values (zero
// variance in x) yield ErrDegenerateInput.
//
// Sums are taken around the means so series with a large offset relative to
// their spread keep their precision.
func LinearRegression(points []Point) (Line, error) {
	if len(points) < 2 {
		return Line{}, core.ErrInsufficientData
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	if constant(xs) {
		return Line{}, core.ErrDegenerateInput
	}

	meanX, meanY := mean(xs), mean(ys)
	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}
	if sxx == 0 {
		return Line{}, core.ErrDegenerateInput
	}

	slope := sxy / sxx
	return Line{Slope: slope, Intercept: meanY - slope*meanX}, nil
}

// constant reports whether every value equals the first.
func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// mean is the arithmetic mean of a non-empty series.
func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Zip pairs two index-aligned series into points.
func Zip(xs, ys []float64) ([]Point, error) {
	if len(xs) != len(ys) {
		return nil, core.NewLengthMismatchError(len(xs), len(ys))
	}
	points := make([]Point, len(xs))
	for i := range xs {
		points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return points, nil
}
