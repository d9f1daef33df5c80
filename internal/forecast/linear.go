package forecast

import (
	"gonum.org/v1/gonum/stat"
)

// linearTrend fits value = alpha + beta*index by ordinary least squares and
// evaluates it at the next horizon indices. It never fails for a non-empty series.
func linearTrend(y []float64, horizon int) []float64 {
	out := make([]float64, horizon)
	if len(y) == 0 {
		return out
	}
	if len(y) == 1 {
		for i := range out {
			out[i] = round2(y[0])
		}
		return out
	}

	xs := make([]float64, len(y))
	for i := range xs {
		xs[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(xs, y, nil, false)

	n := float64(len(y))
	for i := range out {
		out[i] = round2(alpha + beta*(n+float64(i)))
	}
	return out
}
