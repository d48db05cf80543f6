package weather

import (
	"gonum.org/v1/gonum/stat"
)

// FitTrend fits an ordinary least squares line of value against elapsed hours.
//
// A single reading, or readings that all share one timestamp, cannot determine
// a slope; those yield a flat model at the mean value.
func FitTrend(s Series) TrendModel {
	n := len(s.Readings)
	if n == 0 {
		return TrendModel{}
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, r := range s.Readings {
		xs[i] = r.ElapsedHours
		ys[i] = r.Value
	}

	if n == 1 {
		return TrendModel{Slope: 0, Intercept: ys[0], Samples: 1}
	}
	if xs[0] == xs[n-1] {
		// sorted, so equal ends means zero variance
		return TrendModel{Slope: 0, Intercept: stat.Mean(ys, nil), Samples: n}
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return TrendModel{Slope: beta, Intercept: alpha, Samples: n}
}
