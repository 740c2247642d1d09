// Package analysis fits the crest-height-versus-rate-of-rise regression.
package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"crestline/internal/hydrograph"
)

// Regression is the closed-form OLS fit of crest height (y, ft) on
// rate-of-rise at the reference stage (x, ft/hr).
type Regression struct {
	Slope     float64
	Intercept float64
	R         float64
	RSquared  float64
	// PValue is the two-sided p-value for the null hypothesis slope = 0.
	// NaN when fewer than 3 points leave no degrees of freedom.
	PValue float64
	StdErr float64
	N      int
}

// Formula renders the fitted prediction rule.
func (r Regression) Formula() string {
	return fmt.Sprintf("Expected Crest (ft) = %.3f * Rate_of_Rise(ft/hr) + %.3f", r.Slope, r.Intercept)
}

// Fit runs OLS over all features, equally weighted. At least two points are
// required for a defined slope and intercept.
func Fit(features []hydrograph.Feature) (Regression, error) {
	n := len(features)
	if n < 2 {
		return Regression{}, fmt.Errorf("regression needs at least 2 events, got %d", n)
	}
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, f := range features {
		xs[i] = f.Rate
		ys[i] = f.CrestHeight
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	r := stat.Correlation(xs, ys, nil)

	xMean := stat.Mean(xs, nil)
	var ssr, sxx float64
	for i := range xs {
		resid := ys[i] - (intercept + slope*xs[i])
		ssr += resid * resid
		dx := xs[i] - xMean
		sxx += dx * dx
	}

	reg := Regression{
		Slope:     slope,
		Intercept: intercept,
		R:         r,
		RSquared:  r * r,
		PValue:    math.NaN(),
		N:         n,
	}
	if n < 3 {
		return reg, nil
	}

	dof := float64(n - 2)
	reg.StdErr = math.Sqrt(ssr / dof / sxx)
	switch {
	case reg.StdErr > 0:
		t := slope / reg.StdErr
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
		reg.PValue = 2 * dist.CDF(-math.Abs(t))
	case slope != 0:
		// Perfect fit: the slope is exact.
		reg.PValue = 0
	default:
		reg.PValue = 1
	}
	return reg, nil
}
