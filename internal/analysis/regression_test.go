package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crestline/internal/hydrograph"
)

func featuresFromPairs(pairs [][2]float64) []hydrograph.Feature {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	features := make([]hydrograph.Feature, 0, len(pairs))
	for i, p := range pairs {
		features = append(features, hydrograph.Feature{
			CrestDate:   base.AddDate(0, 0, i),
			CrestHeight: p[1],
			Rate:        p[0],
			CrossTime:   base.AddDate(0, 0, i),
		})
	}
	return features
}

func TestFitPerfectlyLinear(t *testing.T) {
	// Points exactly on y = 2x + 5.
	pairs := [][2]float64{{0.5, 6}, {1.0, 7}, {1.5, 8}, {2.0, 9}, {3.0, 11}}
	fit, err := Fit(featuresFromPairs(pairs))
	require.NoError(t, err)

	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
	assert.InDelta(t, 5.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-9)
	assert.InDelta(t, 0.0, fit.PValue, 1e-9)
	assert.Equal(t, 5, fit.N)
}

func TestFitNoisyData(t *testing.T) {
	pairs := [][2]float64{{0.2, 18.1}, {0.5, 21.4}, {0.8, 22.0}, {1.1, 25.9}, {1.4, 26.3}, {2.0, 31.2}}
	fit, err := Fit(featuresFromPairs(pairs))
	require.NoError(t, err)

	assert.Greater(t, fit.Slope, 0.0)
	assert.Greater(t, fit.RSquared, 0.9)
	assert.Greater(t, fit.StdErr, 0.0)
	assert.Greater(t, fit.PValue, 0.0)
	assert.Less(t, fit.PValue, 0.05)
	assert.InDelta(t, fit.R*fit.R, fit.RSquared, 1e-12)
}

func TestFitRejectsTooFewPoints(t *testing.T) {
	_, err := Fit(nil)
	require.Error(t, err)

	_, err = Fit(featuresFromPairs([][2]float64{{1, 2}}))
	require.Error(t, err)
}

func TestFitTwoPointsHasNoPValue(t *testing.T) {
	fit, err := Fit(featuresFromPairs([][2]float64{{1, 7}, {2, 9}}))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
	assert.InDelta(t, 5.0, fit.Intercept, 1e-9)
	assert.True(t, math.IsNaN(fit.PValue))
	assert.Zero(t, fit.StdErr)
}

func TestFormula(t *testing.T) {
	fit := Regression{Slope: 11.525, Intercept: 17.808}
	assert.Equal(t, "Expected Crest (ft) = 11.525 * Rate_of_Rise(ft/hr) + 17.808", fit.Formula())
}
