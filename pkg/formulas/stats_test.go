package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanAndStdDev(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}

	assert.InDelta(t, 3.0, Mean(data), 1e-12)
	assert.InDelta(t, 1.5811, StdDev(data), 1e-4)

	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, StdDev([]float64{1.0}))
}

func TestQuantileAndMedian(t *testing.T) {
	data := []float64{5, 1, 3, 2, 4}

	assert.InDelta(t, 3.0, Median(data), 1e-12)
	assert.LessOrEqual(t, Quantile(0.05, data), Quantile(0.95, data))

	// Input must not be mutated
	assert.Equal(t, []float64{5, 1, 3, 2, 4}, data)
}

func TestDownsideDeviation(t *testing.T) {
	assert.Equal(t, 0.0, DownsideDeviation([]float64{0.1, 0.2, 0.0}))

	dd := DownsideDeviation([]float64{-0.1, 0.2, -0.3})
	assert.Greater(t, dd, 0.0)
	// sqrt((0.01 + 0.09) / 2)
	assert.InDelta(t, 0.2236, dd, 1e-4)
}

func TestMaxDrawdown(t *testing.T) {
	// Peak 120, trough 90: 25% drawdown
	values := []float64{100, 120, 90, 110}
	assert.InDelta(t, 0.25, MaxDrawdown(values), 1e-12)

	// Monotonically increasing series has no drawdown
	assert.Equal(t, 0.0, MaxDrawdown([]float64{100, 110, 120}))
	assert.Equal(t, 0.0, MaxDrawdown(nil))
}

func TestCalculateVaROrdering(t *testing.T) {
	returns := []float64{-0.40, -0.25, -0.10, -0.05, 0.0, 0.02, 0.05, 0.10, 0.15, 0.30}

	var95 := CalculateVaR(returns, 0.95)
	var99 := CalculateVaR(returns, 0.99)

	// The more extreme tail is not less severe
	assert.LessOrEqual(t, var99, var95)
}

func TestCalculateCVaRBelowVaR(t *testing.T) {
	returns := []float64{-0.40, -0.25, -0.10, -0.05, 0.0, 0.02, 0.05, 0.10, 0.15, 0.30}

	var95 := CalculateVaR(returns, 0.95)
	cvar95 := CalculateCVaR(returns, 0.95)

	// Expected shortfall averages the tail at or below VaR
	assert.LessOrEqual(t, cvar95, var95)

	assert.Equal(t, 0.0, CalculateCVaR(nil, 0.95))
	assert.Equal(t, -0.1, CalculateCVaR([]float64{-0.1}, 0.95))
}
