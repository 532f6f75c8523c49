package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMetrics(t *testing.T) {
	market := MarketParameters{RiskFreeRate: 0.015}
	totalReturns := [][]float64{
		{0, 10},
		{0, -5},
		{0, 20},
		{0, -30},
	}

	m, finalValues, err := ComputeMetrics(totalReturns, 100, market, [2]float64{0.95, 0.99})
	require.NoError(t, err)

	require.Len(t, finalValues, 4)
	assert.Equal(t, []float64{110, 95, 120, 70}, finalValues)

	// Returns: 0.10, -0.05, 0.20, -0.30
	assert.InDelta(t, -0.0125, m.MeanReturn, 1e-9)
	assert.InDelta(t, 0.5, m.ProbPositive, 1e-9)
	assert.InDelta(t, 0.5, m.ProbLoss, 1e-9)
	assert.InDelta(t, 0.25, m.ProbLossOver20, 1e-9)

	assert.LessOrEqual(t, m.VaR99, m.VaR95)
	assert.LessOrEqual(t, m.CVaR95, m.VaR95)
	assert.LessOrEqual(t, m.CVaR99, m.VaR99)
	assert.Greater(t, m.StdReturn, 0.0)
	assert.Greater(t, m.MaxDrawdown, 0.0)
}

func TestComputeMetricsZeroVariance(t *testing.T) {
	market := MarketParameters{RiskFreeRate: 0.015}
	totalReturns := [][]float64{
		{0, 10},
		{0, 10},
	}

	m, _, err := ComputeMetrics(totalReturns, 100, market, [2]float64{0.95, 0.99})
	require.NoError(t, err)

	assert.Equal(t, 0.0, m.StdReturn)
	assert.Equal(t, 0.0, m.SharpeRatio)
}

func TestComputeMetricsSortinoCap(t *testing.T) {
	market := MarketParameters{RiskFreeRate: 0.015}
	totalReturns := [][]float64{
		{0, 10},
		{0, 20},
	}

	m, _, err := ComputeMetrics(totalReturns, 100, market, [2]float64{0.95, 0.99})
	require.NoError(t, err)

	// No losing path: downside deviation is 0 and Sortino hits the cap
	assert.Equal(t, 0.0, m.ProbLoss)
	assert.Equal(t, float64(sortinoUnboundedCap), m.SortinoRatio)
}

func TestComputeMetricsDrawdown(t *testing.T) {
	market := MarketParameters{}
	// Equity curve 100 -> 120 -> 90 -> 130: 25% peak-to-trough
	totalReturns := [][]float64{
		{0, 20, -10, 30},
	}

	m, _, err := ComputeMetrics(totalReturns, 100, market, [2]float64{0.95, 0.99})
	require.NoError(t, err)

	assert.InDelta(t, 0.25, m.MaxDrawdown, 1e-9)
	assert.Greater(t, m.CalmarRatio, 0.0)
}

func TestComputeMetricsRejectsBadInput(t *testing.T) {
	market := MarketParameters{}

	_, _, err := ComputeMetrics([][]float64{{0, 10}}, 0, market, [2]float64{0.95, 0.99})
	assert.Error(t, err)

	_, _, err = ComputeMetrics(nil, 100, market, [2]float64{0.95, 0.99})
	assert.Error(t, err)

	_, _, err = ComputeMetrics([][]float64{{}}, 100, market, [2]float64{0.95, 0.99})
	assert.Error(t, err)
}

func TestAverageColumns(t *testing.T) {
	avg := averageColumns([][]float64{
		{1, 2, 3},
		{3, 4, 5},
	})
	assert.Equal(t, []float64{2, 3, 4}, avg)

	assert.Nil(t, averageColumns(nil))
}
