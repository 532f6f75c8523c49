package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateTotalReturns(t *testing.T) {
	market := MarketParameters{
		BuyingCostRate:      0.10,
		SellingCostRate:     0.05,
		MaintenanceCostRate: 0.01,
	}
	valuePaths := [][]float64{{100, 110}}
	incomePaths := [][]float64{{0, 5}}

	total, err := AggregateTotalReturns(valuePaths, incomePaths, 100, market, 1.0)
	require.NoError(t, err)
	require.Len(t, total, 1)
	require.Len(t, total[0], 2)

	// t=0: value 100 against a gross outlay of 110, acquisition drag only
	assert.InDelta(t, -10.0, total[0][0], 1e-9)

	// t=1 (disposal): 110 * 0.95 + 5 income - 0.01*1*110 maintenance - 110
	assert.InDelta(t, 104.5+5-1.1-110, total[0][1], 1e-9)
}

func TestAggregateTotalReturnsNoCosts(t *testing.T) {
	market := MarketParameters{}
	valuePaths := [][]float64{{100, 120, 90}}
	incomePaths := [][]float64{{0, 2, 2}}

	total, err := AggregateTotalReturns(valuePaths, incomePaths, 100, market, 0.5)
	require.NoError(t, err)

	// Pure appreciation plus cumulative income
	assert.InDelta(t, 0.0, total[0][0], 1e-9)
	assert.InDelta(t, 22.0, total[0][1], 1e-9)
	assert.InDelta(t, -6.0, total[0][2], 1e-9)
}

func TestAggregateTotalReturnsShapeChecks(t *testing.T) {
	market := MarketParameters{}

	_, err := AggregateTotalReturns(nil, nil, 100, market, 1.0)
	assert.Error(t, err)

	_, err = AggregateTotalReturns([][]float64{{100, 110}}, [][]float64{}, 100, market, 1.0)
	assert.Error(t, err)

	_, err = AggregateTotalReturns([][]float64{{100, 110}}, [][]float64{{0}}, 100, market, 1.0)
	assert.Error(t, err)

	_, err = AggregateTotalReturns([][]float64{{100, 110}}, [][]float64{{0, 5}}, 0, market, 1.0)
	assert.Error(t, err)
}
