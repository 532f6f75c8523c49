package risk

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrimar3/ATHintel-sub000/internal/modules/simulation"
)

func fakeResult() *simulation.SimulationResult {
	finalValues := []float64{80, 95, 100, 105, 110, 115, 120, 130, 140, 160}
	sum := 0.0
	for _, fv := range finalValues {
		sum += fv/100 - 1
	}
	return &simulation.SimulationResult{
		PropertyID:       "ATH-0001",
		InvestmentAmount: 100,
		FinalValues:      finalValues,
		Metrics: simulation.RiskMetrics{
			MeanReturn: sum / float64(len(finalValues)),
		},
	}
}

func TestScenarioAnalysis(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())

	outcomes, err := a.ScenarioAnalysis(fakeResult())
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	byName := make(map[string]ScenarioOutcome, len(outcomes))
	for _, o := range outcomes {
		byName[o.Name] = o
	}
	best, median, worst := byName["best"], byName["median"], byName["worst"]

	assert.GreaterOrEqual(t, best.FinalValue, median.FinalValue)
	assert.GreaterOrEqual(t, median.FinalValue, worst.FinalValue)
	assert.Equal(t, 0.95, best.Percentile)
	assert.Equal(t, 0.05, worst.Percentile)
	assert.Equal(t, 0.50, median.Probability)

	// Returns are final value over investment
	assert.InDelta(t, best.FinalValue/100-1, best.Return, 1e-12)
}

func TestScenarioAnalysisValidation(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())

	_, err := a.ScenarioAnalysis(nil)
	assert.Error(t, err)

	_, err = a.ScenarioAnalysis(&simulation.SimulationResult{InvestmentAmount: 100})
	assert.Error(t, err)

	res := fakeResult()
	res.InvestmentAmount = 0
	_, err = a.ScenarioAnalysis(res)
	assert.Error(t, err)
}

func TestStressTestDefaultCatalogue(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())

	outcomes, err := a.StressTest(fakeResult(), nil)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	// Output is sorted by scenario name
	assert.Equal(t, "market_crash", outcomes[0].Scenario)
	assert.Equal(t, "rate_spike", outcomes[1].Scenario)
	assert.Equal(t, "recession", outcomes[2].Scenario)

	byName := make(map[string]StressOutcome, len(outcomes))
	for _, o := range outcomes {
		assert.Less(t, o.Delta, 0.0)
		assert.InDelta(t, o.ShockedMeanReturn-o.BaselineMeanReturn, o.Delta, 1e-12)
		byName[o.Scenario] = o
	}

	// Deeper shocks cost more
	assert.Less(t, byName["market_crash"].Delta, byName["recession"].Delta)
	assert.Less(t, byName["recession"].Delta, byName["rate_spike"].Delta)
}

func TestStressTestCustomScenarios(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())
	res := fakeResult()

	outcomes, err := a.StressTest(res, map[string]float64{"mild_dip": -0.05})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	// A -5% shock on final values shifts mean return by -5% of mean final
	// value per unit invested
	meanFV := 0.0
	for _, fv := range res.FinalValues {
		meanFV += fv
	}
	meanFV /= float64(len(res.FinalValues))
	assert.InDelta(t, -0.05*meanFV/res.InvestmentAmount, outcomes[0].Delta, 1e-9)
}

func TestStressTestValidation(t *testing.T) {
	a := NewAnalyzer(zerolog.Nop())

	_, err := a.StressTest(nil, nil)
	assert.Error(t, err)

	_, err = a.StressTest(&simulation.SimulationResult{InvestmentAmount: 100}, nil)
	assert.Error(t, err)
}
