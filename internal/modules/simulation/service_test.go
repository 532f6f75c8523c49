package simulation

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrimar3/ATHintel-sub000/internal/domain"
)

func portfolioTestProperties() []domain.Property {
	return []domain.Property{
		{ID: "ATH-0001", Price: 220_000, SizeSqm: 72, Type: domain.PropertyTypeApartment, EnergyClass: "B", Neighborhood: "Koukaki"},
		{ID: "ATH-0002", Price: 145_000, SizeSqm: 48, Type: domain.PropertyTypeStudio, EnergyClass: "C", Neighborhood: "Kypseli"},
	}
}

func TestSimulateInvestmentEndToEnd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumSimulations = 5_000
	svc := NewService(cfg, zerolog.Nop())

	res, err := svc.SimulateInvestment(testProperty(), 200_000)
	require.NoError(t, err)

	assert.Equal(t, "ATH-TEST", res.PropertyID)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 200_000.0, res.InvestmentAmount)
	require.Len(t, res.FinalValues, cfg.NumSimulations)
	require.Len(t, res.TotalReturnPaths, cfg.NumSimulations)
	require.Len(t, res.AvgTotalReturn, cfg.NumSteps()+1)
	require.Len(t, res.AvgCashFlow, cfg.NumSteps()+1)
	require.Len(t, res.AvgRentalIncome, cfg.NumSteps()+1)
	require.Len(t, res.AvgAppreciation, cfg.NumSteps()+1)

	// Under the default market assumptions a 5-year hold lands in a broad but
	// decidedly positive band, with both gaining and losing paths present.
	m := res.Metrics
	assert.Greater(t, m.MeanReturn, 0.10)
	assert.Less(t, m.MeanReturn, 0.60)
	assert.Greater(t, m.ProbLoss, 0.0)
	assert.Less(t, m.ProbLoss, 1.0)
	assert.Greater(t, m.StdReturn, 0.0)
	assert.LessOrEqual(t, m.VaR99, m.VaR95)
	assert.LessOrEqual(t, m.CVaR95, m.VaR95)
}

func TestSimulateInvestmentDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumSimulations = 500
	cfg.HorizonYears = 2

	svc := NewService(cfg, zerolog.Nop())
	a, err := svc.SimulateInvestment(testProperty(), 200_000)
	require.NoError(t, err)
	b, err := svc.SimulateInvestment(testProperty(), 200_000)
	require.NoError(t, err)

	// Same seed, same paths; only the run identifier differs
	assert.Equal(t, a.FinalValues, b.FinalValues)
	assert.Equal(t, a.Metrics, b.Metrics)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestSimulateInvestmentValidation(t *testing.T) {
	svc := NewService(testConfig(), zerolog.Nop())

	_, err := svc.SimulateInvestment(domain.Property{}, 100_000)
	assert.Error(t, err)

	_, err = svc.SimulateInvestment(testProperty(), 0)
	assert.Error(t, err)

	bad := testConfig()
	bad.NumSimulations = 0
	_, err = NewService(bad, zerolog.Nop()).SimulateInvestment(testProperty(), 100_000)
	assert.Error(t, err)
}

func TestSimulatePortfolio(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumSimulations = 500
	cfg.HorizonYears = 2
	svc := NewService(cfg, zerolog.Nop())

	props := portfolioTestProperties()
	results, err := svc.SimulatePortfolio(props, nil, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Without a budget, each property is sized at its own asking price
	assert.Equal(t, 220_000.0, results["ATH-0001"].InvestmentAmount)
	assert.Equal(t, 145_000.0, results["ATH-0002"].InvestmentAmount)

	// Correlations are attached to every surviving result
	for _, res := range results {
		require.Len(t, res.Correlations, 2)
		assert.Equal(t, []string{"ATH-0001", "ATH-0002"}, res.CorrelationIDs)
	}
}

func TestSimulatePortfolioBudgetAndWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumSimulations = 200
	cfg.HorizonYears = 1
	svc := NewService(cfg, zerolog.Nop())

	results, err := svc.SimulatePortfolio(portfolioTestProperties(), []float64{0.6, 0.4}, 500_000)
	require.NoError(t, err)

	assert.Equal(t, 300_000.0, results["ATH-0001"].InvestmentAmount)
	assert.Equal(t, 200_000.0, results["ATH-0002"].InvestmentAmount)
}

func TestSimulatePortfolioSkipsInvalidProperties(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumSimulations = 200
	cfg.HorizonYears = 1
	svc := NewService(cfg, zerolog.Nop())

	props := append(portfolioTestProperties(), domain.Property{ID: "ATH-BAD"})
	results, err := svc.SimulatePortfolio(props, nil, 0)
	require.NoError(t, err)

	assert.Len(t, results, 2)
	assert.NotContains(t, results, "ATH-BAD")
}

func TestSimulatePortfolioAllInvalid(t *testing.T) {
	svc := NewService(testConfig(), zerolog.Nop())

	_, err := svc.SimulatePortfolio([]domain.Property{{ID: "ATH-BAD"}}, nil, 0)
	assert.Error(t, err)

	_, err = svc.SimulatePortfolio(nil, nil, 0)
	assert.Error(t, err)

	_, err = svc.SimulatePortfolio(portfolioTestProperties(), []float64{1.0}, 500_000)
	assert.Error(t, err)
}

func TestStepReturnSeries(t *testing.T) {
	series := stepReturnSeries([]float64{0, 10, 5, 20}, 100)
	assert.Equal(t, []float64{0.1, -0.05, 0.15}, series)

	assert.Nil(t, stepReturnSeries([]float64{0}, 100))
	assert.Nil(t, stepReturnSeries([]float64{0, 10}, 0))
}
