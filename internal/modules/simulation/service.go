package simulation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/chrimar3/ATHintel-sub000/internal/domain"
)

// childSeedStride separates the random streams of per-asset simulations in a
// portfolio run. Seeding by asset index keeps results independent of
// goroutine scheduling.
const childSeedStride = 7919

// Service orchestrates path generation, cash-flow aggregation and metrics
// into per-property simulation results.
type Service struct {
	cfg          SimulationConfig
	correlations *CorrelationEstimator
	log          zerolog.Logger
}

// NewService creates a simulation service.
func NewService(cfg SimulationConfig, log zerolog.Logger) *Service {
	return &Service{
		cfg:          cfg,
		correlations: NewCorrelationEstimator(log),
		log:          log.With().Str("component", "simulation").Logger(),
	}
}

// Config returns the service configuration.
func (s *Service) Config() SimulationConfig {
	return s.cfg
}

// SimulateInvestment runs a full single-asset simulation: value paths,
// rental-income paths, total-return aggregation and risk metrics. If
// investmentAmount is zero or negative the property's asking price is not
// substituted; the amount is rejected.
func (s *Service) SimulateInvestment(prop domain.Property, investmentAmount float64) (*SimulationResult, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	return s.simulateWithSeed(prop, investmentAmount, s.cfg.Seed)
}

func (s *Service) simulateWithSeed(prop domain.Property, investmentAmount float64, seed uint64) (*SimulationResult, error) {
	if !prop.Valid() {
		return nil, fmt.Errorf("property %q is missing required fields", prop.ID)
	}
	if investmentAmount <= 0 {
		return nil, fmt.Errorf("invalid investment amount %.2f for property %s", investmentAmount, prop.ID)
	}

	s.log.Info().
		Str("property_id", prop.ID).
		Float64("investment", investmentAmount).
		Str("process", string(s.cfg.ProcessFamily)).
		Int("num_simulations", s.cfg.NumSimulations).
		Float64("horizon_years", s.cfg.HorizonYears).
		Msg("Running investment simulation")

	gen := NewPathGenerator(s.cfg, seed)

	valuePaths, err := gen.GeneratePaths(investmentAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to generate value paths: %w", err)
	}
	incomePaths := gen.GenerateRentalIncomePaths(prop, investmentAmount)

	totalReturns, err := AggregateTotalReturns(valuePaths, incomePaths, investmentAmount, s.cfg.Market, s.cfg.Dt())
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate cash flows: %w", err)
	}

	metrics, finalValues, err := ComputeMetrics(totalReturns, investmentAmount, s.cfg.Market, s.cfg.ConfidenceLevels)
	if err != nil {
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}

	avgIncome := averageColumns(incomePaths)
	avgValue := averageColumns(valuePaths)
	avgTotal := averageColumns(totalReturns)

	// Cash flow per step: rental income net of the maintenance accrued over
	// that step, against the average capital value.
	avgCashFlow := make([]float64, len(avgIncome))
	stepMaintenance := s.cfg.Market.MaintenanceCostRate * s.cfg.Dt()
	for t := range avgCashFlow {
		avgCashFlow[t] = avgIncome[t] - stepMaintenance*avgValue[t]
	}

	result := &SimulationResult{
		PropertyID:       prop.ID,
		RunID:            uuid.NewString(),
		InvestmentAmount: investmentAmount,
		FinalValues:      finalValues,
		TotalReturnPaths: totalReturns,
		Metrics:          metrics,
		AvgTotalReturn:   avgTotal,
		AvgCashFlow:      avgCashFlow,
		AvgRentalIncome:  avgIncome,
		AvgAppreciation:  avgValue,
	}

	s.log.Debug().
		Str("property_id", prop.ID).
		Float64("mean_return", metrics.MeanReturn).
		Float64("var_95", metrics.VaR95).
		Float64("prob_loss", metrics.ProbLoss).
		Msg("Simulation complete")

	return result, nil
}

// SimulatePortfolio runs one single-asset simulation per property. Sizing:
// with a positive totalBudget each property receives budget * weight
// (weights default to an equal split); otherwise each property is sized by
// its own asking price. Properties with an invalid resulting amount are
// skipped with a warning, not fatal to the batch. With two or more surviving
// assets the pairwise correlation matrix is estimated from the averaged
// total-return series and attached to every result.
func (s *Service) SimulatePortfolio(
	props []domain.Property,
	weights []float64,
	totalBudget float64,
) (map[string]*SimulationResult, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(props) == 0 {
		return nil, fmt.Errorf("no properties to simulate")
	}
	if weights != nil && len(weights) != len(props) {
		return nil, fmt.Errorf("weights length %d does not match %d properties", len(weights), len(props))
	}
	if weights == nil {
		weights = make([]float64, len(props))
		for i := range weights {
			weights[i] = 1.0 / float64(len(props))
		}
	}

	amounts := make([]float64, len(props))
	for i, prop := range props {
		if totalBudget > 0 {
			amounts[i] = totalBudget * weights[i]
		} else {
			amounts[i] = prop.Price
		}
	}

	// Per-asset simulations are independent: each one reads the shared
	// config and writes only to its own slot.
	slots := make([]*SimulationResult, len(props))
	var g errgroup.Group
	for i := range props {
		i := i
		g.Go(func() error {
			res, err := s.simulateWithSeed(props[i], amounts[i], s.cfg.Seed+uint64(i)*childSeedStride)
			if err != nil {
				s.log.Warn().
					Err(err).
					Str("property_id", props[i].ID).
					Msg("Skipping property in portfolio simulation")
				return nil
			}
			slots[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make(map[string]*SimulationResult)
	var ids []string
	var series [][]float64
	for i, res := range slots {
		if res == nil {
			continue
		}
		results[res.PropertyID] = res
		ids = append(ids, res.PropertyID)
		series = append(series, stepReturnSeries(res.AvgTotalReturn, amounts[i]))
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("all %d properties were skipped", len(props))
	}

	if len(ids) > 1 {
		corr, err := s.correlations.Estimate(series)
		if err != nil {
			s.log.Warn().Err(err).Msg("Correlation estimation failed, results returned without correlations")
		} else {
			for _, id := range ids {
				results[id].Correlations = corr
				results[id].CorrelationIDs = ids
			}
		}
	}

	s.log.Info().
		Int("requested", len(props)).
		Int("simulated", len(results)).
		Msg("Portfolio simulation complete")

	return results, nil
}

// stepReturnSeries converts an averaged total-return time series into
// per-step return increments as fractions of the invested amount.
func stepReturnSeries(avgTotalReturn []float64, investment float64) []float64 {
	if len(avgTotalReturn) < 2 || investment <= 0 {
		return nil
	}
	series := make([]float64, len(avgTotalReturn)-1)
	for t := 1; t < len(avgTotalReturn); t++ {
		series[t-1] = (avgTotalReturn[t] - avgTotalReturn[t-1]) / investment
	}
	return series
}
