// Package simulation implements the stochastic simulation engine for
// real-estate investments: path generation, cash-flow aggregation, risk
// metrics and correlation estimation across simulated assets.
package simulation

import (
	"fmt"
	"math"
)

// ProcessFamily selects the stochastic process used for value paths.
type ProcessFamily string

const (
	ProcessGBM             ProcessFamily = "gbm"
	ProcessJumpDiffusion   ProcessFamily = "jump_diffusion"
	ProcessRegimeSwitching ProcessFamily = "regime_switching"
)

// Regime indices for the two-state Markov chain.
const (
	regimeBull = 0
	regimeBear = 1
)

// RegimeParameters describes the two-state (bull/bear) Markov chain used by
// the regime-switching process. Transition[i][j] is the probability of moving
// from state i to state j at each step; rows must sum to 1.
type RegimeParameters struct {
	BullDrift      float64
	BullVolatility float64
	BearDrift      float64
	BearVolatility float64
	Transition     [2][2]float64
}

// MarketParameters holds the macro assumptions shared read-only by every
// simulation in a run. Rates are annual fractions (0.05 = 5%).
type MarketParameters struct {
	AppreciationMean       float64
	AppreciationVolatility float64
	RentalYieldMean        float64
	RentalYieldVolatility  float64
	RentalGrowthRate       float64
	RiskFreeRate           float64
	InflationRate          float64
	TaxRate                float64
	BuyingCostRate         float64
	SellingCostRate        float64
	MaintenanceCostRate    float64

	// Jump-diffusion parameters. JumpMean is negative by default so jumps
	// bias the distribution toward downside moves.
	JumpIntensity float64 // expected jumps per year
	JumpMean      float64 // mean log jump size
	JumpStd       float64 // std-dev of log jump size

	Regimes RegimeParameters
}

// DefaultMarketParameters returns the documented Athens-market defaults.
func DefaultMarketParameters() MarketParameters {
	return MarketParameters{
		AppreciationMean:       0.05,
		AppreciationVolatility: 0.15,
		RentalYieldMean:        0.04,
		RentalYieldVolatility:  0.01,
		RentalGrowthRate:       0.02,
		RiskFreeRate:           0.015,
		InflationRate:          0.02,
		TaxRate:                0.24,
		BuyingCostRate:         0.11,
		SellingCostRate:        0.06,
		MaintenanceCostRate:    0.01,
		JumpIntensity:          0.5,
		JumpMean:               -0.05,
		JumpStd:                0.03,
		Regimes: RegimeParameters{
			BullDrift:      0.08,
			BullVolatility: 0.12,
			BearDrift:      -0.04,
			BearVolatility: 0.22,
			// Long expansions, shorter busts.
			Transition: [2][2]float64{
				{0.95, 0.05},
				{0.15, 0.85},
			},
		},
	}
}

// SimulationConfig describes one simulation run. Immutable once handed to the
// service; copies are cheap and shared by value.
type SimulationConfig struct {
	NumSimulations   int
	HorizonYears     float64
	StepsPerYear     int
	ProcessFamily    ProcessFamily
	Seed             uint64
	ConfidenceLevels [2]float64 // e.g. {0.95, 0.99}
	MaxWeight        float64    // per-asset allocation cap for optimization
	Market           MarketParameters
}

// DefaultConfig returns a configuration with the documented defaults:
// 10,000 paths over 5 years at monthly steps under GBM.
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		NumSimulations:   10_000,
		HorizonYears:     5,
		StepsPerYear:     12,
		ProcessFamily:    ProcessGBM,
		Seed:             42,
		ConfidenceLevels: [2]float64{0.95, 0.99},
		MaxWeight:        0.3,
		Market:           DefaultMarketParameters(),
	}
}

// NumSteps returns the number of discrete time steps over the horizon.
func (c SimulationConfig) NumSteps() int {
	return int(math.Round(c.HorizonYears * float64(c.StepsPerYear)))
}

// Dt returns the step size in years.
func (c SimulationConfig) Dt() float64 {
	return 1.0 / float64(c.StepsPerYear)
}

// Validate fails fast on configuration errors, before any random draw.
func (c SimulationConfig) Validate() error {
	if c.NumSimulations < 1 {
		return fmt.Errorf("invalid configuration: num_simulations must be >= 1, got %d", c.NumSimulations)
	}
	if c.HorizonYears <= 0 {
		return fmt.Errorf("invalid configuration: horizon_years must be positive, got %v", c.HorizonYears)
	}
	if c.StepsPerYear < 1 {
		return fmt.Errorf("invalid configuration: steps_per_year must be >= 1, got %d", c.StepsPerYear)
	}
	if c.NumSteps() < 1 {
		return fmt.Errorf("invalid configuration: horizon %v years at %d steps/year yields no steps", c.HorizonYears, c.StepsPerYear)
	}
	switch c.ProcessFamily {
	case ProcessGBM, ProcessJumpDiffusion:
	case ProcessRegimeSwitching:
		for i, row := range c.Market.Regimes.Transition {
			sum := 0.0
			for _, p := range row {
				if p < 0 || p > 1 {
					return fmt.Errorf("invalid configuration: regime transition probability out of [0,1]: %v", p)
				}
				sum += p
			}
			if math.Abs(sum-1.0) > 1e-9 {
				return fmt.Errorf("invalid configuration: regime transition row %d sums to %v, expected 1", i, sum)
			}
		}
	default:
		return fmt.Errorf("invalid configuration: unknown process family %q", c.ProcessFamily)
	}
	for _, cl := range c.ConfidenceLevels {
		if cl <= 0 || cl >= 1 {
			return fmt.Errorf("invalid configuration: confidence level must be in (0,1), got %v", cl)
		}
	}
	if c.MaxWeight <= 0 || c.MaxWeight > 1 {
		return fmt.Errorf("invalid configuration: max_weight must be in (0,1], got %v", c.MaxWeight)
	}
	return nil
}

// RiskMetrics holds the scalar risk/return statistics derived from one
// total-return path ensemble. Returns are fractions of the investment amount.
type RiskMetrics struct {
	MeanReturn   float64
	MedianReturn float64
	StdReturn    float64

	VaR95  float64
	VaR99  float64
	CVaR95 float64
	CVaR99 float64

	// MaxDrawdown is the worst peak-to-trough decline per path, averaged
	// across paths (not the single worst-case path).
	MaxDrawdown float64

	SharpeRatio  float64
	SortinoRatio float64
	CalmarRatio  float64

	ProbPositive   float64
	ProbLoss       float64
	ProbLossOver20 float64
}

// SimulationResult is the output of one single-asset simulation. Immutable
// after creation except for the correlation fields, which portfolio-level
// runs attach post hoc.
type SimulationResult struct {
	PropertyID       string
	RunID            string
	InvestmentAmount float64

	// FinalValues[i] = investment + final total return of path i;
	// length equals NumSimulations.
	FinalValues []float64

	// TotalReturnPaths is the full [n_simulations, n_steps+1] ensemble,
	// owned by the result so portfolio runs can estimate correlations
	// without re-simulating.
	TotalReturnPaths [][]float64

	Metrics RiskMetrics

	// Averaged time series across paths, one entry per time step.
	AvgTotalReturn  []float64
	AvgCashFlow     []float64
	AvgRentalIncome []float64
	AvgAppreciation []float64

	// Correlations is attached when the result was produced as part of a
	// multi-asset portfolio simulation. CorrelationIDs gives the row/column
	// ordering.
	Correlations   [][]float64
	CorrelationIDs []string
}
