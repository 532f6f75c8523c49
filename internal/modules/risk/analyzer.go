// Package risk provides scenario and stress analysis over existing
// simulation results, without re-simulating.
package risk

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/chrimar3/ATHintel-sub000/internal/modules/simulation"
	"github.com/chrimar3/ATHintel-sub000/pkg/formulas"
)

// ScenarioOutcome is a named percentile extracted from the simulated
// final-value distribution.
type ScenarioOutcome struct {
	Name        string
	Percentile  float64
	Probability float64 // nominal probability mass at or beyond the percentile
	FinalValue  float64
	Return      float64
}

// StressOutcome reports one shock scenario against the baseline.
type StressOutcome struct {
	Scenario           string
	Shock              float64
	BaselineMeanReturn float64
	ShockedMeanReturn  float64
	Delta              float64
}

// DefaultStressScenarios is the fixed shock catalogue applied when the
// caller supplies none. Shocks are flat percentage moves on final values.
var DefaultStressScenarios = map[string]float64{
	"market_crash": -0.30,
	"recession":    -0.20,
	"rate_spike":   -0.15,
}

// Analyzer applies scenario extraction and stress shocks to a
// SimulationResult.
type Analyzer struct {
	log zerolog.Logger
}

// NewAnalyzer creates a risk analyzer.
func NewAnalyzer(log zerolog.Logger) *Analyzer {
	return &Analyzer{log: log.With().Str("component", "risk").Logger()}
}

// ScenarioAnalysis extracts the named percentile outcomes from a result:
// best (95th percentile), median (50th) and worst (5th), each with its final
// value, return on investment and nominal probability.
func (a *Analyzer) ScenarioAnalysis(res *simulation.SimulationResult) ([]ScenarioOutcome, error) {
	if res == nil || len(res.FinalValues) == 0 {
		return nil, fmt.Errorf("simulation result has no final values")
	}
	if res.InvestmentAmount <= 0 {
		return nil, fmt.Errorf("simulation result has invalid investment amount %v", res.InvestmentAmount)
	}

	scenarios := []struct {
		name        string
		percentile  float64
		probability float64
	}{
		{"best", 0.95, 0.05},
		{"median", 0.50, 0.50},
		{"worst", 0.05, 0.05},
	}

	outcomes := make([]ScenarioOutcome, 0, len(scenarios))
	for _, sc := range scenarios {
		fv := formulas.Quantile(sc.percentile, res.FinalValues)
		outcomes = append(outcomes, ScenarioOutcome{
			Name:        sc.name,
			Percentile:  sc.percentile,
			Probability: sc.probability,
			FinalValue:  fv,
			Return:      fv/res.InvestmentAmount - 1,
		})
	}

	return outcomes, nil
}

// StressTest applies each shock scenario to the simulated final values and
// reports the change in mean return versus the baseline. A nil or empty
// scenario map selects DefaultStressScenarios. Shocks are multiplicative on
// final value: a -0.30 crash scales every outcome to 70%.
func (a *Analyzer) StressTest(res *simulation.SimulationResult, scenarios map[string]float64) ([]StressOutcome, error) {
	if res == nil || len(res.FinalValues) == 0 {
		return nil, fmt.Errorf("simulation result has no final values")
	}
	if res.InvestmentAmount <= 0 {
		return nil, fmt.Errorf("simulation result has invalid investment amount %v", res.InvestmentAmount)
	}
	if len(scenarios) == 0 {
		scenarios = DefaultStressScenarios
	}

	baseline := res.Metrics.MeanReturn

	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)

	outcomes := make([]StressOutcome, 0, len(names))
	for _, name := range names {
		shock := scenarios[name]

		sum := 0.0
		for _, fv := range res.FinalValues {
			sum += fv*(1+shock)/res.InvestmentAmount - 1
		}
		shocked := sum / float64(len(res.FinalValues))

		outcomes = append(outcomes, StressOutcome{
			Scenario:           name,
			Shock:              shock,
			BaselineMeanReturn: baseline,
			ShockedMeanReturn:  shocked,
			Delta:              shocked - baseline,
		})

		a.log.Debug().
			Str("scenario", name).
			Float64("shock", shock).
			Float64("delta", shocked-baseline).
			Msg("Stress scenario applied")
	}

	return outcomes, nil
}
