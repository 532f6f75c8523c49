// Package main runs the ATHintel simulation core end to end over a sample
// set of Athens properties: per-asset Monte Carlo simulation, portfolio
// optimization and risk analysis, with the results printed as JSON.
//
// The engine itself is a pure in-process library; this binary owns the
// wiring (config, logging) and the output encoding.
package main

import (
	"encoding/json"
	"os"

	"github.com/chrimar3/ATHintel-sub000/internal/config"
	"github.com/chrimar3/ATHintel-sub000/internal/domain"
	"github.com/chrimar3/ATHintel-sub000/internal/modules/optimization"
	"github.com/chrimar3/ATHintel-sub000/internal/modules/risk"
	"github.com/chrimar3/ATHintel-sub000/internal/modules/simulation"
	"github.com/chrimar3/ATHintel-sub000/pkg/logger"
)

// propertySummary is the JSON view of one simulated property.
type propertySummary struct {
	PropertyID string                 `json:"property_id"`
	Investment float64                `json:"investment"`
	Metrics    simulation.RiskMetrics `json:"metrics"`
	Scenarios  []risk.ScenarioOutcome `json:"scenarios"`
	Stress     []risk.StressOutcome   `json:"stress"`
}

type runReport struct {
	Properties []propertySummary    `json:"properties"`
	Portfolio  *optimization.Result `json:"portfolio"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.Pretty,
	})

	log.Info().Msg("Starting ATHintel simulation run")

	properties := []domain.Property{
		{ID: "ATH-0001", Price: 220_000, SizeSqm: 72, Type: domain.PropertyTypeApartment, EnergyClass: "B", Neighborhood: "Koukaki"},
		{ID: "ATH-0002", Price: 145_000, SizeSqm: 48, Type: domain.PropertyTypeStudio, EnergyClass: "C", Neighborhood: "Kypseli"},
		{ID: "ATH-0003", Price: 480_000, SizeSqm: 130, Type: domain.PropertyTypeMaisonette, EnergyClass: "A", Neighborhood: "Kolonaki"},
	}

	simService := simulation.NewService(cfg.Simulation, log)
	results, err := simService.SimulatePortfolio(properties, nil, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Portfolio simulation failed")
	}

	optimizer := optimization.NewOptimizer(cfg.Simulation.Market.RiskFreeRate, log)
	portfolio, err := optimizer.Optimize(results, optimization.Request{
		Objective: optimization.ObjectiveMaxSharpe,
		MaxWeight: cfg.Simulation.MaxWeight,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Portfolio optimization failed")
	}
	if !portfolio.ConstraintsSatisfied {
		log.Warn().Msg("Optimization returned a non-converged allocation")
	}

	analyzer := risk.NewAnalyzer(log)

	report := runReport{Portfolio: portfolio}
	for _, prop := range properties {
		res, ok := results[prop.ID]
		if !ok {
			continue
		}

		scenarios, err := analyzer.ScenarioAnalysis(res)
		if err != nil {
			log.Warn().Err(err).Str("property_id", prop.ID).Msg("Scenario analysis failed")
		}
		stress, err := analyzer.StressTest(res, nil)
		if err != nil {
			log.Warn().Err(err).Str("property_id", prop.ID).Msg("Stress test failed")
		}

		report.Properties = append(report.Properties, propertySummary{
			PropertyID: res.PropertyID,
			Investment: res.InvestmentAmount,
			Metrics:    res.Metrics,
			Scenarios:  scenarios,
			Stress:     stress,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode report")
	}

	log.Info().Msg("Simulation run complete")
}
