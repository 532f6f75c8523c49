// Package config provides configuration management functionality.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/chrimar3/ATHintel-sub000/internal/modules/simulation"
)

// Config holds application configuration
type Config struct {
	LogLevel   string
	Pretty     bool
	Simulation simulation.SimulationConfig
}

// Load reads configuration from environment variables. All simulation
// parameters default to the documented market assumptions and can be
// overridden per run via ATHINTEL_* variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	sim := simulation.DefaultConfig()
	sim.NumSimulations = getEnvAsInt("ATHINTEL_NUM_SIMULATIONS", sim.NumSimulations)
	sim.HorizonYears = getEnvAsFloat("ATHINTEL_HORIZON_YEARS", sim.HorizonYears)
	sim.StepsPerYear = getEnvAsInt("ATHINTEL_STEPS_PER_YEAR", sim.StepsPerYear)
	sim.ProcessFamily = simulation.ProcessFamily(getEnv("ATHINTEL_PROCESS_FAMILY", string(sim.ProcessFamily)))
	sim.Seed = uint64(getEnvAsInt("ATHINTEL_SEED", int(sim.Seed)))
	sim.MaxWeight = getEnvAsFloat("ATHINTEL_MAX_WEIGHT", sim.MaxWeight)

	sim.Market.AppreciationMean = getEnvAsFloat("ATHINTEL_APPRECIATION_MEAN", sim.Market.AppreciationMean)
	sim.Market.AppreciationVolatility = getEnvAsFloat("ATHINTEL_APPRECIATION_VOLATILITY", sim.Market.AppreciationVolatility)
	sim.Market.RentalYieldMean = getEnvAsFloat("ATHINTEL_RENTAL_YIELD_MEAN", sim.Market.RentalYieldMean)
	sim.Market.RentalYieldVolatility = getEnvAsFloat("ATHINTEL_RENTAL_YIELD_VOLATILITY", sim.Market.RentalYieldVolatility)
	sim.Market.RentalGrowthRate = getEnvAsFloat("ATHINTEL_RENTAL_GROWTH_RATE", sim.Market.RentalGrowthRate)
	sim.Market.RiskFreeRate = getEnvAsFloat("ATHINTEL_RISK_FREE_RATE", sim.Market.RiskFreeRate)
	sim.Market.InflationRate = getEnvAsFloat("ATHINTEL_INFLATION_RATE", sim.Market.InflationRate)
	sim.Market.TaxRate = getEnvAsFloat("ATHINTEL_TAX_RATE", sim.Market.TaxRate)
	sim.Market.BuyingCostRate = getEnvAsFloat("ATHINTEL_BUYING_COST_RATE", sim.Market.BuyingCostRate)
	sim.Market.SellingCostRate = getEnvAsFloat("ATHINTEL_SELLING_COST_RATE", sim.Market.SellingCostRate)
	sim.Market.MaintenanceCostRate = getEnvAsFloat("ATHINTEL_MAINTENANCE_COST_RATE", sim.Market.MaintenanceCostRate)

	cfg := &Config{
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		Pretty:     getEnvAsBool("LOG_PRETTY", true),
		Simulation: sim,
	}

	// Surface configuration errors here, before any simulation runs
	if err := cfg.Simulation.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
