package simulation

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/chrimar3/ATHintel-sub000/pkg/formulas"
)

// DefaultEigenvalueFloor is the minimum eigenvalue enforced on estimated
// correlation matrices. An empirical matrix from a small number of paths can
// be near-singular or indefinite, which breaks the optimizer downstream.
const DefaultEigenvalueFloor = 0.01

// CorrelationEstimator builds regularized Pearson correlation matrices from
// simulated per-asset return series.
type CorrelationEstimator struct {
	eigenFloor float64
	log        zerolog.Logger
}

// NewCorrelationEstimator creates an estimator with the default eigenvalue
// floor.
func NewCorrelationEstimator(log zerolog.Logger) *CorrelationEstimator {
	return &CorrelationEstimator{
		eigenFloor: DefaultEigenvalueFloor,
		log:        log.With().Str("component", "correlation").Logger(),
	}
}

// Estimate computes the pairwise Pearson correlation matrix across the given
// return series and regularizes it to be positive semi-definite. NaN entries
// from zero-variance series default to 0 rather than propagating.
func (ce *CorrelationEstimator) Estimate(series [][]float64) ([][]float64, error) {
	n := len(series)
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 return series for correlation estimation, got %d", n)
	}
	length := len(series[0])
	for i, s := range series {
		if len(s) != length {
			return nil, fmt.Errorf("return series length mismatch: series %d has %d observations, expected %d", i, len(s), length)
		}
	}
	if length < 2 {
		return nil, fmt.Errorf("need at least 2 observations per series, got %d", length)
	}

	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
		corr[i][i] = 1.0
	}

	nanCount := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			rho := formulas.Correlation(series[i], series[j])
			if math.IsNaN(rho) || math.IsInf(rho, 0) {
				rho = 0
				nanCount++
			}
			corr[i][j] = rho
			corr[j][i] = rho
		}
	}
	if nanCount > 0 {
		ce.log.Warn().
			Int("pairs", nanCount).
			Msg("Zero-variance series produced undefined correlations, defaulting to 0")
	}

	regularized, err := formulas.NearestPSD(corr, ce.eigenFloor)
	if err != nil {
		return nil, fmt.Errorf("failed to regularize correlation matrix: %w", err)
	}

	ce.log.Debug().
		Int("assets", n).
		Int("observations", length).
		Msg("Estimated correlation matrix")

	return regularized, nil
}
