package simulation

import (
	"fmt"

	"github.com/chrimar3/ATHintel-sub000/pkg/formulas"
)

// sortinoUnboundedCap is reported instead of +Inf when no simulated path
// loses money. A finite sentinel keeps aggregation and encoding layers sane.
const sortinoUnboundedCap = 1e6

// ComputeMetrics reduces a total-return ensemble into scalar risk/return
// statistics. It returns the metrics together with the per-path final values
// (investment plus final total return), which the caller owns.
//
// Degenerate inputs are handled defensively: zero-variance return
// distributions yield Sharpe 0, zero drawdowns yield Calmar 0, and an
// all-gaining ensemble yields the capped Sortino sentinel.
func ComputeMetrics(
	totalReturns [][]float64,
	investment float64,
	market MarketParameters,
	confidenceLevels [2]float64,
) (RiskMetrics, []float64, error) {
	if investment <= 0 {
		return RiskMetrics{}, nil, fmt.Errorf("investment must be positive, got %v", investment)
	}
	if len(totalReturns) == 0 || len(totalReturns[0]) == 0 {
		return RiskMetrics{}, nil, fmt.Errorf("empty total-return ensemble")
	}

	n := len(totalReturns)
	finalValues := make([]float64, n)
	returns := make([]float64, n)
	drawdowns := make([]float64, n)

	equity := make([]float64, len(totalReturns[0]))
	for i, path := range totalReturns {
		final := investment + path[len(path)-1]
		finalValues[i] = final
		returns[i] = final/investment - 1

		// Equity curve for drawdown: invested capital plus running total
		// return.
		for t, v := range path {
			equity[t] = investment + v
		}
		drawdowns[i] = formulas.MaxDrawdown(equity)
	}

	m := RiskMetrics{
		MeanReturn:   formulas.Mean(returns),
		MedianReturn: formulas.Median(returns),
		StdReturn:    formulas.StdDev(returns),
		VaR95:        formulas.CalculateVaR(returns, confidenceLevels[0]),
		VaR99:        formulas.CalculateVaR(returns, confidenceLevels[1]),
		CVaR95:       formulas.CalculateCVaR(returns, confidenceLevels[0]),
		CVaR99:       formulas.CalculateCVaR(returns, confidenceLevels[1]),
		MaxDrawdown:  formulas.Mean(drawdowns),
	}

	excess := m.MeanReturn - market.RiskFreeRate
	if m.StdReturn > 0 {
		m.SharpeRatio = excess / m.StdReturn
	}

	downside := formulas.DownsideDeviation(returns)
	switch {
	case downside > 0:
		m.SortinoRatio = excess / downside
	case excess > 0:
		m.SortinoRatio = sortinoUnboundedCap
	}

	if m.MaxDrawdown > 0 {
		m.CalmarRatio = m.MeanReturn / m.MaxDrawdown
	}

	var positive, loss, severeLoss int
	for _, r := range returns {
		switch {
		case r > 0:
			positive++
		case r < 0:
			loss++
		}
		if r < -0.20 {
			severeLoss++
		}
	}
	m.ProbPositive = float64(positive) / float64(n)
	m.ProbLoss = float64(loss) / float64(n)
	m.ProbLossOver20 = float64(severeLoss) / float64(n)

	return m, finalValues, nil
}

// averageColumns reduces an ensemble to its per-step cross-path mean.
func averageColumns(ensemble [][]float64) []float64 {
	if len(ensemble) == 0 {
		return nil
	}
	steps := len(ensemble[0])
	avg := make([]float64, steps)
	for _, path := range ensemble {
		for t := 0; t < steps && t < len(path); t++ {
			avg[t] += path[t]
		}
	}
	for t := range avg {
		avg[t] /= float64(len(ensemble))
	}
	return avg
}
