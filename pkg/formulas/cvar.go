package formulas

// CalculateVaR calculates Value at Risk at the specified confidence level.
// VaR is the lower percentile of the return distribution: at 95% confidence
// it is the 5th percentile. The value is negative when the tail loses money.
func CalculateVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}
	return Quantile(1.0-confidence, returns)
}

// CalculateCVaR calculates Conditional Value at Risk (expected shortfall) at
// the specified confidence level. CVaR is the mean of the returns at or below
// the VaR threshold.
func CalculateCVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}
	if len(returns) == 1 {
		return returns[0]
	}

	threshold := CalculateVaR(returns, confidence)

	sum := 0.0
	count := 0
	for _, r := range returns {
		if r <= threshold {
			sum += r
			count++
		}
	}
	if count == 0 {
		return threshold
	}
	return sum / float64(count)
}
