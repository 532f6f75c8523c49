package simulation

import "fmt"

// AggregateTotalReturns combines a value-path ensemble and a rental-income
// ensemble into a net total-return ensemble of the same shape. Entry [i][t]
// is:
//
//	capital value at t (net of disposal cost at the final step)
//	+ cumulative rental income through t (net of accrued maintenance)
//	- initial investment gross of acquisition costs
//
// Acquisition and disposal costs are one-time percentage rates; maintenance
// accrues proportionally to elapsed time and the current capital value. The
// transaction-cost drag materially changes short-horizon results and is
// applied here rather than in the metrics layer.
func AggregateTotalReturns(
	valuePaths [][]float64,
	incomePaths [][]float64,
	investment float64,
	market MarketParameters,
	dt float64,
) ([][]float64, error) {
	if investment <= 0 {
		return nil, fmt.Errorf("investment must be positive, got %v", investment)
	}
	if len(valuePaths) == 0 || len(valuePaths) != len(incomePaths) {
		return nil, fmt.Errorf("ensemble shape mismatch: %d value paths, %d income paths", len(valuePaths), len(incomePaths))
	}

	grossInvestment := investment * (1 + market.BuyingCostRate)

	total := make([][]float64, len(valuePaths))
	for i := range valuePaths {
		if len(valuePaths[i]) != len(incomePaths[i]) {
			return nil, fmt.Errorf("ensemble shape mismatch at path %d: %d value steps, %d income steps", i, len(valuePaths[i]), len(incomePaths[i]))
		}

		row := make([]float64, len(valuePaths[i]))
		last := len(row) - 1
		cumIncome := 0.0
		for t := range row {
			value := valuePaths[i][t]
			if t == last {
				value *= 1 - market.SellingCostRate
			}
			cumIncome += incomePaths[i][t]
			maintenance := market.MaintenanceCostRate * float64(t) * dt * valuePaths[i][t]
			row[t] = value + cumIncome - maintenance - grossInvestment
		}
		total[i] = row
	}

	return total, nil
}
