// Package optimization solves the constrained portfolio allocation problem
// over simulated assets and builds efficient frontiers.
package optimization

// Objective selects the optimization mode.
type Objective string

const (
	// ObjectiveMaxSharpe maximizes (w'r - rf) / sqrt(w'Σw).
	ObjectiveMaxSharpe Objective = "max_sharpe"
	// ObjectiveMaxReturn maximizes w'r subject to a risk ceiling.
	ObjectiveMaxReturn Objective = "max_return"
	// ObjectiveMinRisk minimizes w'Σw subject to a return floor.
	ObjectiveMinRisk Objective = "min_risk"
)

// DefaultMaxWeight caps any single asset's allocation; no short selling, so
// the lower bound is always 0.
const DefaultMaxWeight = 0.3

// DefaultFrontierPoints is the number of target returns swept when building
// the efficient frontier.
const DefaultFrontierPoints = 100

// Request parameterizes one optimization call.
type Request struct {
	Objective      Objective
	TargetReturn   *float64 // required for ObjectiveMinRisk
	TargetRisk     *float64 // required for ObjectiveMaxReturn
	MaxWeight      float64  // defaults to DefaultMaxWeight when 0
	FrontierPoints int      // defaults to DefaultFrontierPoints when 0
}

// Result is the outcome of a portfolio optimization. Weights sum to 1 within
// tolerance and each lies in [0, MaxWeight] whenever ConstraintsSatisfied is
// true; when the solver failed to converge the best iterate is still
// returned with ConstraintsSatisfied false so callers can inspect and reject
// it.
type Result struct {
	Weights        map[string]float64
	ExpectedReturn float64
	ExpectedRisk   float64
	SharpeRatio    float64

	FrontierReturns []float64
	FrontierRisks   []float64

	AssetIDs     []string
	AssetReturns map[string]float64
	AssetRisks   map[string]float64
	Correlations [][]float64

	Method               string
	ConstraintsSatisfied bool
	OptimizationSeconds  float64
}
