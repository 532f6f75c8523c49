package optimization

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/chrimar3/ATHintel-sub000/internal/modules/simulation"
)

const (
	penaltyWeight      = 1000.0
	weightSumTolerance = 1e-4
	boundTolerance     = 1e-3
	// frontierTolerance is how close a min-risk solve must land to its
	// target return for the point to enter the frontier.
	frontierTolerance = 5e-3
)

// Optimizer solves the constrained allocation problem across simulated
// assets. The three objective modes share the same equality constraint
// (weights sum to 1) and box bounds (0 to the per-asset cap), expressed via
// a penalty method over gonum's unconstrained minimizers, matching how the
// rest of the engine uses gonum.
type Optimizer struct {
	riskFree float64
	log      zerolog.Logger
}

// NewOptimizer creates an optimizer. riskFreeRate enters the Sharpe
// objective only.
func NewOptimizer(riskFreeRate float64, log zerolog.Logger) *Optimizer {
	return &Optimizer{
		riskFree: riskFreeRate,
		log:      log.With().Str("component", "optimizer").Logger(),
	}
}

// Optimize produces the optimal weighting across the given simulation
// results for the requested objective, plus the efficient frontier. The
// covariance matrix is reconstructed from per-asset risk and the attached
// correlation matrix (identity when no correlations were attached).
//
// Non-convergence is not an error: the best iterate found is returned with
// ConstraintsSatisfied set to false. Constraint satisfaction is re-checked
// explicitly after the solve rather than trusted from the solver status.
func (o *Optimizer) Optimize(results map[string]*simulation.SimulationResult, req Request) (*Result, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no simulation results to optimize")
	}

	if req.Objective == "" {
		req.Objective = ObjectiveMaxSharpe
	}
	switch req.Objective {
	case ObjectiveMaxSharpe:
	case ObjectiveMaxReturn:
		if req.TargetRisk == nil {
			return nil, fmt.Errorf("target_risk required for %s objective", ObjectiveMaxReturn)
		}
	case ObjectiveMinRisk:
		if req.TargetReturn == nil {
			return nil, fmt.Errorf("target_return required for %s objective", ObjectiveMinRisk)
		}
	default:
		return nil, fmt.Errorf("unknown objective: %s", req.Objective)
	}

	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	n := len(ids)

	mu := make([]float64, n)
	sigma := make([]float64, n)
	assetReturns := make(map[string]float64, n)
	assetRisks := make(map[string]float64, n)
	for i, id := range ids {
		m := results[id].Metrics
		mu[i] = m.MeanReturn
		sigma[i] = m.StdReturn
		assetReturns[id] = m.MeanReturn
		assetRisks[id] = m.StdReturn
	}

	corr := correlationFor(results, ids)
	cov := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cov.Set(i, j, sigma[i]*sigma[j]*corr[i][j])
		}
	}

	maxWeight := req.MaxWeight
	if maxWeight <= 0 {
		maxWeight = DefaultMaxWeight
	}
	// The cap must admit a sum-to-one allocation.
	if maxWeight*float64(n) < 1 {
		adjusted := 1.0 / float64(n)
		o.log.Warn().
			Float64("max_weight", maxWeight).
			Float64("adjusted", adjusted).
			Int("assets", n).
			Msg("Per-asset cap too tight for a full allocation, raising to 1/n")
		maxWeight = adjusted
	}

	points := req.FrontierPoints
	if points <= 0 {
		points = DefaultFrontierPoints
	}

	o.log.Info().
		Str("objective", string(req.Objective)).
		Int("assets", n).
		Float64("max_weight", maxWeight).
		Msg("Optimizing portfolio")

	start := time.Now()

	var problem optimize.Problem
	switch req.Objective {
	case ObjectiveMaxSharpe:
		problem = o.maxSharpeProblem(mu, cov, maxWeight)
	case ObjectiveMaxReturn:
		problem = o.maxReturnProblem(mu, cov, maxWeight, *req.TargetRisk)
	case ObjectiveMinRisk:
		problem = o.minRiskProblem(mu, cov, maxWeight, *req.TargetReturn)
	}

	x, converged := o.solve(problem, n)
	weights := finalizeWeights(x, maxWeight)

	ret, variance := portfolioMoments(weights, mu, cov)
	risk := math.Sqrt(math.Max(variance, 0))

	satisfied := converged && checkWeightConstraints(weights, maxWeight)
	switch req.Objective {
	case ObjectiveMaxReturn:
		if risk > *req.TargetRisk+boundTolerance {
			satisfied = false
		}
	case ObjectiveMinRisk:
		if math.Abs(ret-*req.TargetReturn) > frontierTolerance {
			satisfied = false
		}
	}

	sharpe := 0.0
	if risk > 0 {
		sharpe = (ret - o.riskFree) / risk
	}

	frontierReturns, frontierRisks := o.frontier(mu, cov, maxWeight, points)

	weightMap := make(map[string]float64, n)
	for i, id := range ids {
		weightMap[id] = weights[i]
	}

	elapsed := time.Since(start).Seconds()
	if !satisfied {
		o.log.Warn().
			Str("objective", string(req.Objective)).
			Bool("converged", converged).
			Msg("Optimizer did not fully satisfy constraints, returning best iterate")
	}

	return &Result{
		Weights:              weightMap,
		ExpectedReturn:       ret,
		ExpectedRisk:         risk,
		SharpeRatio:          sharpe,
		FrontierReturns:      frontierReturns,
		FrontierRisks:        frontierRisks,
		AssetIDs:             ids,
		AssetReturns:         assetReturns,
		AssetRisks:           assetRisks,
		Correlations:         corr,
		Method:               string(req.Objective),
		ConstraintsSatisfied: satisfied,
		OptimizationSeconds:  elapsed,
	}, nil
}

// correlationFor extracts the correlation matrix attached by a portfolio
// simulation, reordered to ids. Assets without attached correlations get the
// identity (fully independent) fallback.
func correlationFor(results map[string]*simulation.SimulationResult, ids []string) [][]float64 {
	n := len(ids)
	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
		corr[i][i] = 1.0
	}

	var source *simulation.SimulationResult
	for _, id := range ids {
		if r := results[id]; r != nil && r.Correlations != nil && len(r.CorrelationIDs) > 0 {
			source = r
			break
		}
	}
	if source == nil {
		return corr
	}

	index := make(map[string]int, len(source.CorrelationIDs))
	for i, id := range source.CorrelationIDs {
		index[id] = i
	}
	for i, a := range ids {
		for j, b := range ids {
			ai, aok := index[a]
			bi, bok := index[b]
			if aok && bok {
				corr[i][j] = source.Correlations[ai][bi]
			}
		}
	}
	return corr
}

// frontier sweeps target returns linearly between the lowest and highest
// single-asset mean return, solving the minimize-risk mode at each target.
// Points where the solver fails or misses the target are skipped rather than
// inserted as invalid entries; the sweep is an independent fan-out, so
// individual failures never abort the rest. Output is sorted by risk and
// pruned of dominated points, so returns are non-decreasing along it.
func (o *Optimizer) frontier(mu []float64, cov *mat.Dense, maxWeight float64, points int) ([]float64, []float64) {
	n := len(mu)
	if n < 2 || points < 2 {
		return nil, nil
	}

	minMu, maxMu := mu[0], mu[0]
	for _, m := range mu[1:] {
		minMu = math.Min(minMu, m)
		maxMu = math.Max(maxMu, m)
	}
	if maxMu-minMu < 1e-12 {
		return nil, nil
	}

	type frontierPoint struct {
		ret, risk float64
		ok        bool
	}
	pts := make([]frontierPoint, points)

	var g errgroup.Group
	for k := 0; k < points; k++ {
		k := k
		target := minMu + (maxMu-minMu)*float64(k)/float64(points-1)
		g.Go(func() error {
			problem := o.minRiskProblem(mu, cov, maxWeight, target)
			x, converged := o.solve(problem, n)
			if !converged {
				return nil
			}
			w := finalizeWeights(x, maxWeight)
			ret, variance := portfolioMoments(w, mu, cov)
			if !checkWeightConstraints(w, maxWeight) || math.Abs(ret-target) > frontierTolerance {
				return nil
			}
			pts[k] = frontierPoint{ret: ret, risk: math.Sqrt(math.Max(variance, 0)), ok: true}
			return nil
		})
	}
	_ = g.Wait()

	valid := pts[:0]
	for _, p := range pts {
		if p.ok {
			valid = append(valid, p)
		}
	}
	sort.Slice(valid, func(i, j int) bool { return valid[i].risk < valid[j].risk })

	// Keep only the upper branch: targets below the minimum-variance
	// portfolio's return solve to dominated points (more risk, less return).
	upper := valid[:0]
	best := math.Inf(-1)
	for _, p := range valid {
		if p.ret < best {
			continue
		}
		best = p.ret
		upper = append(upper, p)
	}

	returns := make([]float64, len(upper))
	risks := make([]float64, len(upper))
	for i, p := range upper {
		returns[i] = p.ret
		risks[i] = p.risk
	}
	return returns, risks
}

// solve minimizes the problem from the equal-weight starting point with
// BFGS, retrying with NelderMead on failure. It never errors: if both
// attempts fail the equal-weight iterate is returned with converged false.
func (o *Optimizer) solve(problem optimize.Problem, n int) ([]float64, bool) {
	initial := make([]float64, n)
	for i := range initial {
		initial[i] = 1.0 / float64(n)
	}

	successStatuses := map[optimize.Status]bool{
		optimize.Success:             true,
		optimize.GradientThreshold:   true,
		optimize.FunctionConvergence: true,
	}

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.BFGS{})
	if err == nil && successStatuses[result.Status] {
		return result.X, true
	}

	best := initial
	if err == nil && result != nil {
		best = result.X
	}

	result, err = optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
	if err == nil && result != nil {
		if successStatuses[result.Status] {
			return result.X, true
		}
		best = result.X
	}

	return best, false
}

// maxSharpeProblem: minimize -(w'r - rf) / sqrt(w'Σw) with a quadratic
// penalty on the sum constraint; bounds enforced by projection.
func (o *Optimizer) maxSharpeProblem(mu []float64, cov *mat.Dense, maxWeight float64) optimize.Problem {
	n := len(mu)
	return optimize.Problem{
		Func: func(x []float64) float64 {
			xp := projectToBounds(x, maxWeight)
			ret, variance := portfolioMoments(xp, mu, cov)
			std := math.Sqrt(math.Max(variance, 1e-10))

			obj := -(ret - o.riskFree) / std
			obj += penaltyWeight * sumPenalty(xp)
			return obj
		},
		Grad: func(grad, x []float64) {
			xp := projectToBounds(x, maxWeight)
			ret, variance := portfolioMoments(xp, mu, cov)
			std := math.Sqrt(math.Max(variance, 1e-10))

			excess := ret - o.riskFree
			for i := 0; i < n; i++ {
				var dVariance float64
				for j := 0; j < n; j++ {
					dVariance += 2 * cov.At(i, j) * xp[j]
				}
				grad[i] = -mu[i]/std + excess*dVariance/(2*std*std*std)
			}
			addSumPenaltyGradient(grad, xp)
		},
	}
}

// maxReturnProblem: minimize -w'r subject to w'Σw <= targetRisk^2, penalized
// only when the ceiling is violated.
func (o *Optimizer) maxReturnProblem(mu []float64, cov *mat.Dense, maxWeight, targetRisk float64) optimize.Problem {
	n := len(mu)
	ceiling := targetRisk * targetRisk
	return optimize.Problem{
		Func: func(x []float64) float64 {
			xp := projectToBounds(x, maxWeight)
			ret, variance := portfolioMoments(xp, mu, cov)

			obj := -ret
			obj += penaltyWeight * sumPenalty(xp)
			if excess := variance - ceiling; excess > 0 {
				obj += penaltyWeight * excess * excess
			}
			return obj
		},
		Grad: func(grad, x []float64) {
			xp := projectToBounds(x, maxWeight)
			_, variance := portfolioMoments(xp, mu, cov)

			excess := variance - ceiling
			for i := 0; i < n; i++ {
				grad[i] = -mu[i]
				if excess > 0 {
					var dVariance float64
					for j := 0; j < n; j++ {
						dVariance += 2 * cov.At(i, j) * xp[j]
					}
					grad[i] += 2 * penaltyWeight * excess * dVariance
				}
			}
			addSumPenaltyGradient(grad, xp)
		},
	}
}

// minRiskProblem: minimize w'Σw subject to w'r = targetReturn.
func (o *Optimizer) minRiskProblem(mu []float64, cov *mat.Dense, maxWeight, targetReturn float64) optimize.Problem {
	n := len(mu)
	return optimize.Problem{
		Func: func(x []float64) float64 {
			xp := projectToBounds(x, maxWeight)
			ret, variance := portfolioMoments(xp, mu, cov)

			obj := variance
			obj += penaltyWeight * sumPenalty(xp)
			obj += penaltyWeight * (ret - targetReturn) * (ret - targetReturn)
			return obj
		},
		Grad: func(grad, x []float64) {
			xp := projectToBounds(x, maxWeight)
			ret, _ := portfolioMoments(xp, mu, cov)

			for i := 0; i < n; i++ {
				var dVariance float64
				for j := 0; j < n; j++ {
					dVariance += 2 * cov.At(i, j) * xp[j]
				}
				grad[i] = dVariance + 2*penaltyWeight*(ret-targetReturn)*mu[i]
			}
			addSumPenaltyGradient(grad, xp)
		},
	}
}

// Helper functions

func portfolioMoments(x, mu []float64, cov *mat.Dense) (ret, variance float64) {
	for i := range x {
		ret += mu[i] * x[i]
		for j := range x {
			variance += x[i] * x[j] * cov.At(i, j)
		}
	}
	return ret, variance
}

func projectToBounds(x []float64, maxWeight float64) []float64 {
	proj := make([]float64, len(x))
	for i := range x {
		proj[i] = math.Max(0, math.Min(maxWeight, x[i]))
	}
	return proj
}

func sumPenalty(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return (sum - 1.0) * (sum - 1.0)
}

func addSumPenaltyGradient(grad, x []float64) {
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	for i := range grad {
		grad[i] += 2 * penaltyWeight * (sum - 1.0)
	}
}

// finalizeWeights projects the raw iterate to its bounds and normalizes it
// to sum to 1.
func finalizeWeights(x []float64, maxWeight float64) []float64 {
	w := projectToBounds(x, maxWeight)
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	if sum <= 0 {
		for i := range w {
			w[i] = 1.0 / float64(len(w))
		}
		return w
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

// checkWeightConstraints re-verifies the shared constraints instead of
// trusting the solver's return code.
func checkWeightConstraints(w []float64, maxWeight float64) bool {
	sum := 0.0
	for _, v := range w {
		if v < -boundTolerance || v > maxWeight+boundTolerance {
			return false
		}
		sum += v
	}
	return math.Abs(sum-1.0) <= weightSumTolerance
}
