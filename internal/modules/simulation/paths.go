package simulation

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/chrimar3/ATHintel-sub000/internal/domain"
)

// PathGenerator produces time-discretized trajectory ensembles for a single
// asset. Every generator owns its random source, so parallel per-asset
// simulations never share generator state and draw order is defined per
// path/step: paths are filled row by row, steps left to right.
type PathGenerator struct {
	cfg    SimulationConfig
	rng    *rand.Rand
	normal distuv.Normal
}

// NewPathGenerator creates a generator seeded independently of any global
// random state.
func NewPathGenerator(cfg SimulationConfig, seed uint64) *PathGenerator {
	src := rand.NewSource(seed)
	return &PathGenerator{
		cfg:    cfg,
		rng:    rand.New(src),
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

// newEnsemble allocates an [n, steps+1] ensemble with column 0 set to initial.
func (g *PathGenerator) newEnsemble(initial float64) [][]float64 {
	n := g.cfg.NumSimulations
	steps := g.cfg.NumSteps()
	paths := make([][]float64, n)
	for i := range paths {
		paths[i] = make([]float64, steps+1)
		paths[i][0] = initial
	}
	return paths
}

// GeneratePaths produces the value-path ensemble for the configured process
// family. Column 0 equals initialValue for every row.
func (g *PathGenerator) GeneratePaths(initialValue float64) ([][]float64, error) {
	if initialValue <= 0 {
		return nil, fmt.Errorf("initial value must be positive, got %v", initialValue)
	}

	m := g.cfg.Market
	switch g.cfg.ProcessFamily {
	case ProcessGBM:
		return g.generateGBM(initialValue, m.AppreciationMean, m.AppreciationVolatility), nil
	case ProcessJumpDiffusion:
		return g.generateJumpDiffusion(initialValue), nil
	case ProcessRegimeSwitching:
		return g.generateRegimeSwitching(initialValue), nil
	default:
		return nil, fmt.Errorf("unknown process family %q", g.cfg.ProcessFamily)
	}
}

// generateGBM applies the exact GBM step value * exp((mu - sigma^2/2)dt +
// sigma*sqrt(dt)*Z). With sigma = 0 the path degenerates to deterministic
// compounding at exp(mu*dt) per step.
func (g *PathGenerator) generateGBM(initial, mu, sigma float64) [][]float64 {
	paths := g.newEnsemble(initial)
	dt := g.cfg.Dt()
	drift := (mu - 0.5*sigma*sigma) * dt
	diffusion := sigma * math.Sqrt(dt)

	for i := range paths {
		for t := 1; t < len(paths[i]); t++ {
			z := g.normal.Rand()
			paths[i][t] = paths[i][t-1] * math.Exp(drift+diffusion*z)
		}
	}
	return paths
}

// generateJumpDiffusion augments the GBM step with a compound-Poisson jump
// term: jump count ~ Poisson(lambda*dt), each jump a Normal(jumpMean, jumpStd)
// log move. Default parameters bias jumps downward.
func (g *PathGenerator) generateJumpDiffusion(initial float64) [][]float64 {
	m := g.cfg.Market
	paths := g.newEnsemble(initial)
	dt := g.cfg.Dt()
	drift := (m.AppreciationMean - 0.5*m.AppreciationVolatility*m.AppreciationVolatility) * dt
	diffusion := m.AppreciationVolatility * math.Sqrt(dt)

	lambda := m.JumpIntensity * dt
	var poisson distuv.Poisson
	if lambda > 0 {
		poisson = distuv.Poisson{Lambda: lambda, Src: g.normal.Src}
	}

	for i := range paths {
		for t := 1; t < len(paths[i]); t++ {
			z := g.normal.Rand()
			step := drift + diffusion*z

			if lambda > 0 {
				jumps := int(poisson.Rand())
				for j := 0; j < jumps; j++ {
					step += m.JumpMean + m.JumpStd*g.normal.Rand()
				}
			}

			paths[i][t] = paths[i][t-1] * math.Exp(step)
		}
	}
	return paths
}

// generateRegimeSwitching evolves each path through a two-state bull/bear
// Markov chain. Transitions are evaluated independently per path per step;
// within a regime the step is plain GBM with that regime's drift/volatility.
func (g *PathGenerator) generateRegimeSwitching(initial float64) [][]float64 {
	r := g.cfg.Market.Regimes
	paths := g.newEnsemble(initial)
	dt := g.cfg.Dt()
	sqrtDt := math.Sqrt(dt)

	driftByRegime := [2]float64{
		(r.BullDrift - 0.5*r.BullVolatility*r.BullVolatility) * dt,
		(r.BearDrift - 0.5*r.BearVolatility*r.BearVolatility) * dt,
	}
	diffusionByRegime := [2]float64{
		r.BullVolatility * sqrtDt,
		r.BearVolatility * sqrtDt,
	}

	for i := range paths {
		state := regimeBull
		for t := 1; t < len(paths[i]); t++ {
			if g.rng.Float64() > r.Transition[state][state] {
				state = 1 - state
			}
			z := g.normal.Rand()
			paths[i][t] = paths[i][t-1] * math.Exp(driftByRegime[state]+diffusionByRegime[state]*z)
		}
	}
	return paths
}

// GenerateRentalIncomePaths produces the rental-income ensemble for a
// property. The base annual yield is adjusted by property-specific factors,
// compounded by the rental growth rate and perturbed by normal noise each
// step. Income at step t equals initialValue * yield(t) * dt: rent is
// contractual against the initial investment, not marked to the fluctuating
// capital value. Column 0 is zero (no income accrues before the first step).
func (g *PathGenerator) GenerateRentalIncomePaths(prop domain.Property, initialValue float64) [][]float64 {
	m := g.cfg.Market
	baseYield := m.RentalYieldMean * PropertyYieldFactor(prop)
	dt := g.cfg.Dt()
	sqrtDt := math.Sqrt(dt)

	paths := g.newEnsemble(0)
	for i := range paths {
		yield := baseYield
		for t := 1; t < len(paths[i]); t++ {
			noise := m.RentalYieldVolatility * sqrtDt * g.normal.Rand()
			yield = yield*(1+m.RentalGrowthRate*dt) + noise
			if yield < 0 {
				yield = 0
			}
			paths[i][t] = initialValue * yield * dt
		}
	}
	return paths
}

// PropertyYieldFactor derives the multiplicative rental-yield adjustment from
// a property's type, size, energy class and neighborhood. Unknown values fall
// back to a neutral 1.0.
func PropertyYieldFactor(prop domain.Property) float64 {
	factor := 1.0

	switch prop.Type {
	case domain.PropertyTypeStudio:
		factor *= 1.15
	case domain.PropertyTypeLoft:
		factor *= 1.05
	case domain.PropertyTypeApartment:
		factor *= 1.0
	case domain.PropertyTypeMaisonette:
		factor *= 0.95
	case domain.PropertyTypePenthouse:
		factor *= 0.90
	case domain.PropertyTypeDetached:
		factor *= 0.85
	}

	// Smaller units rent at higher yields per euro invested.
	switch {
	case prop.SizeSqm <= 0:
		// unknown size, neutral
	case prop.SizeSqm < 50:
		factor *= 1.10
	case prop.SizeSqm < 90:
		factor *= 1.0
	case prop.SizeSqm < 150:
		factor *= 0.95
	default:
		factor *= 0.90
	}

	if f, ok := energyClassFactors[prop.EnergyClass]; ok {
		factor *= f
	}
	if f, ok := neighborhoodFactors[prop.Neighborhood]; ok {
		factor *= f
	}

	return factor
}

var energyClassFactors = map[string]float64{
	"A+": 1.08,
	"A":  1.06,
	"B+": 1.04,
	"B":  1.02,
	"C":  1.00,
	"D":  0.97,
	"E":  0.94,
	"F":  0.91,
	"G":  0.88,
}

// neighborhoodFactors reflects the inverse relation between Athens purchase
// prices and achievable gross yields: expensive central districts rent at
// lower yields than up-and-coming ones.
var neighborhoodFactors = map[string]float64{
	"Kolonaki":   0.85,
	"Plaka":      0.90,
	"Glyfada":    0.95,
	"Pagkrati":   1.05,
	"Koukaki":    1.05,
	"Exarchia":   1.10,
	"Kypseli":    1.20,
	"Patisia":    1.15,
	"Ampelokipi": 1.05,
}
