package integrator

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// Li returns the radiance arriving at the ray origin along ray.
	// The scene must be preprocessed. The result is always finite.
	Li(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3
}

// Strategy selects how direct lighting is estimated at each path vertex
type Strategy int

const (
	// StrategyMIS samples a light and the BSDF at every vertex and weights both
	StrategyMIS Strategy = iota
	// StrategyBSDF follows BSDF samples only. Experimental: noisy with small lights
	// and unable to see point lights.
	StrategyBSDF
	// StrategyOneSampleMIS picks light or BSDF sampling with probability 1/2 per
	// vertex and divides by the mixture density. Experimental.
	StrategyOneSampleMIS
)

func (s Strategy) String() string {
	switch s {
	case StrategyBSDF:
		return "bsdf"
	case StrategyOneSampleMIS:
		return "onesample"
	default:
		return "mis"
	}
}

// ParseStrategy maps "mis", "bsdf" or "onesample" to a Strategy
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "mis":
		return StrategyMIS, nil
	case "bsdf":
		return StrategyBSDF, nil
	case "onesample", "one-sample":
		return StrategyOneSampleMIS, nil
	}
	return StrategyMIS, fmt.Errorf("unknown integrator strategy %q", name)
}

// Heuristic is the MIS weighting function used by StrategyMIS
type Heuristic int

const (
	// HeuristicBalance weights a strategy by p_f / (p_f + p_g)
	HeuristicBalance Heuristic = iota
	// HeuristicPower weights a strategy by p_f^2 / (p_f^2 + p_g^2)
	HeuristicPower
)

func (h Heuristic) String() string {
	if h == HeuristicPower {
		return "power"
	}
	return "balance"
}

// ParseHeuristic maps "balance" or "power" to a Heuristic
func ParseHeuristic(name string) (Heuristic, error) {
	switch name {
	case "", "balance":
		return HeuristicBalance, nil
	case "power":
		return HeuristicPower, nil
	}
	return HeuristicBalance, fmt.Errorf("unknown MIS heuristic %q", name)
}

// weight returns the MIS weight of strategy f against g
func (h Heuristic) weight(fPdf, gPdf float64) float64 {
	if h == HeuristicPower {
		return core.PowerHeuristic(1, fPdf, 1, gPdf)
	}
	return core.BalanceHeuristic(1, fPdf, 1, gPdf)
}

// Config selects the integrator variant
type Config struct {
	Strategy  Strategy
	Heuristic Heuristic
}
