package enhance

import (
	"fmt"
	"math"
)

// Simulator resolves enhancement attempts against one rule set. It owns
// no gear state; callers pass the GearState to mutate, so one Simulator
// can drive many runs as long as each run owns its RandomSource.
type Simulator struct {
	cfg    *Config
	policy Policy
	rng    RandomSource
}

// NewSimulator validates the configuration and builds a simulator.
// A nil rng falls back to the crypto source.
func NewSimulator(cfg *Config, policy Policy, rng RandomSource) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if policy == nil {
		return nil, fmt.Errorf("%w: policy is required", ErrInvalidConfig)
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Simulator{cfg: cfg, policy: policy, rng: rng}, nil
}

// effectiveRate combines the base rate for a target tier with the chosen
// booster. The product is clamped to 1.0.
func (s *Simulator) effectiveRate(target int, v Valks) float64 {
	rate := s.cfg.Rates[target]
	if v != ValksNone {
		rate = math.Min(1.0, rate*s.cfg.ValksRatio(v))
	}
	return rate
}

// Resolve performs one main-path enhancement attempt, mutating g.
//
// Order matters: booster selection and pity are evaluated before the
// draw, costs are paid whether or not the attempt succeeds, and recovery
// is only consulted after a failed draw on gear above tier 0.
func (s *Simulator) Resolve(g *GearState) (AttemptOutcome, error) {
	if g.Tier >= s.cfg.MaxTier {
		return AttemptOutcome{}, ErrAlreadyAtTarget
	}
	target := g.Tier + 1

	valks := s.policy.Multiplier(target)
	rate := s.effectiveRate(target, valks)

	// pity energy forces the attempt when the tier has a threshold
	threshold := s.cfg.Pity[target]
	forced := threshold > 0 && g.EnergyAt(target) >= threshold

	resources := map[Resource]int{ResourceCrystal: 1}
	if valks != ValksNone {
		resources[valks.Resource()]++
	}

	out := AttemptOutcome{
		StartTier: g.Tier,
		Valks:     valks,
		Resources: resources,
	}

	success := forced
	if !forced {
		success = s.rng.Float64() < rate
	}

	if success {
		g.Tier = target
		g.resetEnergy(target)
		out.Success = true
		out.PityTriggered = forced
		out.EndTier = target
		return out, nil
	}

	g.addEnergy(target)
	out.EndTier = g.Tier

	if g.Tier > 0 {
		if s.policy.UseRecovery(g.Tier) {
			out.RecoveryAttempted = true
			resources[ResourceScroll] += s.cfg.Recovery.Scrolls
			if s.rng.Float64() < s.cfg.Recovery.Rate {
				out.RecoverySuccess = true
			} else {
				g.Tier--
				out.EndTier = g.Tier
			}
		} else {
			g.Tier--
			out.EndTier = g.Tier
		}
	}
	// tier 0 never downgrades

	return out, nil
}
