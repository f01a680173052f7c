package enhance

import (
	"fmt"
	"strings"
)

// RecoveryConfig fixes the post-failure rescue mechanic: one attempt costs
// Scrolls scrolls and cancels the downgrade with probability Rate.
type RecoveryConfig struct {
	Rate    float64
	Scrolls int
}

// PathConfig describes one fixed-length alternate progression available
// while gear sits at EntryTier. Completing Length sub-successes advances
// the main tier by one.
type PathConfig struct {
	EntryTier          int
	Length             int
	Rate               float64
	Pity               int // sub-pity threshold; 0 disables
	CrystalsPerAttempt int // exquisite crystals consumed per sub-attempt
}

// Config is the immutable rule set for a simulation. Rates and Pity are
// arrays indexed by target tier (1..MaxTier); index 0 is unused. Every
// tier in the domain must be present - there are no fallback values.
type Config struct {
	MaxTier int
	Rates   []float64 // base success rate per target tier, (0,1]
	Pity    []int     // pity threshold per target tier; 0 disables

	Recovery RecoveryConfig

	// Multiplicative success-rate boosters (>= 1).
	Valks10Ratio  float64
	Valks50Ratio  float64
	Valks100Ratio float64

	Paths []PathConfig
}

// ValksRatio returns the configured multiplier for a booster tier.
func (c *Config) ValksRatio(v Valks) float64 {
	switch v {
	case Valks10:
		return c.Valks10Ratio
	case Valks50:
		return c.Valks50Ratio
	case Valks100:
		return c.Valks100Ratio
	}
	return 1
}

// PathAt returns the alternate path entered at the given tier, or nil.
func (c *Config) PathAt(tier int) *PathConfig {
	for i := range c.Paths {
		if c.Paths[i].EntryTier == tier {
			return &c.Paths[i]
		}
	}
	return nil
}

// Validate checks semantic constraints. All problems are reported at
// once, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []string

	if c.MaxTier < 1 {
		errs = append(errs, "max_tier must be >= 1")
	}
	if len(c.Rates) != c.MaxTier+1 {
		errs = append(errs, fmt.Sprintf("rates must cover tiers 1..%d (got %d entries)", c.MaxTier, len(c.Rates)))
	} else {
		for t := 1; t <= c.MaxTier; t++ {
			if !(c.Rates[t] > 0 && c.Rates[t] <= 1) {
				errs = append(errs, fmt.Sprintf("rates[%d] must be in (0,1]", t))
			}
		}
	}
	if len(c.Pity) != c.MaxTier+1 {
		errs = append(errs, fmt.Sprintf("pity must cover tiers 1..%d (got %d entries)", c.MaxTier, len(c.Pity)))
	} else {
		for t := 1; t <= c.MaxTier; t++ {
			if c.Pity[t] < 0 {
				errs = append(errs, fmt.Sprintf("pity[%d] must be >= 0 (0 disables pity)", t))
			}
		}
	}

	if c.Recovery.Rate < 0 || c.Recovery.Rate > 1 {
		errs = append(errs, "recovery.rate must be in [0,1]")
	}
	if c.Recovery.Scrolls < 0 {
		errs = append(errs, "recovery.scrolls_per_attempt must be >= 0")
	}

	for _, v := range []Valks{Valks10, Valks50, Valks100} {
		if r := c.ValksRatio(v); r < 1 {
			errs = append(errs, fmt.Sprintf("valks %s ratio must be >= 1", v))
		}
	}

	seen := make(map[int]bool)
	for i, p := range c.Paths {
		if p.EntryTier < 1 || p.EntryTier >= c.MaxTier {
			errs = append(errs, fmt.Sprintf("paths[%d].entry_tier must be in [1,%d)", i, c.MaxTier))
		}
		if seen[p.EntryTier] {
			errs = append(errs, fmt.Sprintf("paths[%d] duplicates entry tier %d", i, p.EntryTier))
		}
		seen[p.EntryTier] = true
		if p.Length < 1 {
			errs = append(errs, fmt.Sprintf("paths[%d].length must be >= 1", i))
		}
		if !(p.Rate > 0 && p.Rate <= 1) {
			errs = append(errs, fmt.Sprintf("paths[%d].rate must be in (0,1]", i))
		}
		if p.Pity < 0 {
			errs = append(errs, fmt.Sprintf("paths[%d].pity must be >= 0", i))
		}
		if p.CrystalsPerAttempt < 0 {
			errs = append(errs, fmt.Sprintf("paths[%d].crystals_per_attempt must be >= 0", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// ValidateTarget checks a requested target tier against the table domain.
func (c *Config) ValidateTarget(target int) error {
	if target < 1 || target > c.MaxTier {
		return fmt.Errorf("%w: target tier %d outside table domain 1..%d", ErrInvalidConfig, target, c.MaxTier)
	}
	return nil
}
