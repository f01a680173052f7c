package config

import (
	"fmt"
	"strings"

	"github.com/xtding233/enhance-sim/internal/enhance"
)

// ValidateRaw checks presence and ranges of a merged RawConfig. Every
// tier in 1..max_tier must appear in both the rate and pity tables; a
// gap is a data error, not something to paper over with a default.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	if cfg.MaxTier == nil {
		errs = append(errs, "max_tier is required")
	} else if *cfg.MaxTier < 1 {
		errs = append(errs, "max_tier must be >= 1")
	}

	if cfg.MaxTier != nil && *cfg.MaxTier >= 1 {
		max := *cfg.MaxTier
		for t := 1; t <= max; t++ {
			rate, ok := cfg.Rates[t]
			if !ok {
				errs = append(errs, fmt.Sprintf("rates: tier %d is missing", t))
			} else if !(rate > 0 && rate <= 1) {
				errs = append(errs, fmt.Sprintf("rates[%d] must be in (0,1]", t))
			}
			pity, ok := cfg.Pity[t]
			if !ok {
				errs = append(errs, fmt.Sprintf("pity: tier %d is missing", t))
			} else if pity < 0 {
				errs = append(errs, fmt.Sprintf("pity[%d] must be >= 0 (0 disables pity)", t))
			}
		}
		for t := range cfg.Rates {
			if t < 1 || t > max {
				errs = append(errs, fmt.Sprintf("rates: tier %d outside domain 1..%d", t, max))
			}
		}
	}

	if cfg.Recovery == nil {
		errs = append(errs, "recovery section is required")
	} else {
		if cfg.Recovery.Rate == nil {
			errs = append(errs, "recovery.rate is required")
		} else if *cfg.Recovery.Rate < 0 || *cfg.Recovery.Rate > 1 {
			errs = append(errs, "recovery.rate must be in [0,1]")
		}
		if cfg.Recovery.Scrolls == nil {
			errs = append(errs, "recovery.scrolls_per_attempt is required")
		} else if *cfg.Recovery.Scrolls < 0 {
			errs = append(errs, "recovery.scrolls_per_attempt must be >= 0")
		}
	}

	if cfg.Valks == nil {
		errs = append(errs, "valks section is required")
	} else {
		for name, v := range map[string]*float64{"small": cfg.Valks.Small, "large": cfg.Valks.Large, "huge": cfg.Valks.Huge} {
			if v == nil {
				errs = append(errs, fmt.Sprintf("valks.%s is required", name))
			} else if *v < 1 {
				errs = append(errs, fmt.Sprintf("valks.%s must be >= 1", name))
			}
		}
	}

	if cfg.Market != nil {
		for item, price := range cfg.Market.Prices {
			if price < 0 {
				errs = append(errs, fmt.Sprintf("market.prices[%s] must be >= 0", item))
			}
		}
		if b := cfg.Market.ScrollBundle; b != nil {
			if b.Size == nil || *b.Size <= 0 {
				errs = append(errs, "market.scroll_bundle.size must be >= 1")
			}
			if b.Price == nil || *b.Price < 0 {
				errs = append(errs, "market.scroll_bundle.price must be >= 0")
			}
		}
	}

	// path ranges are re-checked by the engine config; only the raw
	// structure is validated here
	for i, p := range cfg.Paths {
		if p.EntryTier < 1 {
			errs = append(errs, fmt.Sprintf("paths[%d].entry_tier must be >= 1", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", enhance.ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}
