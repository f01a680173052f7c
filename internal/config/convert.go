package config

import (
	"github.com/xtding233/enhance-sim/internal/enhance"
	"github.com/xtding233/enhance-sim/internal/pricing"
)

// EngineConfig normalizes a merged RawConfig into the engine's
// array-indexed form. Validation runs on both representations so a gap
// in the YAML tables surfaces before any simulation starts.
func (r RawConfig) EngineConfig() (*enhance.Config, error) {
	if err := ValidateRaw(r); err != nil {
		return nil, err
	}

	max := *r.MaxTier
	cfg := &enhance.Config{
		MaxTier: max,
		Rates:   make([]float64, max+1),
		Pity:    make([]int, max+1),
		Recovery: enhance.RecoveryConfig{
			Rate:    *r.Recovery.Rate,
			Scrolls: *r.Recovery.Scrolls,
		},
		Valks10Ratio:  *r.Valks.Small,
		Valks50Ratio:  *r.Valks.Large,
		Valks100Ratio: *r.Valks.Huge,
	}
	for t := 1; t <= max; t++ {
		cfg.Rates[t] = r.Rates[t]
		cfg.Pity[t] = r.Pity[t]
	}
	for _, p := range r.Paths {
		cfg.Paths = append(cfg.Paths, enhance.PathConfig{
			EntryTier:          p.EntryTier,
			Length:             p.Length,
			Rate:               p.Rate,
			Pity:               p.Pity,
			CrystalsPerAttempt: p.CrystalsPerAttempt,
		})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PriceTable builds the market table. A missing market section yields an
// empty table that prices everything at 0.
func (r RawConfig) PriceTable() pricing.Table {
	tab := pricing.Table{
		Prices:  make(map[enhance.Resource]int64),
		Recipes: make(map[enhance.Resource]map[enhance.Resource]int),
	}
	if r.Market == nil {
		return tab
	}
	for item, price := range r.Market.Prices {
		tab.Prices[enhance.Resource(item)] = price
	}
	for output, recipe := range r.Market.Recipes {
		inputs := make(map[enhance.Resource]int, len(recipe))
		for item, qty := range recipe {
			inputs[enhance.Resource(item)] = qty
		}
		tab.Recipes[enhance.Resource(output)] = inputs
	}
	if b := r.Market.ScrollBundle; b != nil && b.Size != nil && b.Price != nil {
		tab.ScrollBundle = pricing.Bundle{Size: *b.Size, Price: *b.Price}
	}
	return tab
}
