package pricing

import (
	"github.com/xtding233/enhance-sim/internal/enhance"
)

// Bundle is a market listing sold in bulk, e.g. 200,000 scrolls for 1T
// silver. Per-unit costs are derived with integer division so totals
// match what the market actually charges.
type Bundle struct {
	Size  int
	Price int64
}

// PerUnit is the floor price of a single item out of the bundle.
func (b Bundle) PerUnit() int64 {
	if b.Size <= 0 {
		return 0
	}
	return b.Price / int64(b.Size)
}

// CostOf prices a quantity against the bundle without intermediate
// per-unit rounding.
func (b Bundle) CostOf(qty int) int64 {
	if b.Size <= 0 || qty <= 0 {
		return 0
	}
	return int64(qty) * b.Price / int64(b.Size)
}

// Table holds market prices and crafting recipes for every resource the
// simulator can consume. All prices are silver. A missing entry prices
// at 0 (not listed), which is how the market data actually looks - most
// boosters are not tradeable.
type Table struct {
	Prices  map[enhance.Resource]int64
	Recipes map[enhance.Resource]map[enhance.Resource]int

	// Restoration scrolls are only sold bundled.
	ScrollBundle Bundle
}

// MarketPrice is the listed price of one unit. Scrolls fall back to the
// bundle-derived price when no explicit listing exists.
func (t Table) MarketPrice(r enhance.Resource) int64 {
	if p, ok := t.Prices[r]; ok && p > 0 {
		return p
	}
	if r == enhance.ResourceScroll {
		return t.ScrollBundle.PerUnit()
	}
	return 0
}

// CraftCost prices one unit crafted from its recipe, inputs at market
// price. Returns 0 when no recipe exists or the inputs are unpriced.
func (t Table) CraftCost(r enhance.Resource) int64 {
	recipe, ok := t.Recipes[r]
	if !ok {
		return 0
	}
	var total int64
	for input, qty := range recipe {
		if input == enhance.ResourceScroll {
			total += t.ScrollBundle.CostOf(qty)
			continue
		}
		total += t.MarketPrice(input) * int64(qty)
	}
	return total
}

// UnitPrice is the effective price: the cheaper of market and craft when
// both are known. Implements enhance.Pricer.
func (t Table) UnitPrice(r enhance.Resource) int64 {
	market := t.MarketPrice(r)
	craft := t.CraftCost(r)
	if craft > 0 {
		if market > 0 && market < craft {
			return market
		}
		return craft
	}
	return market
}
