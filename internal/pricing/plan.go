package pricing

import (
	"sort"

	"github.com/xtding233/enhance-sim/internal/enhance"
)

// LineItem is one resource row of a purchase plan.
type LineItem struct {
	Resource  enhance.Resource `json:"resource"`
	Qty       int              `json:"qty"`
	UnitPrice int64            `json:"unit_price"`
	Subtotal  int64            `json:"subtotal"`
}

// Plan itemizes what a run's ledger would cost at current prices.
type Plan struct {
	Items []LineItem `json:"items"`
	Total int64      `json:"total"`
}

// PlanFor prices each consumed resource at its effective unit price.
// Items are sorted by resource name so plans are stable across calls.
func (t Table) PlanFor(resources map[enhance.Resource]int) Plan {
	keys := make([]enhance.Resource, 0, len(resources))
	for r, qty := range resources {
		if qty > 0 {
			keys = append(keys, r)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var plan Plan
	for _, r := range keys {
		qty := resources[r]
		unit := t.UnitPrice(r)
		item := LineItem{
			Resource:  r,
			Qty:       qty,
			UnitPrice: unit,
			Subtotal:  unit * int64(qty),
		}
		plan.Items = append(plan.Items, item)
		plan.Total += item.Subtotal
	}
	return plan
}
