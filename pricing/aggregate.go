package pricing

import (
	"math"

	"github.com/kasuganosora/tradeboard/catalog"
	"github.com/shopspring/decimal"
)

// Totals summarizes the whole catalog, not just the filtered view.
type Totals struct {
	TotalQuantity float64 `json:"total_quantity"`
	TotalPrice    float64 `json:"total_price"`
	PricedItems   int     `json:"priced_items"`
	UnpricedItems int     `json:"unpriced_items"`
}

// Aggregate sums quantities and admin-mode prices across items. Unpriced
// items still count toward the quantity but add nothing to the price total.
func Aggregate(items []catalog.Item, edits Edits, table Table) Totals {
	return aggregate(items, catalog.StableIDs(items), edits, table)
}

// AggregateIDs is Aggregate with stable ids precomputed by the caller.
func AggregateIDs(items []catalog.Item, ids []string, edits Edits, table Table) Totals {
	return aggregate(items, ids, edits, table)
}

func aggregate(items []catalog.Item, ids []string, edits Edits, table Table) Totals {
	var t Totals
	qty := decimal.Zero
	sum := decimal.Zero
	for i := range items {
		q := decimal.NewFromFloat(items[i].Qty())
		qty = qty.Add(q)
		p, ok := resolveID(ids[i], &items[i], edits, table, ModeAdmin)
		if !ok {
			t.UnpricedItems++
			continue
		}
		t.PricedItems++
		sum = sum.Add(decimal.NewFromFloat(p).Mul(q))
	}
	t.TotalQuantity = qty.InexactFloat64()
	t.TotalPrice = sum.InexactFloat64()
	return t
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
