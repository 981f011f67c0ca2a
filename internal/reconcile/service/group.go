package service

import (
	"strings"

	"invoice-recon/internal/reconcile/model"
)

type groupKey struct {
	supplier, collaborator, product, abv string
}

// GroupUnmatched — всё, что не Matched, группируется по (поставщик, коллаб, продукт, ABV)
// в порядке первого появления; у группы не больше трёх слотов формата.
func GroupUnmatched(results []model.MatchResult) []model.ProductGroup {
	idx := make(map[groupKey]int)
	var out []model.ProductGroup

	for _, r := range results {
		if r.Matched() {
			continue
		}
		l := r.Line
		k := groupKey{
			supplier:     strings.TrimSpace(l.Supplier),
			collaborator: strings.TrimSpace(l.Collaborator),
			product:      strings.TrimSpace(l.Product),
			abv:          strings.TrimSpace(l.ABV),
		}
		i, ok := idx[k]
		if !ok {
			out = append(out, model.ProductGroup{
				Supplier:     k.supplier,
				Collaborator: k.collaborator,
				Product:      k.product,
				ABV:          k.abv,
				ProductType:  model.DefaultProductType,
				Range:        model.RangeRotational,
			})
			i = len(out) - 1
			idx[k] = i
		}
		g := &out[i]
		if len(g.Slots) >= model.MaxSlots {
			continue
		}
		g.Slots = append(g.Slots, model.FormatSlot{
			Format:    l.Format,
			PackSize:  l.PackSize,
			Volume:    l.Volume,
			UnitCost:  l.UnitCost,
			SplitCase: l.SplitCase,
		})
	}
	return out
}
