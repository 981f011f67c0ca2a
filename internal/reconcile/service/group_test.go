package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"invoice-recon/internal/reconcile/model"
)

func unmatched(product, format string) model.MatchResult {
	return model.MatchResult{
		Status: model.StatusUnmatched,
		Line: model.InvoiceLine{
			Supplier: "Cloudwater",
			Product:  product,
			ABV:      "5.5",
			Format:   format,
			PackSize: "1",
			Volume:   "30L",
			UnitCost: decimal.NewFromInt(100),
		},
	}
}

func TestGroupUnmatched(t *testing.T) {
	results := []model.MatchResult{
		unmatched("Hazy Pale", "KeyKeg"),
		{Status: model.StatusMatched, Line: model.InvoiceLine{Product: "Hazy Pale"}},
		unmatched("DIPA", "Can"),
		unmatched("Hazy Pale", "Can"),
		unmatched("Hazy Pale", "Steel Keg"),
		unmatched("Hazy Pale", "PolyKeg"),
	}
	results[2].Status = model.StatusVendorNotFound

	groups := GroupUnmatched(results)
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].Product != "Hazy Pale" || groups[1].Product != "DIPA" {
		t.Errorf("order = %q, %q", groups[0].Product, groups[1].Product)
	}
	if n := len(groups[0].Slots); n != model.MaxSlots {
		t.Errorf("slots = %d, want %d", n, model.MaxSlots)
	}
	if groups[0].Slots[2].Format != "Steel Keg" {
		t.Errorf("third slot = %q", groups[0].Slots[2].Format)
	}
	if groups[0].ProductType != model.DefaultProductType || groups[0].Range != model.RangeRotational {
		t.Errorf("defaults: %+v", groups[0])
	}
}
