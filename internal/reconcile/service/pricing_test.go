package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"invoice-recon/internal/reconcile/model"
)

func TestSellPrice(t *testing.T) {
	cases := []struct {
		cost   string
		rng    string
		format string
		want   string
	}{
		{"140", model.RangeRotational, "keg", "179.90"},
		{"140.01", model.RangeRotational, "keg", "180.01"},
		{"63", model.RangeRotational, "keg", "80.96"},
		{"62.99", model.RangeRotational, "keg", "82.99"},
		{"100", model.RangeCore, "Can", "126.50"},
		{"100", model.RangeRotational, "Can", "128.50"},
		{"200", model.RangeCore, "Can", "253.00"},
		{"30", model.RangeCore, "Firkin", "50.00"},
		{"150", model.RangeCore, "Steel Keg 30L", "190"},
		{"0", model.RangeCore, "Keg", "0"},
	}
	for _, c := range cases {
		got := SellPrice(decimal.RequireFromString(c.cost), c.rng, c.format)
		if !got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("SellPrice(%s, %q, %q) = %s, want %s", c.cost, c.rng, c.format, got, c.want)
		}
	}
}

func TestIsDraft(t *testing.T) {
	for _, f := range []string{"KeyKeg", "Steel", "PolyKeg", "UniKeg", "Cask", "Firkin", "Pin"} {
		if !IsDraft(f) {
			t.Errorf("IsDraft(%q) = false", f)
		}
	}
	for _, f := range []string{"Can", "Bottle", "Bag in Box"} {
		if IsDraft(f) {
			t.Errorf("IsDraft(%q) = true", f)
		}
	}
}
