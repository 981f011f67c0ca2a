package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"invoice-recon/internal/reconcile/model"
)

var draftTriggers = []string{"keykeg", "steel", "poly", "uni", "cask", "keg", "firkin", "pin"}

var (
	draftHighCost   = decimal.NewFromInt(140)
	draftHighMarkup = decimal.NewFromInt(40)
	draftLowCost    = decimal.NewFromInt(63)
	draftLowMarkup  = decimal.NewFromInt(20)
	coreMultiplier  = decimal.RequireFromString("1.265")
	rotaMultiplier  = decimal.RequireFromString("1.285")
)

// IsDraft — разливной формат (кега/каск).
func IsDraft(format string) bool {
	f := strings.ToLower(format)
	for _, t := range draftTriggers {
		if strings.Contains(f, t) {
			return true
		}
	}
	return false
}

// SellPrice — цена продажи (PriceTier1) по себестоимости, типу ассортимента и формату.
// Порядок правил: дорогая кега (+40), дешёвая кега (+20), Core ×1.265, иначе ×1.285.
// Результат округляется до 2 знаков.
func SellPrice(cost decimal.Decimal, productRange, format string) decimal.Decimal {
	if !cost.IsPositive() {
		return decimal.Zero
	}
	draft := IsDraft(format)

	var price decimal.Decimal
	switch {
	case draft && cost.GreaterThan(draftHighCost):
		price = cost.Add(draftHighMarkup)
	case draft && cost.LessThan(draftLowCost):
		price = cost.Add(draftLowMarkup)
	case productRange == model.RangeCore:
		price = cost.Mul(coreMultiplier)
	default:
		price = cost.Mul(rotaMultiplier)
	}
	return price.Round(2)
}
