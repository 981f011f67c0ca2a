package service

import "strings"

// Семейства кег: технологии подключения несовместимы между собой.
type kegFamily uint8

const (
	kegPoly  kegFamily = 1 << iota // poly / dolium / PET
	kegKey                         // KeyKeg
	kegSteel                       // steel / stainless
)

func invoiceKegFamilies(fmtLower string) kegFamily {
	var f kegFamily
	if strings.Contains(fmtLower, "poly") || strings.Contains(fmtLower, "dolium") || strings.Contains(fmtLower, "pet") {
		f |= kegPoly
	}
	if strings.Contains(fmtLower, "keykeg") {
		f |= kegKey
	}
	if strings.Contains(fmtLower, "steel") || strings.Contains(fmtLower, "stainless") {
		f |= kegSteel
	}
	return f
}

func catalogKegFamilies(kegLower string) kegFamily {
	var f kegFamily
	if strings.Contains(kegLower, "poly") || strings.Contains(kegLower, "dolium") {
		f |= kegPoly
	}
	if strings.Contains(kegLower, "keykeg") {
		f |= kegKey
	}
	if strings.Contains(kegLower, "steel") || strings.Contains(kegLower, "stainless") {
		f |= kegSteel
	}
	return f
}

// formatCompatible — фильтр совместимости формата счёта и товара каталога.
//
//   - кега: семейство счёта vs семейство каталога; любое перекрёстное сочетание: отказ;
//   - каск/фиркин: товар, где есть "keg" без "cask": отказ;
//   - остальное совместимо.
func formatCompatible(invFormat, candFormatMeta, candKegMeta, candTitle string) bool {
	inv := strings.ToLower(invFormat)

	if strings.Contains(inv, "keg") {
		fi := invoiceKegFamilies(inv)
		fc := catalogKegFamilies(strings.ToLower(candKegMeta + " " + candFormatMeta))
		for _, fam := range []kegFamily{kegPoly, kegKey, kegSteel} {
			if fi&fam != 0 && fc&^fam != 0 {
				return false
			}
		}
		return true
	}

	if strings.Contains(inv, "cask") || strings.Contains(inv, "firkin") {
		shop := strings.ToLower(candFormatMeta + " " + candTitle)
		if strings.Contains(shop, "keg") && !strings.Contains(shop, "cask") {
			return false
		}
	}
	return true
}
