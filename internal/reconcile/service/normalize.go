package service

import (
	"regexp"
	"strconv"
	"strings"

	"invoice-recon/internal/fuzzy"
)

// SupplierMatchThreshold — ниже этого порога имя поставщика не трогаем.
const SupplierMatchThreshold = 88

// первое число в строке: "330ml" → 330, "4.5 gal" → 4.5
var reFirstNumber = regexp.MustCompile(`\d+\.?\d*`)

// "24x33cl", "12X44CL" и вес "500g" внутри названия
var (
	rePackVolumeToken = regexp.MustCompile(`(?i)\b\d+x\d+cl\b`)
	reWeightToken     = regexp.MustCompile(`(?i)\b\d+g\b`)
)

// === NormalizeVolume — токен объёма для сверки с каталогом ===
// "330ml" → "33", "50L" → "50", "4.5" → "4.5", мусор → "0".
// Миллилитры делятся на 10: каталог подписан в «сантилитровом» масштабе (33 ↔ 330ml).
func NormalizeVolume(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "0"
	}
	num := reFirstNumber.FindString(v)
	if num == "" {
		return "0"
	}
	val, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return "0"
	}
	if strings.Contains(v, "ml") {
		val = val / 10
	}
	return formatNumber(val)
}

// ParsePack — количество в упаковке; пусто/"none"/"nan"/"0"/без числа → 1.
func ParsePack(raw string) float64 {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "", "none", "nan", "0":
		return 1
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		// "24 pack", "24 x": берём первое число
		f, err = strconv.ParseFloat(reFirstNumber.FindString(v), 64)
	}
	if err != nil || f <= 0 {
		return 1
	}
	return f
}

// NormalizePack — токен упаковки для сверки. При split-case и pack>1 упаковка делится пополам.
func NormalizePack(raw string, useSplit bool) string {
	p := ParsePack(raw)
	if useSplit && p > 1 {
		p = p / 2
	}
	return formatNumber(p)
}

// CleanProductName: убрать "|", токены "24x33cl" и "500g", схлопнуть пробелы.
func CleanProductName(name string) string {
	name = strings.ReplaceAll(name, "|", "")
	name = rePackVolumeToken.ReplaceAllString(name, "")
	name = reWeightToken.ReplaceAllString(name, "")
	return collapseSpaces(name)
}

// CanonicalizeSupplier заменяет имя лучшим совпадением из мастер-списка,
// только если схожесть >= 88. Иначе имя возвращается как есть.
func CanonicalizeSupplier(name string, master []string) string {
	if strings.TrimSpace(name) == "" || len(master) == 0 {
		return name
	}
	m, ok := fuzzy.ExtractOne(name, master)
	if !ok || m.Score < SupplierMatchThreshold {
		return name
	}
	return m.Choice
}

// ===== helpers =====

// целое: без дробной части, иначе минимальная десятичная запись
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Схлопывание пробелов
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
