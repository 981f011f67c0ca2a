package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"invoice-recon/internal/fuzzy"
	"invoice-recon/internal/reconcile/model"
)

const (
	candidateMinScore = 40 // ниже: кандидат сразу отбрасывается
	MatchFloor        = 75 // жёсткий порог: ниже ложные совпадения дороже пропусков
	substringBonus    = 10
)

// "<n> x ": признак мультиупаковки в названии варианта
var rePackDescriptor = regexp.MustCompile(`\d+ x `)

// Scorer — метрика схожести названий 0..100.
type Scorer func(a, b string) int

// Matcher сверяет строку счёта со снимком каталога поставщика.
type Matcher struct {
	LocationA model.Location
	LocationB model.Location
	Score     Scorer
	Log       zerolog.Logger // журнал решений по строкам (debug); нулевое значение молчит
}

func NewMatcher(a, b model.Location) *Matcher {
	return &Matcher{LocationA: a, LocationB: b, Score: fuzzy.TokenSortRatio}
}

// WithLogger — копия с логгером запроса; исходный Matcher не меняется.
func (m *Matcher) WithLogger(l zerolog.Logger) *Matcher {
	c := *m
	c.Log = l
	return &c
}

type scored struct {
	score int
	cand  *model.CatalogCandidate
}

// Match — основная сверка одной строки. Без состояния: безопасна для параллельного вызова.
func (m *Matcher) Match(line model.InvoiceLine, candidates []model.CatalogCandidate) model.MatchResult {
	res := model.MatchResult{Line: line, Status: model.StatusVendorNotFound}
	log := m.Log.With().Str("supplier", line.Supplier).Str("product", line.Product).Logger()
	if len(candidates) == 0 {
		log.Debug().Msg("vendor not found")
		return res
	}
	res.Status = model.StatusUnmatched

	invName := line.Product
	invNameLower := strings.ToLower(invName)
	invPack := NormalizePack(line.PackSize, line.SplitCase)
	invVol := NormalizeVolume(line.Volume)

	// 1) Оценка всех кандидатов
	list := make([]scored, 0, len(candidates))
	for i := range candidates {
		clean := cleanCatalogTitle(candidates[i].Title)
		s := m.score(invName, clean)
		if invNameLower != "" && strings.Contains(strings.ToLower(clean), invNameLower) {
			s += substringBonus
		}
		if s > candidateMinScore {
			list = append(list, scored{score: s, cand: &candidates[i]})
		}
	}
	// стабильная сортировка: при равных оценках выигрывает порядок источника
	sort.SliceStable(list, func(i, j int) bool { return list[i].score > list[j].score })
	best := 0
	if len(list) > 0 {
		best = list[0].score
	}
	log.Debug().
		Str("format", line.Format).
		Str("pack", invPack).
		Str("volume", invVol).
		Int("candidates", len(candidates)).
		Int("scored", len(list)).
		Int("best_score", best).
		Msg("checking")

	// 2) Обход по убыванию оценки
	for _, sc := range list {
		if sc.score < MatchFloor {
			continue
		}
		c := sc.cand
		if !formatCompatible(line.Format, c.FormatMeta, c.KegTypeMeta, c.Title) {
			log.Debug().
				Str("candidate", c.Title).
				Int("score", sc.score).
				Str("invoice_format", line.Format).
				Str("format_meta", c.FormatMeta).
				Str("keg_meta", c.KegTypeMeta).
				Msg("compat rejected")
			continue
		}
		for _, v := range c.Variants {
			title := strings.ToLower(v.Title)
			if !packMatches(invPack, title) || !volumeMatches(invVol, title) {
				continue
			}
			// без базового артикула вариант не зеркалится по локациям
			skuA, skuB := m.locationSKUs(strings.TrimSpace(v.SKU))
			if skuA == "" {
				continue
			}
			res.Status = model.StatusMatched
			res.Score = sc.score
			res.MatchedProduct = m.stripLocationPrefix(c.Title)
			res.MatchedVariant = v.Title
			res.ImageURL = c.ImageURL
			res.SKUA, res.SKUB = skuA, skuB
			log.Debug().
				Str("variant", v.Title).
				Str("sku_a", skuA).
				Str("sku_b", skuB).
				Int("score", sc.score).
				Msg("match")
			return res
		}
	}
	log.Debug().Int("best_score", best).Msg("unmatched")
	return res
}

// MatchAll — сверка пачки строк по снимку {поставщик → кандидаты}.
func (m *Matcher) MatchAll(lines []model.InvoiceLine, snapshot map[string][]model.CatalogCandidate) []model.MatchResult {
	out := make([]model.MatchResult, len(lines))
	for i, l := range lines {
		out[i] = m.Match(l, snapshot[l.Supplier])
	}
	return out
}

func (m *Matcher) score(a, b string) int {
	if m.Score == nil {
		return fuzzy.TokenSortRatio(a, b)
	}
	return m.Score(a, b)
}

// "L- / Hazy Pale / Keg" → "Hazy Pale": название товара: вторая часть через "/"
func cleanCatalogTitle(title string) string {
	if !strings.Contains(title, "/") {
		return title
	}
	parts := strings.Split(title, "/")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) >= 2 {
		return parts[1]
	}
	return title
}

func (m *Matcher) stripLocationPrefix(title string) string {
	for _, loc := range []model.Location{m.LocationA, m.LocationB} {
		if len(loc.Prefix) == 2 && strings.HasPrefix(title, loc.Prefix) {
			return title[2:]
		}
	}
	return title
}

// локации делят базовый артикул и отличаются только префиксом
func (m *Matcher) locationSKUs(sku string) (string, string) {
	if len(sku) <= 2 {
		return "", ""
	}
	base := sku[2:]
	return m.LocationA.Prefix + base, m.LocationB.Prefix + base
}

// packMatches: одиночная строка счёта: только варианты без множителя.
func packMatches(pack, title string) bool {
	if pack == "1" {
		return !rePackDescriptor.MatchString(title)
	}
	return strings.Contains(title, pack+" x") || strings.Contains(title, pack+"x")
}

// volumeMatches: подстрока токена, "33"→"330", плюс каскные объёмы (firkin/pin).
func volumeMatches(vol, title string) bool {
	if strings.Contains(title, vol) {
		return true
	}
	if len(vol) == 2 && strings.Contains(title, fmt.Sprintf("%s0", vol)) {
		return true
	}
	switch vol {
	case "9", "40", "41":
		return strings.Contains(title, "firkin")
	case "4", "4.5", "20", "21":
		return strings.Contains(title, "pin")
	}
	return false
}
