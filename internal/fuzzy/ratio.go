package fuzzy

import (
	"math"
	"sort"
	"strings"
)

// Все функции возвращают целую оценку 0..100 (округление к чётному, как у thefuzz).

func round(f float64) int { return int(math.RoundToEven(f)) }

// Ratio — indel-схожесть без предобработки.
func Ratio(a, b string) int { return round(normalizedIndel(a, b)) }

// TokenSortRatio: сортируем токены по алфавиту (устойчиво к порядку слов).
func TokenSortRatio(a, b string) int {
	pa, pb := Process(a), Process(b)
	if pa == "" || pb == "" {
		return 0
	}
	return round(normalizedIndel(tokenSort(pa), tokenSort(pb)))
}

// TokenSetRatio сравнивает пересечение токенов с остатками каждой строки.
func TokenSetRatio(a, b string) int {
	pa, pb := Process(a), Process(b)
	if pa == "" || pb == "" {
		return 0
	}
	return round(tokenSet(pa, pb, normalizedIndel))
}

// PartialRatio — лучшая схожесть короткой строки с окном длинной.
func PartialRatio(a, b string) int {
	return round(partial(a, b))
}

// WRatio — взвешенная комбинация метрик (аналог fuzz.WRatio).
func WRatio(a, b string) int {
	return wratioProcessed(Process(a), Process(b))
}

func wratioProcessed(pa, pb string) int {
	if pa == "" || pb == "" {
		return 0
	}
	const unbaseScale = 0.95
	partialScale := 0.90
	tryPartial := true

	base := normalizedIndel(pa, pb)

	la, lb := float64(len([]rune(pa))), float64(len([]rune(pb)))
	lenRatio := math.Max(la, lb) / math.Min(la, lb)
	if lenRatio < 1.5 {
		tryPartial = false
	}
	if lenRatio > 8 {
		partialScale = 0.6
	}

	if tryPartial {
		p := partial(pa, pb) * partialScale
		ptsor := partial(tokenSort(pa), tokenSort(pb)) * unbaseScale * partialScale
		ptser := tokenSet(pa, pb, partial) * unbaseScale * partialScale
		return round(maxF(base, p, ptsor, ptser))
	}

	tsor := normalizedIndel(tokenSort(pa), tokenSort(pb)) * unbaseScale
	tser := tokenSet(pa, pb, normalizedIndel) * unbaseScale
	return round(maxF(base, tsor, tser))
}

func partial(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		if len(rb) == 0 {
			return 100
		}
		return 0
	}
	if len(ra) == len(rb) {
		return normalizedIndel(string(ra), string(rb))
	}
	short := string(ra)
	best := 0.0
	for i := 0; i+len(ra) <= len(rb); i++ {
		s := normalizedIndel(short, string(rb[i:i+len(ra)]))
		if s > best {
			best = s
			if best == 100 {
				break
			}
		}
	}
	return best
}

func tokenSet(a, b string, cmp func(string, string) float64) float64 {
	ta, tb := tokenUniq(a), tokenUniq(b)
	var sect, onlyA, onlyB []string
	for t := range ta {
		if _, ok := tb[t]; ok {
			sect = append(sect, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(sect)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	t0 := strings.Join(sect, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(onlyA, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(onlyB, " "))

	if t0 != "" && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}
	return maxF(cmp(t0, t1), cmp(t0, t2), cmp(t1, t2))
}

func tokenUniq(s string) map[string]struct{} {
	m := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		m[t] = struct{}{}
	}
	return m
}

// tokenSort: лексикографическая сортировка токенов
func tokenSort(s string) string {
	f := strings.Fields(s)
	sort.Strings(f)
	return strings.Join(f, " ")
}

func maxF(v ...float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
