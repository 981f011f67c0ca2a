package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Process — стандартная подготовка строки перед сравнением:
// диакритика снимается, регистр нижний, всё кроме букв/цифр → пробел, пробелы схлопываются.
func Process(s string) string {
	if s == "" {
		return ""
	}
	// transform.Chain хранит состояние: собираем на каждый вызов
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Match — лучший вариант из списка.
type Match struct {
	Choice string `json:"choice"`
	Index  int    `json:"index"`
	Score  int    `json:"score"`
}

// ExtractOne выбирает из choices вариант с максимальным WRatio.
// При равенстве побеждает более ранний. ok=false, если выбирать не из чего.
func ExtractOne(query string, choices []string) (Match, bool) {
	best := Match{Index: -1, Score: -1}
	pq := Process(query)
	if pq == "" {
		return Match{Index: -1}, false
	}
	for i, c := range choices {
		s := wratioProcessed(pq, Process(c))
		if s > best.Score {
			best = Match{Choice: c, Index: i, Score: s}
		}
	}
	if best.Index < 0 {
		return Match{Index: -1}, false
	}
	return best, true
}
