package service

import (
	"regexp"
	"strings"
)

var reNonAlnum = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// ProductCode — 4-символьный код продукта из свободного названия.
//
//   - >=4 слов: первые буквы четырёх слов ("Triple Hop Citra Pale" → THCP)
//   - 2-3 слова: по 2 буквы двух первых слов, добивка "X" ("Hazy Pale Ale" → HAPA)
//   - 1 слово: 2 буквы + "XX" ("IPA" → IPXX)
//
// Детерминирован, но не гарантирует уникальность.
func ProductCode(name string) string {
	words := strings.Fields(strings.ToUpper(reNonAlnum.ReplaceAllString(name, "")))
	if len(words) == 0 {
		return "XXXX"
	}
	var code string
	switch {
	case len(words) >= 4:
		for _, w := range words[:4] {
			code += w[:1]
		}
	case len(words) >= 2:
		code = firstN(words[0], 2) + firstN(words[1], 2)
	default:
		code = firstN(words[0], 2) + "XX"
	}
	return padX(code, 4)
}

func firstN(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

// добить "X" справа и обрезать до n
func padX(s string, n int) string {
	if len(s) < n {
		s += strings.Repeat("X", n-len(s))
	}
	return s[:n]
}
