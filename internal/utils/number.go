package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	rxKeepNums      = regexp.MustCompile(`[^\d\.\-]`)
	rxThousandsTail = regexp.MustCompile(`,\d{3}$`)
)

// ParseNumber парсит "£1,234.50", "12,5", "1 234", "(12.00)" (NBSP/NNBSP) и т.п.
func ParseNumber(s string) (float64, bool) {
	s = cleanNumber(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// ParseMoney — то же, но в decimal (без потерь на float).
func ParseMoney(s string) (decimal.Decimal, bool) {
	s = cleanNumber(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	// убрать неразрывные/узкие пробелы и обычные пробелы
	s = strings.NewReplacer("\u00A0", "", "\u202F", "", " ", "", "\t", "").Replace(s)

	// запятая: разделитель тысяч ("1,234.50", "1,234") или десятичная ("12,5")
	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") > 0 && rxThousandsTail.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	default:
		s = strings.ReplaceAll(s, ",", ".")
	}
	// оставить только цифры, точку и минус (на случай мусора)
	s = rxKeepNums.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return ""
	}
	if neg && !strings.HasPrefix(s, "-") {
		s = "-" + s
	}
	return s
}
