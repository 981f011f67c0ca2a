package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

var reHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// нормализуем имя колонки: нижний регистр, без служебных символов и двойных пробелов
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ").Replace(s)
	s = reHeaderJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// ищем реальный ключ в записи по желаемому имени.
// Поддерживает варианты через "|" (например: "Supplier|Brewery")
func resolveKey(rec map[string]string, want string) string {
	want = strings.TrimSpace(want)
	if want == "" {
		return ""
	}
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	// точное совпадение
	for _, a := range alts {
		if _, ok := rec[a]; ok {
			return a
		}
	}

	// нормализованное сравнение, затем contains (для составных заголовков вроде "Unit Price (GBP)")
	nWant := make([]string, 0, len(alts))
	for _, a := range alts {
		if n := normHeaderKey(a); n != "" {
			nWant = append(nWant, n)
		}
	}
	bestKey, bestScore := "", 0
	for k := range rec {
		nk := normHeaderKey(k)
		if nk == "" {
			continue
		}
		score := 0
		for _, n := range nWant {
			if nk == n {
				return k
			}
			if strings.Contains(nk, n) || strings.Contains(n, nk) {
				score = max(score, len(n))
			}
		}
		// при равенстве берём лексикографически меньший ключ: порядок обхода map случаен
		if score > bestScore || (score == bestScore && score > 0 && k < bestKey) {
			bestScore, bestKey = score, k
		}
	}
	return bestKey
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}

func toBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Error().Err(err).Msg("write json")
	}
}

// decodeJSON — строгое чтение тела: неизвестные поля и хвост после объекта = ошибка.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON object")
	}
	return nil
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
