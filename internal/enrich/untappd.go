package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"invoice-recon/internal/reconcile/model"
)

var ErrNotConfigured = errors.New("enrich: untappd is not configured")

// юридические и «пивоварные» слова в названии поставщика
var reCompanyWords = regexp.MustCompile(`(?i)\b(ltd|limited|llp|plc|brewing|brewery|co\.?)(\s|$)`)

// Query — строка поиска: поставщик без юр. слов + продукт, "&" → "and".
func Query(supplier, product string) string {
	supp := strings.ReplaceAll(supplier, "&", " and ")
	prod := strings.ReplaceAll(product, "&", " and ")
	supp = reCompanyWords.ReplaceAllString(supp, " ")
	return strings.Join(strings.Fields(supp+" "+prod), " ")
}

// Lookup — поиск пива во внешней базе.
type Lookup interface {
	Search(ctx context.Context, supplier, product string) (model.Enrichment, error)
}

// Untappd — Untappd for Business API, /items/search.
type Untappd struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewUntappd(baseURL, token string) (*Untappd, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNotConfigured
	}
	if baseURL == "" {
		baseURL = "https://business.untappd.com/api/v1"
	}
	return &Untappd{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 20 * time.Second},
	}, nil
}

// flexString — строка или число в JSON (id и abv приходят в обоих видах).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

type searchItem struct {
	UntappdID       flexString `json:"untappd_id"`
	Name            string     `json:"name"`
	Brewery         string     `json:"brewery"`
	ABV             flexString `json:"abv"`
	Style           string     `json:"style"`
	Description     string     `json:"description"`
	LabelImageThumb string     `json:"label_image_thumb"`
	BreweryLocation string     `json:"brewery_location"`
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

// Search — первое найденное совпадение. Ничего не найдено → Status not_found без ошибки.
func (u *Untappd) Search(ctx context.Context, supplier, product string) (model.Enrichment, error) {
	q := Query(supplier, product)
	res := model.Enrichment{Status: model.EnrichNotFound, QueryUsed: q}
	if q == "" {
		return res, nil
	}

	endpoint := u.baseURL + "/items/search?q=" + strings.ReplaceAll(url.QueryEscape(q), "+", "%20")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return res, err
	}
	req.Header.Set("Authorization", "Basic "+u.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.http.Do(req)
	if err != nil {
		return res, fmt.Errorf("untappd request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return res, fmt.Errorf("untappd api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return res, fmt.Errorf("untappd decode: %w", err)
	}
	if len(parsed.Items) == 0 {
		return res, nil
	}

	best := parsed.Items[0]
	return model.Enrichment{
		Status:          model.EnrichFound,
		ExternalID:      string(best.UntappdID),
		Brewery:         best.Brewery,
		Product:         best.Name,
		ABV:             string(best.ABV),
		Style:           best.Style,
		Description:     best.Description,
		LabelImageURL:   best.LabelImageThumb,
		BreweryLocation: best.BreweryLocation,
		QueryUsed:       q,
	}, nil
}
