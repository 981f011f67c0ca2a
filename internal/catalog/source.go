package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"invoice-recon/internal/reconcile/model"
)

// Source — внешний каталог: все товары одного поставщика (vendor).
type Source interface {
	ProductsByVendor(ctx context.Context, vendor string) ([]model.CatalogCandidate, error)
}

// Snapshot — {поставщик → кандидаты}, живёт один прогон сверки.
type Snapshot map[string][]model.CatalogCandidate

// FetchSnapshot — по одному запросу на уникального поставщика.
// Ошибка источника = пустой набор (строки этого поставщика получат vendor_not_found).
func FetchSnapshot(ctx context.Context, src Source, suppliers []string, logger zerolog.Logger) Snapshot {
	snap := Snapshot{}
	if src == nil {
		return snap
	}
	t0 := time.Now()

	uniq := uniqueNonEmpty(suppliers)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	sem := make(chan struct{}, 4)
	for _, vendor := range uniq {
		wg.Add(1)
		sem <- struct{}{}
		go func(vendor string) {
			defer wg.Done()
			defer func() { <-sem }()

			items, err := src.ProductsByVendor(ctx, vendor)
			if err != nil {
				logger.Warn().Err(err).Str("vendor", vendor).Msg("catalog fetch failed, treating as empty")
				items = nil
			}
			mu.Lock()
			snap[vendor] = items
			mu.Unlock()
		}(vendor)
	}
	wg.Wait()

	logger.Info().
		Int("vendors", len(uniq)).
		Dur("elapsed", time.Since(t0)).
		Msg("catalog snapshot fetched")
	return snap
}

func uniqueNonEmpty(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Static — источник в памяти (тесты, офлайн-выгрузки).
type Static map[string][]model.CatalogCandidate

func (s Static) ProductsByVendor(_ context.Context, vendor string) ([]model.CatalogCandidate, error) {
	return s[vendor], nil
}
