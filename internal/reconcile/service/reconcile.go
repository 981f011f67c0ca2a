package service

import (
	"context"
	"sync"

	"invoice-recon/internal/reconcile/model"
)

// Run — сверка пачки строк с раздачей по воркерам.
// Группировка непрошедших строк: только после завершения всех сверок (барьер).
func (m *Matcher) Run(lines []model.InvoiceLine, snapshot map[string][]model.CatalogCandidate, workers int) ([]model.MatchResult, []model.ProductGroup) {
	results := make([]model.MatchResult, len(lines))
	if workers <= 1 || len(lines) < 2 {
		results = m.MatchAll(lines, snapshot)
		return results, GroupUnmatched(results)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = m.Match(lines[i], snapshot[lines[i].Supplier])
			}
		}()
	}
	for i := range lines {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results, GroupUnmatched(results)
}

// ProductFinder — поиск ID товара во внешней системе по артикулу.
type ProductFinder interface {
	FindProductID(ctx context.Context, sku string) (string, error)
}

// ResolveLocationIDs заполняет IDA/IDB для сопоставленных строк.
// Ошибка поиска оставляет ID пустым.
func ResolveLocationIDs(ctx context.Context, results []model.MatchResult, finder ProductFinder) {
	if finder == nil {
		return
	}
	for i := range results {
		r := &results[i]
		if !r.Matched() {
			continue
		}
		if r.SKUA != "" {
			if id, err := finder.FindProductID(ctx, r.SKUA); err == nil {
				r.IDA = id
			}
		}
		if r.SKUB != "" {
			if id, err := finder.FindProductID(ctx, r.SKUB); err == nil {
				r.IDB = id
			}
		}
	}
}
