package enrich

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"invoice-recon/internal/reconcile/model"
)

// EnrichGroups дополняет группы данными поиска. Уже найденные пропускаются;
// ошибка поиска = not_found, батч не прерывается. Возвращает копию групп и журнал.
func EnrichGroups(ctx context.Context, lk Lookup, groups []model.ProductGroup, logger zerolog.Logger) ([]model.ProductGroup, []string) {
	out := make([]model.ProductGroup, len(groups))
	copy(out, groups)
	logs := make([]string, 0, len(groups))

	var found int
	for i := range out {
		g := &out[i]
		if g.Enrichment.Status == model.EnrichFound {
			found++
			continue
		}
		if ctx.Err() != nil {
			break
		}

		e, err := lk.Search(ctx, g.Supplier, g.Product)
		if err != nil {
			logger.Warn().Err(err).Str("product", g.Product).Msg("enrichment lookup failed")
		}
		if e.Status == model.EnrichFound {
			found++
			g.Enrichment = e
			logs = append(logs, fmt.Sprintf("found: %s", e.Product))
			continue
		}
		g.Enrichment.Status = model.EnrichNotFound
		g.Enrichment.ExternalID = ""
		g.Enrichment.QueryUsed = e.QueryUsed
		logs = append(logs, fmt.Sprintf("no match: %s | query sent: [%s]", g.Product, e.QueryUsed))
	}

	logger.Info().Int("groups", len(out)).Int("found", found).Msg("enrichment finished")
	return out, logs
}
