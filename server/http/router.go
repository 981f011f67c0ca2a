package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"invoice-recon/internal/config"
	"invoice-recon/internal/middleware"
	recHnd "invoice-recon/internal/reconcile/handler"
	"invoice-recon/server/http/handlers"
)

func NewRouter(cfg config.Config, deps *recHnd.Deps, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: requestID -> recover -> logging -> cors -> limit
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) << 20))

	r.Get("/health", handlers.Health)
	r.Get("/lookups", recHnd.Lookups(deps, logger))
	r.Post("/price", recHnd.Price(logger))

	// вход: строки счёта
	r.Post("/lines/import", recHnd.ImportLines(cfg, deps, logger))
	r.Post("/extract", recHnd.Extract(cfg, deps, logger))

	// конвейер
	r.Post("/reconcile", recHnd.Reconcile(deps, logger))
	r.Post("/enrich", recHnd.Enrich(deps, logger))
	r.Post("/stage", recHnd.Stage(deps, logger))
	r.Post("/synthesize", recHnd.Synthesize(deps, logger))

	// запись в ERP
	r.Post("/sync", recHnd.Sync(deps, logger))
	r.Post("/purchase-orders", recHnd.PurchaseOrders(deps, logger))

	return r
}
