package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"invoice-recon/internal/catalog"
	"invoice-recon/internal/config"
	"invoice-recon/internal/enrich"
	"invoice-recon/internal/extract"
	"invoice-recon/internal/inventory"
	"invoice-recon/internal/lookup"
	recHnd "invoice-recon/internal/reconcile/handler"
	recSvc "invoice-recon/internal/reconcile/service"
	serverhttp "invoice-recon/server/http"
)

func main() {
	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	deps, closeDeps := buildDeps(cfg, logger)
	defer closeDeps()

	r := serverhttp.NewRouter(cfg, deps, logger)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info().Msg("bye")
}

// buildDeps подключает только настроенные интеграции; остальные поля Deps остаются nil.
func buildDeps(cfg config.Config, logger zerolog.Logger) (*recHnd.Deps, func()) {
	closers := []func(){}
	deps := &recHnd.Deps{
		Matcher:   recSvc.NewMatcher(cfg.LocationA, cfg.LocationB),
		Locations: cfg.Locations(),
		Workers:   cfg.MatchWorkers,
	}

	load := lookup.FileLoader(cfg.LookupFile)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		closers = append(closers, func() { _ = rdb.Close() })
		deps.Lookups = lookup.NewRedisCache(rdb, load, cfg.LookupTTL, logger)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("lookup cache: redis")
	} else {
		deps.Lookups = lookup.NewMemoryCache(load, cfg.LookupTTL)
	}

	if cfg.Shopify.Configured() {
		shop, err := catalog.NewShopify(cfg.Shopify.ShopURL, cfg.Shopify.AccessToken, cfg.Shopify.APIVersion)
		if err != nil {
			logger.Warn().Err(err).Msg("catalog disabled")
		} else {
			deps.Catalog = shop
		}
	}

	if cfg.Cin7.Configured() {
		client, err := inventory.NewClient(inventory.ClientConfig{
			BaseURL:       cfg.Cin7.BaseURL,
			AccountID:     cfg.Cin7.AccountID,
			APIKey:        cfg.Cin7.APIKey,
			RatePerMinute: cfg.Cin7.RatePerMinute,
			MaxRetries:    cfg.Cin7.MaxRetries,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("erp disabled")
		} else {
			deps.ERP = client
			deps.Finder = client
			deps.Directory = client
			deps.Brands = client
		}
	}

	if cfg.Untappd.Configured() {
		u, err := enrich.NewUntappd(cfg.Untappd.BaseURL, cfg.Untappd.APIToken)
		if err != nil {
			logger.Warn().Err(err).Msg("enrichment disabled")
		} else {
			deps.Enrich = u
		}
	}

	if cfg.OpenAI.Configured() {
		deps.Oracle = extract.NewOpenAIOracle(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Rules)
	}

	logger.Info().
		Bool("catalog", deps.Catalog != nil).
		Bool("erp", deps.ERP != nil).
		Bool("enrich", deps.Enrich != nil).
		Bool("extract", deps.Oracle != nil).
		Int("workers", deps.Workers).
		Msg("integrations")

	return deps, func() {
		for _, c := range closers {
			c()
		}
	}
}
