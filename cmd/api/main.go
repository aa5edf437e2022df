package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jonoalderson/edge-images-sub001/internal/cache"
	"github.com/jonoalderson/edge-images-sub001/internal/domain"
	"github.com/jonoalderson/edge-images-sub001/internal/feature"
	"github.com/jonoalderson/edge-images-sub001/internal/http/handlers"
	"github.com/jonoalderson/edge-images-sub001/internal/http/httpapi"
	"github.com/jonoalderson/edge-images-sub001/internal/infra"
	"github.com/jonoalderson/edge-images-sub001/internal/media"
	"github.com/jonoalderson/edge-images-sub001/internal/providers/edge"
	"github.com/jonoalderson/edge-images-sub001/internal/rewrite"
	"github.com/jonoalderson/edge-images-sub001/internal/transform"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	registry := edge.Default()
	provider, ok := registry.Lookup(cfg.Provider)
	if !ok {
		logger.Fatal().Str("provider", cfg.Provider).Msg("unknown edge provider")
	}

	pcfg := domain.ProviderConfig{
		ID:        cfg.Provider,
		Domain:    cfg.Domain,
		Subdomain: cfg.Subdomain,
		MaxWidth:  cfg.MaxWidth,
		Quality:   cfg.Quality,
	}
	if err := provider.Validate(pcfg); err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.Provider).Msg("provider misconfigured")
	}

	ctx := context.Background()

	// Postgres backs the transform cache and media metadata when available;
	// without DATABASE_URL everything runs in memory.
	var (
		store cache.Store
		repo  media.Repository
	)
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		runner := infra.NewSQLRunner(dbpool, logger)
		store = cache.NewPostgresStore(runner)
		repo = media.NewPostgresRepository(runner, cfg.LocalHosts...)
	} else {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory cache and metadata")
		store = cache.NewMemoryStore()
		repo = media.NewMemoryRepository(cfg.LocalHosts...)
	}

	tc := cache.New(store, cfg.CacheTTL, logger)
	gen := transform.Generator{
		Provider:    provider,
		Config:      pcfg,
		Cache:       tc,
		Breakpoints: cfg.Breakpoints,
	}
	resolver := transform.Resolver{MaxWidth: cfg.MaxWidth, Quality: cfg.Quality}
	gate := feature.NewGate(feature.Config{
		Enabled:          cfg.Enabled,
		PictureWrap:      cfg.PictureWrap,
		DisabledFeatures: cfg.DisabledFeatures,
		Provider:         provider,
		ProviderConfig:   pcfg,
	})
	rewriter := rewrite.New(gate, gen, resolver, repo, logger)

	app := handlers.NewApp(logger, registry, rewriter, gen, resolver, repo, tc)

	router := httpapi.NewRouter(app, httpapi.Options{
		Log:             logger,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("provider", cfg.Provider).Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Periodic sweep of expired cache rows.
	if ps, ok := store.(*cache.PostgresStore); ok {
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for range ticker.C {
				if err := ps.Sweep(ctx); err != nil {
					logger.Warn().Err(err).Msg("cache sweep failed")
				}
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
