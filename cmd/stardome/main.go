package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZoussCity/stardome/internal/api"
	"github.com/ZoussCity/stardome/internal/auth"
	"github.com/ZoussCity/stardome/internal/config"
	"github.com/ZoussCity/stardome/internal/eop"
	"github.com/ZoussCity/stardome/internal/metrics"
	"github.com/ZoussCity/stardome/internal/transform"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger.Info("configuration loaded", "config", cfg)

	store := eop.NewStore()
	eopCache := eop.NewCache(cfg.EOP.CacheDir, cfg.EOP.MaxFiles)
	fetcher := eop.NewFetcher(cfg.EOP.SourceURL, logger)

	// Attempt to load cached EOP data on startup.
	if ds, err := eop.LoadCached(eopCache, store, logger); err != nil {
		logger.Info("no EOP cache found, starting without EOP data", "error", err)
	} else {
		metrics.SetEOPDatasetEntries(len(ds.Entries))
	}

	pool := transform.NewWorkerPool(cfg.Transform.Workers, logger)

	srv := api.NewServer(cfg.HTTPAddr, logger, api.Deps{
		Engine:          transform.NewEngine(eop.Native{}),
		Pool:            pool,
		Store:           store,
		Fetcher:         fetcher,
		Cache:           eopCache,
		Auth:            auth.Config{Enabled: cfg.Auth.Enabled, Token: cfg.Auth.Token},
		EOPFetchEnabled: cfg.EOP.FetchEnabled,
		MaxPositions:    cfg.Transform.MaxPositions,
		TrustProxy:      cfg.TrustProxy,
	})

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.EOP.FetchEnabled {
		go refreshLoop(ctx, cfg.EOP.MaxAge, fetcher, eopCache, store, logger)
	}

	// Background goroutine to update EOP dataset age gauge.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				age := store.AgeSeconds()
				if age >= 0 {
					metrics.SetEOPDatasetAge(age)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("starting server",
			"addr", cfg.HTTPAddr,
			"auth_enabled", cfg.Auth.Enabled,
			"eop_fetch_enabled", cfg.EOP.FetchEnabled,
			"transform_workers", pool.Workers(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// refreshLoop keeps the EOP table younger than maxAge. It refreshes at
// startup when the cached table is missing or stale, then on every tick.
func refreshLoop(ctx context.Context, maxAge time.Duration, fetcher *eop.Fetcher, cache *eop.Cache, store *eop.Store, logger *slog.Logger) {
	refresh := func() {
		ds, err := eop.Refresh(ctx, fetcher, cache, store, logger)
		metrics.RecordEOPFetch(err)
		if err != nil {
			logger.Warn("EOP refresh failed", "source_url", fetcher.SourceURL(), "error", err)
			return
		}
		metrics.SetEOPDatasetEntries(len(ds.Entries))
	}

	if age := store.AgeSeconds(); age < 0 || age > maxAge.Seconds() {
		refresh()
	}

	ticker := time.NewTicker(maxAge)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			refresh()
		case <-ctx.Done():
			return
		}
	}
}
