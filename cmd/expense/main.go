package main

import (
	"context"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexcho121/expense/internal/assetcache"
	"github.com/alexcho121/expense/internal/config"
	apphttp "github.com/alexcho121/expense/internal/http"
	applog "github.com/alexcho121/expense/internal/log"
	"github.com/alexcho121/expense/internal/metrics"
	"github.com/alexcho121/expense/internal/store"
	"github.com/alexcho121/expense/internal/tracker"
	"github.com/alexcho121/expense/web"
)

func main() {
	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     cfg.LogLevel,
		Component: "expense",
		Pretty:    cfg.LogPretty,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	var (
		stateStore   store.StateStore
		cacheStorage assetcache.CacheStorage
	)
	switch cfg.Backend {
	case "sqlite":
		db, err := store.Open(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open database", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer db.Close()
		stateStore = store.NewSQLiteStore(db)
		cacheStorage = assetcache.NewSQLiteStorage(db)
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
	default:
		stateStore = store.NewMemoryStore()
		cacheStorage = assetcache.NewMemoryStorage()
		logger.Info("Initialized memory backend")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr, err := tracker.New(ctx, stateStore, logger.WithComponent("tracker"))
	if err != nil {
		logger.Error("Failed to load state", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	origin := assetOrigin(cfg, logger)
	assets := assetcache.New(origin, cacheStorage, assetcache.Config{
		Version:  cfg.CacheVersion,
		Manifest: web.Manifest,
		Shell:    "/index.html",
		Logger:   logger.WithComponent("assetcache"),
		Metrics:  m,
	})

	// A failed install is not fatal: the previous generation (if any) keeps
	// serving, and misses fall through to the origin while it is reachable.
	installCtx, installCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := assets.Install(installCtx); err != nil {
		logger.Warn("Asset cache install failed", "error", err)
	} else if err := assets.Activate(installCtx); err != nil {
		logger.Warn("Asset cache activation failed", "error", err)
	}
	installCancel()

	srv := apphttp.NewServer(":"+cfg.Port, tr, assets, logger.WithComponent("http"), m)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting expense server", "port", cfg.Port, "backend", cfg.Backend, "cache_version", cfg.CacheVersion)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// assetOrigin picks where shell assets come from: an external upstream when
// ASSET_UPSTREAM is set, otherwise the embedded copy.
func assetOrigin(cfg *config.Config, logger *applog.Logger) http.Handler {
	if cfg.AssetUpstream == "" {
		return web.Handler()
	}
	target, err := url.Parse(cfg.AssetUpstream)
	if err != nil {
		logger.Warn("Invalid asset upstream, using embedded assets", "upstream", cfg.AssetUpstream, "error", err)
		return web.Handler()
	}
	logger.Info("Proxying shell assets", "upstream", cfg.AssetUpstream)
	return httputil.NewSingleHostReverseProxy(target)
}
