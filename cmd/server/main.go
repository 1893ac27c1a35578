// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

// Package main is the entry point for the Spacedeck server.
//
// Spacedeck aggregates public space and Earth-observation feeds (NASA APOD,
// NeoWs and Mars rover photos, EONET natural events, POWER daily climate
// points, Launch Library 2 and the NOAA SWPC planetary K-index) behind a
// small HTTP API. Every response is served from the freshest tier that
// answers: live upstream data, the in-process TTL cache, the durable summary
// store, and finally a static fallback.
//
// # Startup order
//
//  1. Configuration (koanf: defaults, config.yaml, environment)
//  2. Logging (zerolog)
//  3. Durable summary store (badger, sqlite or memory)
//  4. Metrics recorder and TTL cache
//  5. Upstream client with per-source rate limiter and circuit breaker
//  6. Domain controllers and the chi router
//  7. Supervisor tree: cache warmer and HTTP server
//
// # Signal handling
//
// SIGINT and SIGTERM stop the supervisor tree. After the HTTP server has
// drained, detached cache refreshes and durable saves are awaited before the
// store is closed.
//
//	export NASA_API_KEY=...
//	export ADMIN_SECRET=$(openssl rand -hex 24)
//	./spacedeck
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/spacedeck/internal/api"
	"github.com/tomtom215/spacedeck/internal/cache"
	"github.com/tomtom215/spacedeck/internal/config"
	"github.com/tomtom215/spacedeck/internal/controllers"
	"github.com/tomtom215/spacedeck/internal/logging"
	"github.com/tomtom215/spacedeck/internal/metrics"
	"github.com/tomtom215/spacedeck/internal/summary"
	"github.com/tomtom215/spacedeck/internal/supervisor"
	"github.com/tomtom215/spacedeck/internal/supervisor/services"
	"github.com/tomtom215/spacedeck/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("summary_backend", cfg.Summary.Backend).
		Bool("admin_enabled", cfg.Security.AdminSecret != "" || cfg.Security.AdminSecretHash != "").
		Msg("Starting Spacedeck")

	store, err := summary.Open(cfg.Summary.Backend, cfg.Summary.Path)
	if err != nil {
		logging.Fatal().Err(err).Str("backend", cfg.Summary.Backend).Msg("Failed to open summary store")
	}

	rec := metrics.NewRecorder()
	cacheOpts := []cache.Option{cache.WithRefreshTimeout(cfg.Cache.RefreshTimeout)}
	if cfg.Cache.RefreshDedup {
		cacheOpts = append(cacheOpts, cache.WithRefreshDedup())
	}
	c := cache.NewService(rec, cacheOpts...)

	set := controllers.New(controllers.Deps{
		Upstream:    upstream.NewClientFromConfig(cfg.Upstream, rec),
		Cache:       c,
		Store:       store,
		CacheTTLs:   cfg.Cache,
		Controllers: cfg.Controllers,
		SummaryTTL:  cfg.Summary.TTL,
	})

	handler := api.NewHandler(api.HandlerDeps{
		Controllers: set,
		Cache:       c,
		Recorder:    rec,
		Store:       store,
		Admin:       api.NewAdminAuth(cfg.Security.AdminSecret, cfg.Security.AdminSecretHash),
	})
	mw := api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler, mw).SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if cfg.Cache.WarmInterval > 0 {
		tree.AddRefreshService(services.NewCacheWarmerService(set, cfg.Cache.WarmInterval))
		logging.Info().Dur("interval", cfg.Cache.WarmInterval).Msg("Cache warmer added to supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	// The channel delivers exactly one value when the tree stops.
	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	c.Wait()
	set.Wait()
	if err := store.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing summary store")
	}
	logging.Info().Msg("Spacedeck stopped")
}
