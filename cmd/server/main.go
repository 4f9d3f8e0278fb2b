// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/dataexplorer/docs" // Import generated swagger docs
	"github.com/tomtom215/dataexplorer/internal/access"
	"github.com/tomtom215/dataexplorer/internal/api"
	"github.com/tomtom215/dataexplorer/internal/config"
	"github.com/tomtom215/dataexplorer/internal/explore"
	"github.com/tomtom215/dataexplorer/internal/logging"
	"github.com/tomtom215/dataexplorer/internal/query"
	"github.com/tomtom215/dataexplorer/internal/registry"
	"github.com/tomtom215/dataexplorer/internal/supervisor"
	"github.com/tomtom215/dataexplorer/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
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
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("engine", cfg.Engine.Backend).
		Msg("Starting Data Explorer")

	if cfg.UsesDemoShareTokens() {
		logging.Warn().Msg("Demo share tokens are active; set SHARE_TOKENS before exposing this server")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	reg, err := registry.FromConfig(cfg.Datasets)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid dataset catalog")
	}
	guard, err := access.FromConfig(cfg.Security.ShareTokens)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid share token whitelist")
	}
	logging.Info().
		Int("datasets", len(reg.List())).
		Int("active_tokens", guard.ActiveCount()).
		Msg("Catalog and share tokens loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize execution engine")
	}
	defer backend.Close()

	svc := explore.NewService(guard, reg, backend.engine, explore.Options{
		Limits: query.Limits{
			DefaultLimit: cfg.API.DefaultQueryLimit,
			MaxLimit:     cfg.API.MaxQueryLimit,
			MaxRangeDays: cfg.API.MaxRangeDays,
		},
		Dialect: backend.dialect,
		Timeout: cfg.Engine.Timeout,
	})

	handler := api.NewHandler(svc, backend.pinger(), version)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(&cfg.Security))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if backend.db != nil && cfg.Database.PingInterval > 0 {
		tree.AddDataService(services.NewWarehouseMonitorService(backend.db, backend.db.Driver(), cfg.Database.PingInterval))
		logging.Info().Dur("interval", cfg.Database.PingInterval).Msg("Warehouse monitor added")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Err(err).Msg("Supervisor tree error")
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	for _, u := range unstopped {
		logging.Warn().Str("service", u.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
