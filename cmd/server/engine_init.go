// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/dataexplorer/internal/api"
	"github.com/tomtom215/dataexplorer/internal/config"
	"github.com/tomtom215/dataexplorer/internal/database"
	"github.com/tomtom215/dataexplorer/internal/engine"
	"github.com/tomtom215/dataexplorer/internal/logging"
	"github.com/tomtom215/dataexplorer/internal/query"
)

// backend is the execution engine plus the warehouse it reads, if any.
type backend struct {
	engine  engine.Engine
	dialect query.Dialect
	db      *database.DB
}

// newBackend builds the configured engine and applies the throttle and
// circuit breaker.
func newBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	if cfg.Engine.Backend != "warehouse" {
		logging.Info().Int64("seed", cfg.Engine.Seed).Msg("Using synthetic engine")
		return &backend{
			engine:  engine.Wrap(engine.NewSynthetic(cfg.Engine.Seed), cfg.Engine),
			dialect: query.DialectStandard,
		}, nil
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Database.SeedDemoData {
		seedCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		err := db.SeedDemoData(seedCtx, engine.NewGenerator(cfg.Engine.Seed), cfg.Database.SeedDays, time.Now().UTC())
		cancel()
		if err != nil {
			closeDB(db)
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	logging.Info().Str("driver", db.Driver()).Msg("Using warehouse engine")
	return &backend{
		engine:  engine.Wrap(engine.NewWarehouse(db.Conn(), db.Driver()), cfg.Engine),
		dialect: query.DialectFor(db.Driver()),
		db:      db,
	}, nil
}

// pinger returns the warehouse for the health probes, or nil for the
// synthetic engine.
func (b *backend) pinger() api.Pinger {
	if b.db == nil {
		return nil
	}
	return b.db
}

// Close releases the warehouse connection pool.
func (b *backend) Close() {
	if b.db != nil {
		closeDB(b.db)
	}
}

func closeDB(db *database.DB) {
	if err := db.Close(); err != nil {
		logging.Err(err).Msg("Error closing database")
	}
}
