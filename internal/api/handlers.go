// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package api

import (
	"context"
	"time"

	"github.com/tomtom215/dataexplorer/internal/explore"
	"github.com/tomtom215/dataexplorer/internal/query"
	"github.com/tomtom215/dataexplorer/internal/registry"
)

// maxQueryBodyBytes caps the execute_query request body.
const maxQueryBodyBytes = 64 << 10

// Explorer is the request pipeline behind the share endpoints.
type Explorer interface {
	Authorize(token string) error
	ListDatasets(ctx context.Context, token string) ([]registry.Summary, error)
	GetFields(ctx context.Context, token, datasetID string) (registry.Fields, error)
	ExecuteQuery(ctx context.Context, token string, req query.Request) (*explore.Response, error)
	EngineName() string
	DatasetCount() int
	ActiveTokens() int
}

// Pinger reports warehouse connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: JSON and token helpers
//   - handlers_share.go: list_datasets, get_dataset_fields, execute_query
//   - handlers_health.go: health, liveness and readiness probes
type Handler struct {
	explorer  Explorer
	db        Pinger // nil when the synthetic engine is in use
	version   string
	startTime time.Time
}

// NewHandler creates a new API handler. db may be nil.
//
// Example:
//
//	handler := api.NewHandler(svc, db, version)
//	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(&cfg.Security))
//	http.ListenAndServe(":8000", router.SetupChi())
func NewHandler(explorer Explorer, db Pinger, version string) *Handler {
	return &Handler{
		explorer:  explorer,
		db:        db,
		version:   version,
		startTime: time.Now(),
	}
}
