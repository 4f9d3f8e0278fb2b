// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/dataexplorer/internal/models"
)

// pingTimeout bounds the warehouse check of the health probes.
const pingTimeout = 2 * time.Second

// databaseConnected pings the warehouse. It returns nil when no warehouse
// is configured.
func (h *Handler) databaseConnected(ctx context.Context) *bool {
	if h.db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	ok := h.db.Ping(ctx) == nil
	return &ok
}

// Health handles health check requests
//
// @Summary Get system health status
// @Description Returns engine, catalog and warehouse status plus uptime. Never fails; inspect status.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Health status retrieved successfully"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.databaseConnected(r.Context())

	status := "healthy"
	if dbConnected != nil && !*dbConnected {
		status = "degraded"
	}

	respondSuccess(w, r, models.HealthStatus{
		Status:            status,
		Version:           h.version,
		Engine:            h.explorer.EngineName(),
		Datasets:          h.explorer.DatasetCount(),
		ActiveTokens:      h.explorer.ActiveTokens(),
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
//
// @Summary Kubernetes liveness probe
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Service is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only if the service is ready to handle traffic
//
// @Summary Kubernetes readiness probe
// @Description Returns 503 while the configured warehouse is unreachable
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.ReadyStatus} "Service is ready"
// @Failure 503 {object} models.APIResponse{data=models.ReadyStatus} "Service is not ready"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.databaseConnected(r.Context())
	ready := dbConnected == nil || *dbConnected

	data := models.ReadyStatus{
		Ready:             ready,
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if ready {
		respondSuccess(w, r, data)
		return
	}
	respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
		Status:   models.StatusError,
		Data:     data,
		Metadata: newMetadata(r),
		Error: &models.APIError{
			Code:    ErrCodeNotReady,
			Message: "Warehouse is unreachable",
		},
	})
}
