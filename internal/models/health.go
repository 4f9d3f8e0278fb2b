// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package models

// HealthStatus represents the health check response
type HealthStatus struct {
	Status            string  `json:"status"` // "healthy" or "degraded"
	Version           string  `json:"version"`
	Engine            string  `json:"engine"`
	Datasets          int     `json:"datasets"`
	ActiveTokens      int     `json:"active_tokens"`
	DatabaseConnected *bool   `json:"database_connected,omitempty"` // nil when no warehouse is configured
	Uptime            float64 `json:"uptime_seconds"`
}

// ReadyStatus represents the readiness probe response
type ReadyStatus struct {
	Ready             bool    `json:"ready_to_serve"`
	DatabaseConnected *bool   `json:"database_connected,omitempty"`
	Uptime            float64 `json:"uptime"`
}
