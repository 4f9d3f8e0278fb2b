// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package models

import (
	"time"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"rows": [{"dt": "2025-01-01", "revenue": 1520.25}]},
//	  "metadata": {
//	    "timestamp": "2025-11-28T12:00:00Z",
//	    "query_time_ms": 4,
//	    "engine": "warehouse"
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "INVALID_DIMENSION",
//	    "message": "Invalid dimension 'host'. Valid options: dt, platform, product_name",
//	    "details": {"valid_options": ["dt", "platform", "product_name"]}
//	  },
//	  "metadata": {"timestamp": "2025-11-28T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
//
// Fields:
//   - Timestamp: Server time when response was generated (RFC3339 format)
//   - QueryTimeMS: Pipeline time in milliseconds, set on execute_query only
//   - Engine: Execution backend that produced the rows
//   - RequestID: Correlates the response with server logs
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Engine      string    `json:"engine,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - UNAUTHORIZED: Missing, unknown or inactive share token
//   - DATASET_NOT_FOUND: Dataset id is not in the catalog
//   - INVALID_DIMENSION / INVALID_MEASURE: details.valid_options lists the choices
//   - INVALID_DATE_RANGE, INVALID_LIMIT, INVALID_ORDER: Bad query parameters
//   - INVALID_JSON: Request body could not be decoded
//   - EXECUTION_ERROR: The data source failed; details.hint is safe to display
//   - INTERNAL_ERROR: Unexpected server failure
//   - RATE_LIMIT_EXCEEDED: Too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
