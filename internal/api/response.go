// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/dataexplorer/internal/logging"
	"github.com/tomtom215/dataexplorer/internal/models"
)

// Error codes for API responses. Validation failures use the codes of
// query.Kind (INVALID_DIMENSION, DATASET_NOT_FOUND, ...).
const (
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeExecution        = "EXECUTION_ERROR"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeNotReady         = "NOT_READY"
)

// newMetadata stamps response metadata with the time and request ID.
func newMetadata(r *http.Request) models.Metadata {
	return models.Metadata{
		Timestamp: time.Now().UTC(),
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
}

// respondSuccess writes a 200 envelope around data.
func respondSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   models.StatusSuccess,
		Data:     data,
		Metadata: newMetadata(r),
	})
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	respondJSON(w, status, &models.APIResponse{
		Status:   models.StatusError,
		Data:     nil,
		Metadata: newMetadata(r),
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// notFound answers unmatched routes with the JSON envelope.
func notFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
}

// methodNotAllowed answers matched routes called with the wrong method.
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
}
