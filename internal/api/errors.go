// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/dataexplorer/internal/access"
	"github.com/tomtom215/dataexplorer/internal/engine"
	"github.com/tomtom215/dataexplorer/internal/logging"
	"github.com/tomtom215/dataexplorer/internal/query"
)

// respondServiceError maps a pipeline error to its HTTP status:
//
//	access.ErrUnauthorized      401
//	query.Error (not found)     404
//	query.Error (other kinds)   400, details.valid_options when known
//	engine.ExecutionError       502, details.hint
//	anything else               500
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var qe *query.Error
	var ee *engine.ExecutionError

	switch {
	case errors.Is(err, access.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", `Bearer realm="dataexplorer"`)
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid or inactive share token", nil)

	case errors.As(err, &qe):
		status := http.StatusBadRequest
		if qe.Kind == query.KindDatasetNotFound {
			status = http.StatusNotFound
		}
		var details map[string]interface{}
		if len(qe.ValidOptions) > 0 {
			details = map[string]interface{}{"valid_options": qe.ValidOptions}
		}
		respondError(w, r, status, qe.Kind.Code(), qe.Message, details)

	case errors.As(err, &ee):
		logging.Ctx(r.Context()).Warn().
			Str("engine", ee.Engine).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("Execution failed")
		respondError(w, r, http.StatusBadGateway, ErrCodeExecution, "Query execution failed",
			map[string]interface{}{"hint": ee.Hint})

	default:
		logging.Ctx(r.Context()).Error().
			Str("error", sanitizeLogValue(err.Error())).
			Msg("Internal error")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal server error", nil)
	}
}
