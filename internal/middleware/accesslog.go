// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/dataexplorer/internal/logging"
)

// AccessLog writes one structured log line per request. The route pattern is
// logged instead of the URL path because share-link paths embed the token.
func AccessLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next(wrapper, r)

		logger := logging.Ctx(r.Context())
		event := logger.Info()
		switch {
		case wrapper.statusCode >= http.StatusInternalServerError:
			event = logger.Error()
		case wrapper.statusCode >= http.StatusBadRequest:
			event = logger.Warn()
		}

		event.
			Str("method", r.Method).
			Str("route", RoutePattern(r)).
			Int("status", wrapper.statusCode).
			Int("bytes", wrapper.bytes).
			Str("remote_addr", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}
