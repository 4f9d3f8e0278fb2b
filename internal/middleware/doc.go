// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

/*
Package middleware provides HTTP middleware components for the application.

Key Components:

  - RequestID: UUID-based request tracking, seeded into the logging context
  - PrometheusMetrics: HTTP request/response instrumentation
  - AccessLog: one zerolog line per request

All three are written as func(http.HandlerFunc) http.HandlerFunc and are
adapted to chi's r.Use by the api package. PrometheusMetrics and AccessLog
label requests with the chi route pattern, so they must run inside the
router rather than around it.
*/
package middleware
