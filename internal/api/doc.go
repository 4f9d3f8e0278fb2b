// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

/*
Package api provides the HTTP layer of Data Explorer.

Routes:

	GET  /share/{token}/datasets                      list_datasets
	GET  /share/{token}/dataset/{dataset_id}/fields   get_dataset_fields
	POST /share/{token}/query                         execute_query
	     /api/v1/share/...                            same, token as Bearer header
	GET  /health, /health/live, /health/ready         probes
	GET  /metrics                                     Prometheus exposition
	GET  /swagger/*                                   OpenAPI UI

Every response is a models.APIResponse envelope. Pipeline errors map to
statuses in respondServiceError: 401 for a bad token, 404 for an unknown
dataset, 400 for other validation failures and malformed JSON, 502 when the
execution engine fails and 500 for anything unexpected.

Usage Example:

	handler := api.NewHandler(svc, db, version)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(&cfg.Security))
	http.ListenAndServe(":8000", router.SetupChi())

Security:

  - Share tokens never reach logs or metric labels; both use the chi route
    pattern instead of the request path
  - Rate limiting per client IP (httprate), permissive on health routes
  - Request bodies are capped and all responses carry Cache-Control: no-store
*/
package api
