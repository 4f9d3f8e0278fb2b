// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto and
exposed at /metrics:

	curl http://localhost:8000/metrics

# Available Metrics

HTTP:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Query pipeline:
  - share_token_checks_total{result}
  - explore_queries_total{dataset,outcome}
  - explore_query_rejections_total{kind}
  - explore_query_rows{dataset}
  - engine_execution_duration_seconds{engine,dataset}
  - engine_execution_errors_total{engine,dataset}

Warehouse and resilience:
  - warehouse_query_duration_seconds{driver,operation}
  - warehouse_query_errors_total{driver,operation,error_type}
  - circuit_breaker_state{name}
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

Label values are bounded: dataset ids come from the registry whitelist and
unknown ids are recorded as "unknown" by the caller.
*/
package metrics
