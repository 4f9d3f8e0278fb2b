// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

/*
Package config provides centralized configuration management for Data Explorer.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file (CONFIG_PATH, ./config.yaml or /etc/dataexplorer/config.yaml), then
environment variables.

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8000), HTTP_TIMEOUT, SHUTDOWN_TIMEOUT
  - ENVIRONMENT: development, staging or production

Query limits:
  - DEFAULT_QUERY_LIMIT (default: 500), MAX_QUERY_LIMIT (default: 5000)
  - MAX_RANGE_DAYS (default: 366, 0 disables)

Security:
  - SHARE_TOKENS: comma-separated token:label pairs, all active
  - CORS_ORIGINS: comma-separated origins
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Engine:
  - ENGINE_BACKEND: synthetic (default) or warehouse
  - ENGINE_TIMEOUT (default: 10s), ENGINE_SEED
  - ENGINE_MAX_QPS (default: 0, unlimited), ENGINE_MAX_BURST (default: 10)
  - BREAKER_ENABLED, BREAKER_MAX_REQUESTS, BREAKER_INTERVAL, BREAKER_TIMEOUT,
    BREAKER_MIN_REQUESTS, BREAKER_FAILURE_RATIO

Warehouse:
  - DB_DRIVER: duckdb (default), mysql or sqlite3
  - DUCKDB_PATH / DB_DSN: file path or DSN (empty = in-memory DuckDB)
  - DUCKDB_MAX_MEMORY, DUCKDB_THREADS, DB_MAX_OPEN_CONNS
  - SEED_DEMO_DATA, SEED_DAYS
  - DB_PING_INTERVAL (default: 30s, 0 disables the warehouse monitor)

Logging:
  - LOG_LEVEL, LOG_FORMAT (json or console), LOG_CALLER

Datasets can only be declared in the YAML file:

	datasets:
	  - id: orders
	    label: Orders (Fact)
	    table: analytics.fact_orders
	    date_column: CAST(order_ts AS DATE)
	    dimensions:
	      - {name: dt, expr: "CAST(order_ts AS DATE)"}
	      - {name: platform, expr: platform}
	    measures:
	      - {name: revenue, expr: "SUM(revenue)"}

When no datasets are configured the built-in orders and livestream datasets
are used.
*/
package config
