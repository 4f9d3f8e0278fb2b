// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

/*
Package main is the entry point for the Data Explorer server.

Data Explorer answers read-only aggregation queries over a fixed catalog of
analytics datasets. Callers hold a share token instead of an account; every
request is checked against the token whitelist before anything else runs.

# Application Architecture

	RootSupervisor ("dataexplorer")
	├── DataSupervisor ("data-layer")
	│   └── Warehouse monitor (ENGINE_BACKEND=warehouse)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Dataset registry: built-in catalog or the datasets section of the config file
 4. Access guard: share-token whitelist
 5. Execution engine: synthetic generator, or a DuckDB/MySQL/SQLite warehouse,
    wrapped in the optional throttle and circuit breaker
 6. Supervisor tree and HTTP server: Chi router with middleware stack

# Configuration

	# Server
	HTTP_PORT=8000
	ENVIRONMENT=development      # production refuses the demo share tokens
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Share tokens: token:label, comma separated, all active
	# (inactive entries can only be declared in config.yaml)
	SHARE_TOKENS=partner-7f3a:Partner dashboard,ops-1c2d:Ops wallboard

	# Engine
	ENGINE_BACKEND=synthetic     # or warehouse
	ENGINE_SEED=42
	ENGINE_MAX_QPS=0             # 0 = unlimited

	# Warehouse (ENGINE_BACKEND=warehouse)
	DB_DRIVER=duckdb             # duckdb, mysql or sqlite3
	DUCKDB_PATH=/data/warehouse.duckdb
	DB_DSN=reader:secret@tcp(db:3306)/analytics
	SEED_DEMO_DATA=true

See internal/config for the complete reference.

# Endpoints

	GET  /share/{token}/datasets
	GET  /share/{token}/dataset/{dataset_id}/fields
	POST /share/{token}/query
	GET  /api/v1/share/...           (same, with Authorization: Bearer)
	GET  /health, /health/live, /health/ready
	GET  /metrics
	GET  /swagger/index.html

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server stops
accepting connections and waits up to SHUTDOWN_TIMEOUT for in-flight
queries; the warehouse is closed last.

# Example Usage

	ENVIRONMENT=development LOG_FORMAT=console ./dataexplorer
	curl -s localhost:8000/share/demo_token_123/datasets

	curl -s -X POST localhost:8000/share/demo_token_123/query \
	  -d '{"dataset_id":"orders","dimension":"dt","measure":"revenue",
	       "date_from":"2025-01-01","date_to":"2025-01-08"}'
*/
package main
