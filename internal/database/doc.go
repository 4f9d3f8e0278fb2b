// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

// Package database manages the warehouse connection behind the warehouse
// execution engine.
//
// Three database/sql drivers are registered:
//
//   - duckdb (default): file or in-memory DuckDB, tuned with max_memory and threads
//   - mysql: a MySQL-compatible warehouse, Path holds the DSN
//   - sqlite3: a local SQLite file
//
// SeedDemoData creates the built-in orders and livestream fact tables and
// fills them from the same generator the synthetic engine uses, so both
// backends answer identical queries identically. Seeding is idempotent:
// tables that already hold rows are left alone.
//
// The package does not build queries. Compiled SQL arrives from the query
// package and is run through Conn() by the engine.
package database
