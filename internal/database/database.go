// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tomtom215/dataexplorer/internal/config"
	"github.com/tomtom215/dataexplorer/internal/logging"
)

// Supported database/sql driver names.
const (
	DriverDuckDB = "duckdb"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// DB wraps the warehouse connection pool.
type DB struct {
	conn   *sql.DB
	cfg    *config.DatabaseConfig
	driver string
}

// New opens the configured warehouse and verifies the connection.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	db := &DB{conn: conn, cfg: cfg, driver: cfg.Driver}
	db.configureConnectionPool()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	logging.Info().
		Str("driver", cfg.Driver).
		Bool("in_memory", db.inMemory()).
		Msg("Warehouse connection established")
	return db, nil
}

// buildDSN turns the database config into a driver-specific connection string.
func buildDSN(cfg *config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case DriverDuckDB:
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		} else if err := ensureDir(path); err != nil {
			return "", err
		}

		numThreads := cfg.Threads
		if numThreads <= 0 {
			numThreads = runtime.NumCPU()
		}
		maxMemory := cfg.MaxMemory
		if maxMemory == "" {
			maxMemory = "1GB"
		}
		// Disable auto-install/auto-load to prevent hangs in restricted network environments
		return fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
			path, numThreads, maxMemory), nil

	case DriverMySQL:
		mcfg, err := mysql.ParseDSN(cfg.Path)
		if err != nil {
			return "", fmt.Errorf("invalid DB_DSN: %w", err)
		}
		// DATE and DATETIME columns must scan as time.Time.
		mcfg.ParseTime = true
		mcfg.Loc = time.UTC
		return mcfg.FormatDSN(), nil

	case DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		} else if err := ensureDir(path); err != nil {
			return "", err
		}
		return fmt.Sprintf("file:%s?_busy_timeout=5000", path), nil

	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// ensureDir creates the parent directory of a database file.
// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}

func (db *DB) inMemory() bool {
	return db.driver != DriverMySQL && (db.cfg.Path == "" || db.cfg.Path == ":memory:")
}

// configureConnectionPool sets connection pool parameters.
//
// An in-memory SQLite database exists per connection, so it is pinned to a
// single connection. DuckDB shares one database across the pool.
func (db *DB) configureConnectionPool() {
	maxOpen := db.cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = runtime.NumCPU()
	}
	if db.driver == DriverSQLite && db.inMemory() {
		maxOpen = 1
	}

	db.conn.SetMaxOpenConns(maxOpen)
	db.conn.SetMaxIdleConns(min(2, maxOpen))
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Conn returns the underlying connection pool.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Driver returns the database/sql driver name.
func (db *DB) Driver() string {
	return db.driver
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool. A file-backed DuckDB database is
// checkpointed first so the WAL is flushed into the main file.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	if db.driver == DriverDuckDB && !db.inMemory() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
			// Log warning but don't fail - best effort checkpoint
			logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
		}
		cancel()
	}
	return db.conn.Close()
}
