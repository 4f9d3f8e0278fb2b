// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	reg, err := registry.FromConfig(cfg.Datasets)
type Config struct {
	Server   ServerConfig    `koanf:"server"`
	API      APIConfig       `koanf:"api"`
	Security SecurityConfig  `koanf:"security"`
	Datasets []DatasetConfig `koanf:"datasets"`
	Engine   EngineConfig    `koanf:"engine"`
	Database DatabaseConfig  `koanf:"database"`
	Logging  LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"
}

// APIConfig holds query request limits
type APIConfig struct {
	DefaultQueryLimit int `koanf:"default_query_limit"`
	MaxQueryLimit     int `koanf:"max_query_limit"`
	MaxRangeDays      int `koanf:"max_range_days"` // 0 disables the range check
}

// SecurityConfig holds the share-token whitelist and HTTP protection settings
type SecurityConfig struct {
	ShareTokens       []ShareTokenConfig `koanf:"share_tokens"`
	CORSOrigins       []string           `koanf:"cors_origins"`
	RateLimitReqs     int                `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration      `koanf:"rate_limit_window"`
	RateLimitDisabled bool               `koanf:"rate_limit_disabled"`
}

// ShareTokenConfig is one entry of the static share-token whitelist.
type ShareTokenConfig struct {
	Token  string `koanf:"token"`
	Label  string `koanf:"label"`
	Active bool   `koanf:"active"`
}

// DatasetConfig describes one whitelisted dataset. Dimensions and measures
// are lists so that their configured order is preserved.
type DatasetConfig struct {
	ID         string        `koanf:"id" validate:"required,fieldkey"`
	Label      string        `koanf:"label"`
	Table      string        `koanf:"table" validate:"required,tableref"`
	DateColumn string        `koanf:"date_column"` // defaults to the "dt" dimension expression
	Dimensions []FieldConfig `koanf:"dimensions" validate:"required,min=1,dive"`
	Measures   []FieldConfig `koanf:"measures" validate:"required,min=1,dive"`
}

// FieldConfig maps a public field name to its SQL expression.
type FieldConfig struct {
	Name string `koanf:"name" validate:"required,fieldkey"`
	Expr string `koanf:"expr" validate:"required"`
}

// EngineConfig selects and tunes the execution backend
type EngineConfig struct {
	Backend  string        `koanf:"backend"` // "synthetic" or "warehouse"
	Timeout  time.Duration `koanf:"timeout"`
	Seed     int64         `koanf:"seed"`
	MaxQPS   float64       `koanf:"max_qps"`   // executions per second, 0 = unlimited
	MaxBurst int           `koanf:"max_burst"` // token bucket size
	Breaker  BreakerConfig `koanf:"breaker"`
}

// BreakerConfig holds circuit breaker settings for the execution engine
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`  // probes allowed while half-open
	Interval     time.Duration `koanf:"interval"`      // closed-state counter reset period
	Timeout      time.Duration `koanf:"timeout"`       // open-state duration before half-open
	MinRequests  uint32        `koanf:"min_requests"`  // requests needed before the ratio applies
	FailureRatio float64       `koanf:"failure_ratio"` // trip threshold
}

// DatabaseConfig holds warehouse connection settings
type DatabaseConfig struct {
	Driver       string        `koanf:"driver"` // "duckdb", "mysql" or "sqlite3"
	Path         string        `koanf:"path"`   // file path for duckdb/sqlite3, DSN for mysql
	MaxMemory    string        `koanf:"max_memory"`
	Threads      int           `koanf:"threads"` // DuckDB threads (0 = use NumCPU)
	MaxOpenConns int           `koanf:"max_open_conns"`
	SeedDemoData bool          `koanf:"seed_demo_data"` // create and fill the built-in demo tables
	SeedDays     int           `koanf:"seed_days"`
	PingInterval time.Duration `koanf:"ping_interval"` // warehouse monitor period, 0 disables it
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from all sources in priority order:
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// ActiveShareTokens returns the whitelist entries that are currently active.
func (c *Config) ActiveShareTokens() []ShareTokenConfig {
	active := make([]ShareTokenConfig, 0, len(c.Security.ShareTokens))
	for _, t := range c.Security.ShareTokens {
		if t.Active {
			active = append(active, t)
		}
	}
	return active
}
