// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/dataexplorer/internal/validation"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateDatasets(); err != nil {
		return err
	}

	if err := c.validateEngine(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	return nil
}

var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

// IsProduction returns true when running with ENVIRONMENT=production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Query limit bounds
const (
	maxQueryLimitCeiling = 100000
	maxRangeDaysCeiling  = 3660
)

// validateAPI validates query limit configuration
func (c *Config) validateAPI() error {
	if c.API.MaxQueryLimit < 1 || c.API.MaxQueryLimit > maxQueryLimitCeiling {
		return fmt.Errorf("MAX_QUERY_LIMIT must be between 1 and %d", maxQueryLimitCeiling)
	}
	if c.API.DefaultQueryLimit < 1 || c.API.DefaultQueryLimit > c.API.MaxQueryLimit {
		return fmt.Errorf("DEFAULT_QUERY_LIMIT must be between 1 and MAX_QUERY_LIMIT (%d)", c.API.MaxQueryLimit)
	}
	if c.API.MaxRangeDays < 0 || c.API.MaxRangeDays > maxRangeDaysCeiling {
		return fmt.Errorf("MAX_RANGE_DAYS must be between 0 and %d", maxRangeDaysCeiling)
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if err := c.validateShareTokens(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

// validateShareTokens rejects empty or duplicate tokens, and the built-in
// demo tokens when running in production.
func (c *Config) validateShareTokens() error {
	seen := make(map[string]bool, len(c.Security.ShareTokens))
	for i, t := range c.Security.ShareTokens {
		if t.Token == "" {
			return fmt.Errorf("security.share_tokens[%d]: token must not be empty", i)
		}
		if seen[t.Token] {
			return fmt.Errorf("security.share_tokens[%d]: duplicate token (label %q)", i, t.Label)
		}
		seen[t.Token] = true
	}

	if c.IsProduction() && c.UsesDemoShareTokens() {
		return fmt.Errorf("the built-in demo share tokens are not allowed in production; " +
			"set SHARE_TOKENS=token:label,... or security.share_tokens in the config file")
	}
	return nil
}

// UsesDemoShareTokens returns true if any active whitelist entry is one of the
// publicly known demo tokens. Logged as a warning at startup.
func (c *Config) UsesDemoShareTokens() bool {
	for _, t := range c.Security.ShareTokens {
		if !t.Active {
			continue
		}
		for _, demo := range demoShareTokens {
			if t.Token == demo.Token {
				return true
			}
		}
	}
	return false
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validateDatasets checks the struct tags on each dataset entry. Expression
// safety and duplicate names are enforced by registry.New.
func (c *Config) validateDatasets() error {
	for i := range c.Datasets {
		ds := &c.Datasets[i]
		if verr := validation.ValidateStruct(ds); verr != nil {
			return fmt.Errorf("datasets[%d] (%s): %w", i, ds.ID, verr)
		}
	}
	return nil
}

var validBackends = map[string]bool{
	"synthetic": true,
	"warehouse": true,
}

// validateEngine validates execution engine configuration
func (c *Config) validateEngine() error {
	if !validBackends[c.Engine.Backend] {
		return fmt.Errorf("ENGINE_BACKEND must be one of: synthetic, warehouse")
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("ENGINE_TIMEOUT must be positive")
	}
	if c.Engine.MaxQPS < 0 {
		return fmt.Errorf("ENGINE_MAX_QPS must not be negative")
	}
	if c.Engine.MaxQPS > 0 && c.Engine.MaxBurst < 1 {
		return fmt.Errorf("ENGINE_MAX_BURST must be at least 1 when ENGINE_MAX_QPS is set")
	}
	return c.validateBreaker()
}

// validateBreaker validates circuit breaker configuration (only if enabled)
func (c *Config) validateBreaker() error {
	b := c.Engine.Breaker
	if !b.Enabled {
		return nil
	}
	if b.MaxRequests < 1 {
		return fmt.Errorf("BREAKER_MAX_REQUESTS must be at least 1")
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive")
	}
	if b.FailureRatio <= 0 || b.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	return nil
}

var validDrivers = map[string]bool{
	"duckdb":  true,
	"mysql":   true,
	"sqlite3": true,
}

// validateDatabase validates warehouse configuration (only with the warehouse backend)
func (c *Config) validateDatabase() error {
	if c.Engine.Backend != "warehouse" {
		return nil
	}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("DB_DRIVER must be one of: duckdb, mysql, sqlite3")
	}
	if c.Database.Driver == "mysql" && c.Database.Path == "" {
		return fmt.Errorf("DB_DSN is required when DB_DRIVER=mysql")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	if c.Database.SeedDemoData && c.Database.SeedDays < 1 {
		return fmt.Errorf("SEED_DAYS must be at least 1 when SEED_DEMO_DATA=true")
	}
	if c.Database.PingInterval < 0 {
		return fmt.Errorf("DB_PING_INTERVAL must not be negative")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
