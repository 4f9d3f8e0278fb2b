// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/dataexplorer/config.yaml",
	"/etc/dataexplorer/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Demo share tokens shipped for local exploration. validateShareTokens
// refuses them in production.
var demoShareTokens = []ShareTokenConfig{
	{Token: "demo_token_123", Label: "Demo Share Link", Active: true},
	{Token: "demo123", Label: "Demo Share Link (Short)", Active: true},
	{Token: "prod_token_456", Label: "Production Share", Active: true},
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	tokens := make([]ShareTokenConfig, len(demoShareTokens))
	copy(tokens, demoShareTokens)

	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		API: APIConfig{
			DefaultQueryLimit: 500,
			MaxQueryLimit:     5000,
			MaxRangeDays:      366,
		},
		Security: SecurityConfig{
			ShareTokens: tokens,
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:5173",
			},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Engine: EngineConfig{
			Backend:  "synthetic",
			Timeout:  10 * time.Second,
			Seed:     42,
			MaxQPS:   0,
			MaxBurst: 10,
			Breaker: BreakerConfig{
				Enabled:      true,
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      30 * time.Second,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		Database: DatabaseConfig{
			Driver:       "duckdb",
			Path:         "", // empty = in-memory DuckDB
			MaxMemory:    "1GB",
			Threads:      0,
			MaxOpenConns: 0,    // 0 = driver-specific default
			SeedDemoData: true, // the default in-memory warehouse is empty otherwise
			SeedDays:     90,
			PingInterval: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	//   HTTP_PORT -> server.port
	//   MAX_QUERY_LIMIT -> api.max_query_limit
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}
	if err := processShareTokens(k); err != nil {
		return nil, fmt.Errorf("failed to process share tokens: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		if trimmed := splitList(strVal); len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// processShareTokens expands SHARE_TOKENS=token:label,token2:label2 into
// whitelist entries. Entries from the environment are always active; a
// token without a label is labelled with its position.
func processShareTokens(k *koanf.Koanf) error {
	const path = "security.share_tokens"

	strVal, ok := k.Get(path).(string)
	if !ok {
		return nil
	}

	parts := splitList(strVal)
	tokens := make([]interface{}, 0, len(parts))
	for i, part := range parts {
		token, label, _ := strings.Cut(part, ":")
		token = strings.TrimSpace(token)
		label = strings.TrimSpace(label)
		if token == "" {
			return fmt.Errorf("SHARE_TOKENS entry %d has an empty token", i+1)
		}
		if label == "" {
			label = fmt.Sprintf("Share Token %d", i+1)
		}
		tokens = append(tokens, map[string]interface{}{
			"token":  token,
			"label":  label,
			"active": true,
		})
	}

	if err := k.Set(path, tokens); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	trimmed := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			trimmed = append(trimmed, p)
		}
	}
	return trimmed
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - SHARE_TOKENS -> security.share_tokens
//   - ENGINE_BACKEND -> engine.backend
//   - DUCKDB_PATH -> database.path
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server
		"http_port":        "server.port",
		"http_host":        "server.host",
		"http_timeout":     "server.timeout",
		"shutdown_timeout": "server.shutdown_timeout",
		"environment":      "server.environment",

		// Query limits
		"default_query_limit": "api.default_query_limit",
		"max_query_limit":     "api.max_query_limit",
		"max_range_days":      "api.max_range_days",

		// Security
		"share_tokens":        "security.share_tokens",
		"cors_origins":        "security.cors_origins",
		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"disable_rate_limit":  "security.rate_limit_disabled",

		// Engine
		"engine_backend":        "engine.backend",
		"engine_timeout":        "engine.timeout",
		"engine_seed":           "engine.seed",
		"engine_max_qps":        "engine.max_qps",
		"engine_max_burst":      "engine.max_burst",
		"breaker_enabled":       "engine.breaker.enabled",
		"breaker_max_requests":  "engine.breaker.max_requests",
		"breaker_interval":      "engine.breaker.interval",
		"breaker_timeout":       "engine.breaker.timeout",
		"breaker_min_requests":  "engine.breaker.min_requests",
		"breaker_failure_ratio": "engine.breaker.failure_ratio",

		// Database
		"db_driver":         "database.driver",
		"db_dsn":            "database.path",
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",
		"db_max_open_conns": "database.max_open_conns",
		"seed_demo_data":    "database.seed_demo_data",
		"seed_days":         "database.seed_days",
		"db_ping_interval":  "database.ping_interval",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped so unrelated environment variables never
	// pollute the configuration.
	return ""
}
