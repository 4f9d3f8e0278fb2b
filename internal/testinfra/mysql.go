// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMySQLImage is the warehouse image used by integration tests
	DefaultMySQLImage = "mysql:8.4"

	mysqlPort     = "3306"
	mysqlPassword = "explorer"
	// The demo tables live in the "analytics" database, so the test user
	// connects as root to be allowed to create it.
	mysqlUser = "root"
)

// MySQLContainer represents a running MySQL server for testing.
type MySQLContainer struct {
	testcontainers.Container
	// DSN is a go-sql-driver/mysql data source name for the server
	DSN string
}

// MySQLOption configures the MySQL container.
type MySQLOption func(*mysqlConfig)

type mysqlConfig struct {
	image        string
	startTimeout time.Duration
}

// WithMySQLImage sets a custom MySQL Docker image.
func WithMySQLImage(image string) MySQLOption {
	return func(c *mysqlConfig) {
		c.image = image
	}
}

// WithStartTimeout sets the timeout for waiting for MySQL to accept connections.
func WithStartTimeout(timeout time.Duration) MySQLOption {
	return func(c *mysqlConfig) {
		c.startTimeout = timeout
	}
}

// NewMySQLContainer creates and starts a MySQL server.
func NewMySQLContainer(ctx context.Context, opts ...MySQLOption) (*MySQLContainer, error) {
	cfg := &mysqlConfig{
		image:        DefaultMySQLImage,
		startTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{mysqlPort + "/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": mysqlPassword,
			"MYSQL_DATABASE":      "analytics",
			"TZ":                  "UTC",
		},
		// The entrypoint starts a temporary server first; the second
		// "ready for connections" line is the real one.
		WaitingFor: wait.ForAll(
			wait.ForLog("ready for connections").WithOccurrence(2),
			wait.ForListeningPort(mysqlPort+"/tcp"),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create mysql container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, mysqlPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	return &MySQLContainer{
		Container: container,
		DSN:       fmt.Sprintf("%s:%s@tcp(%s:%s)/analytics", mysqlUser, mysqlPassword, host, port.Port()),
	}, nil
}
