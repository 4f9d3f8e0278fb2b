// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

// Package testinfra provides container helpers for integration tests.
//
// The helpers are compiled only with the integration build tag and use
// testcontainers-go to start real warehouses:
//
//	func TestWarehouse(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    mysql, err := testinfra.NewMySQLContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, mysql)
//
//	    db, err := database.New(&config.DatabaseConfig{Driver: "mysql", Path: mysql.DSN})
//	    ...
//	}
//
// Run with:
//
//	go test -tags integration ./internal/database/...
package testinfra
