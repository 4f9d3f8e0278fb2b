// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

//go:build integration

package explore

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/dataexplorer/internal/config"
	"github.com/tomtom215/dataexplorer/internal/database"
	"github.com/tomtom215/dataexplorer/internal/engine"
	"github.com/tomtom215/dataexplorer/internal/query"
	"github.com/tomtom215/dataexplorer/internal/testinfra"
)

// A MySQL warehouse seeded from the generator answers like the synthetic
// engine. DECIMAL sums arrive as text from the driver and must shape to the
// same numbers.
func TestSyntheticMatchesMySQLWarehouse(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	const seed = 7
	ctx := context.Background()

	mysql, err := testinfra.NewMySQLContainer(ctx)
	if err != nil {
		t.Fatalf("start mysql: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, mysql)

	db, err := database.New(&config.DatabaseConfig{Driver: database.DriverMySQL, Path: mysql.DSN, MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("open mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	if err := db.SeedDemoData(ctx, engine.NewGenerator(seed), 14, now); err != nil {
		t.Fatalf("SeedDemoData() error = %v", err)
	}
	// A second seed is a no-op.
	if err := db.SeedDemoData(ctx, engine.NewGenerator(seed), 14, now); err != nil {
		t.Fatalf("SeedDemoData() reseed error = %v", err)
	}

	synthetic := newTestService(t, engine.NewSynthetic(seed))
	warehouse := newTestService(t, engine.NewWarehouse(db.Conn(), db.Driver()))

	for _, req := range []query.Request{
		{DatasetID: "orders", Dimension: "dt", Measure: "revenue", DateFrom: "2025-02-16", DateTo: "2025-03-01"},
		{DatasetID: "orders", Dimension: "platform", Measure: "orders", DateFrom: "2025-02-16", DateTo: "2025-03-01"},
		{DatasetID: "livestream", Dimension: "host", Measure: "revenue", DateFrom: "2025-02-20", DateTo: "2025-02-27", Order: "desc"},
	} {
		want, err := synthetic.ExecuteQuery(ctx, goodToken, req)
		if err != nil {
			t.Fatalf("synthetic %s/%s: %v", req.Dimension, req.Measure, err)
		}
		got, err := warehouse.ExecuteQuery(ctx, goodToken, req)
		if err != nil {
			t.Fatalf("warehouse %s/%s: %v", req.Dimension, req.Measure, err)
		}
		if !reflect.DeepEqual(got.Rows, want.Rows) {
			t.Errorf("%s by %s differs\n got: %v\nwant: %v", req.Measure, req.Dimension, got.Rows, want.Rows)
		}
	}
}
