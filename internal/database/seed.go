// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/dataexplorer/internal/engine"
	"github.com/tomtom215/dataexplorer/internal/logging"
	"github.com/tomtom215/dataexplorer/internal/metrics"
)

// seedDialect holds the statements that differ between warehouses.
type seedDialect struct {
	createSchema  string
	timestampType string
}

var seedDialects = map[string]seedDialect{
	DriverDuckDB: {
		createSchema:  "CREATE SCHEMA IF NOT EXISTS analytics",
		timestampType: "TIMESTAMP",
	},
	DriverMySQL: {
		createSchema:  "CREATE DATABASE IF NOT EXISTS analytics",
		timestampType: "DATETIME",
	},
}

// demoTable describes one built-in fact table and how a generated record
// maps onto it.
type demoTable struct {
	name    string
	columns func(d seedDialect) string
	insert  func(d seedDialect) string
	args    func(r engine.Record) []any
}

var demoTables = []demoTable{
	{
		name: "analytics.fact_orders",
		columns: func(d seedDialect) string {
			return fmt.Sprintf("order_ts %s NOT NULL, platform VARCHAR(32) NOT NULL, product_name VARCHAR(128) NOT NULL, revenue DECIMAL(12,2) NOT NULL", d.timestampType)
		},
		insert: func(d seedDialect) string {
			return fmt.Sprintf("INSERT INTO analytics.fact_orders (order_ts, platform, product_name, revenue) VALUES (CAST(? AS %s), ?, ?, CAST(? AS DECIMAL(12,2)))", d.timestampType)
		},
		args: func(r engine.Record) []any {
			return []any{r.Timestamp().Format(time.DateTime), r.Platform, r.ProductName, r.Revenue.StringFixed(2)}
		},
	},
	{
		name: "analytics.fact_livestream",
		columns: func(seedDialect) string {
			return "live_date DATE NOT NULL, host VARCHAR(64) NOT NULL, platform VARCHAR(32) NOT NULL, revenue DECIMAL(12,2) NOT NULL"
		},
		insert: func(seedDialect) string {
			return "INSERT INTO analytics.fact_livestream (live_date, host, platform, revenue) VALUES (CAST(? AS DATE), ?, ?, CAST(? AS DECIMAL(12,2)))"
		},
		args: func(r engine.Record) []any {
			return []any{r.Date.Format(time.DateOnly), r.Host, r.Platform, r.Revenue.StringFixed(2)}
		},
	},
}

// SeedDemoData creates the built-in fact tables and fills them with records
// from gen for the days days ending yesterday relative to now. Tables that
// already hold rows are left untouched, so seeding a persistent warehouse is
// safe across restarts. The rows are exactly the records the synthetic
// engine generates for the same seed.
func (db *DB) SeedDemoData(ctx context.Context, gen *engine.Generator, days int, now time.Time) error {
	d, ok := seedDialects[db.driver]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSeedUnsupported, db.driver)
	}
	if days <= 0 {
		return fmt.Errorf("seed days must be positive, got %d", days)
	}

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery(db.driver, "seed", time.Since(start), nil)
	}()

	if _, err := db.conn.ExecContext(ctx, d.createSchema); err != nil {
		return fmt.Errorf("failed to create analytics schema: %w", err)
	}

	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -days)

	total := 0
	for _, tbl := range demoTables {
		n, err := db.seedTable(ctx, d, tbl, gen.Records(tbl.name, from, to))
		if err != nil {
			return err
		}
		total += n
	}

	logging.Info().
		Str("driver", db.driver).
		Str("from", from.Format(time.DateOnly)).
		Str("to", to.Format(time.DateOnly)).
		Int("rows", total).
		Dur("duration", time.Since(start)).
		Msg("Demo data seeded")
	return nil
}

func (db *DB) seedTable(ctx context.Context, d seedDialect, tbl demoTable, records []engine.Record) (int, error) {
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tbl.name, tbl.columns(d))
	if _, err := db.conn.ExecContext(ctx, ddl); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", tbl.name, err)
	}

	var existing int64
	//nolint:gosec // table name comes from the fixed demoTables list
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+tbl.name).Scan(&existing); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", tbl.name, err)
	}
	if existing > 0 {
		logging.Debug().Str("table", tbl.name).Int64("rows", existing).Msg("Demo table already populated, skipping")
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logging.Warn().Err(rbErr).Str("table", tbl.name).Msg("Failed to roll back seed transaction")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, tbl.insert(d))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert into %s: %w", tbl.name, err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, tbl.args(r)...); err != nil {
			return 0, fmt.Errorf("failed to insert into %s: %w", tbl.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %s seed: %w", tbl.name, err)
	}
	committed = true
	return len(records), nil
}
