// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/duckdb/duckdb-go/v2"
	"github.com/shopspring/decimal"

	"github.com/tomtom215/dataexplorer/internal/logging"
	"github.com/tomtom215/dataexplorer/internal/metrics"
	"github.com/tomtom215/dataexplorer/internal/query"
)

// Querier is the part of *sql.DB the warehouse engine needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Warehouse runs compiled SQL against a real database.
type Warehouse struct {
	db     Querier
	driver string
}

// NewWarehouse creates a Warehouse engine. driver is the database/sql driver
// name and is used for metrics labels and value normalization.
func NewWarehouse(db Querier, driver string) *Warehouse {
	return &Warehouse{db: db, driver: driver}
}

// Name implements Engine.
func (w *Warehouse) Name() string { return "warehouse" }

// Execute runs cq.SQL with cq.Args and reads the full result before
// returning. A failure at any point discards the rows read so far.
func (w *Warehouse) Execute(ctx context.Context, cq *query.CompiledQuery) (out []Row, err error) {
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		metrics.RecordDBQuery(w.driver, "explore", elapsed, err)
		metrics.RecordExecution(w.Name(), cq.DatasetID, elapsed, err)
	}()

	rows, err := w.db.QueryContext(ctx, cq.SQL, cq.Args...)
	if err != nil {
		return nil, NewExecutionError(w.Name(), err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			logging.Ctx(ctx).Warn().Err(cerr).Msg("Failed to close warehouse rows")
		}
	}()

	out, err = w.scan(rows)
	if err != nil {
		return nil, NewExecutionError(w.Name(), err)
	}
	return out, nil
}

func (w *Warehouse) scan(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("read column types: %w", err)
	}

	out := make([]Row, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(out)+1, err)
		}

		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = normalizeValue(vals[i], types[i].DatabaseTypeName())
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// normalizeValue converts driver-specific representations into the scalar
// types the result shaper understands.
func normalizeValue(v any, dbType string) any {
	switch x := v.(type) {
	case duckdb.Decimal:
		if x.Value == nil {
			return nil
		}
		return decimal.NewFromBigInt(x.Value, -int32(x.Scale))
	case []byte:
		switch strings.ToUpper(dbType) {
		case "DECIMAL", "NEWDECIMAL", "NUMERIC":
			if d, err := decimal.NewFromString(string(x)); err == nil {
				return d
			}
		}
		return string(x)
	default:
		return v
	}
}
