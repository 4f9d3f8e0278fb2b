// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/dataexplorer/internal/registry"
	"github.com/tomtom215/dataexplorer/internal/validation"
)

// PlatformColumn is the fixed column the optional platform filter applies to.
const PlatformColumn = "platform"

// Dialect captures the few places where warehouses disagree.
type Dialect struct {
	Name string
	// DateParam wraps the "?" placeholder of a date bound. Dates are always
	// bound as YYYY-MM-DD strings.
	DateParam string
}

var (
	// DialectStandard works for DuckDB and MySQL.
	DialectStandard = Dialect{Name: "standard", DateParam: "CAST(? AS DATE)"}
	// DialectSQLite uses SQLite's date() function, which yields ISO text.
	DialectSQLite = Dialect{Name: "sqlite", DateParam: "date(?)"}
)

// DialectFor returns the dialect for a database/sql driver name.
func DialectFor(driver string) Dialect {
	if driver == "sqlite3" {
		return DialectSQLite
	}
	return DialectStandard
}

// CompiledQuery is the executable form of one request. Besides the SQL text
// and its arguments it carries the resolved plan, which engines that do not
// speak SQL execute directly.
type CompiledQuery struct {
	SQL  string
	Args []any

	DatasetID     string
	Table         string
	DimensionKey  string
	DimensionExpr string
	MeasureKey    string
	MeasureExpr   string
	DateExpr      string
	DateFrom      time.Time // inclusive
	DateTo        time.Time // exclusive
	Platform      string
	HasPlatform   bool
	Limit         int
	Order         Order
}

// Compiler renders validated queries for one dialect.
type Compiler struct {
	dialect Dialect
}

// NewCompiler creates a Compiler for dialect.
func NewCompiler(dialect Dialect) *Compiler {
	return &Compiler{dialect: dialect}
}

var standardCompiler = NewCompiler(DialectStandard)

// Compile renders vq with the standard dialect.
func Compile(vq *ValidatedQuery, def *registry.Definition) (*CompiledQuery, error) {
	return standardCompiler.Compile(vq, def)
}

// Compile renders:
//
//	SELECT <dim_expr> AS <dim>, <measure_expr> AS <measure>
//	FROM <table>
//	WHERE <date_expr> >= ? AND <date_expr> < ? [AND platform = ?]
//	GROUP BY <dim>
//	ORDER BY <dim> ASC|DESC
//	LIMIT <n>
//
// Every expression comes from def. Membership is re-checked here so that a
// query which bypassed the Validator still cannot render; such a failure
// wraps ErrInvariantViolation.
func (c *Compiler) Compile(vq *ValidatedQuery, def *registry.Definition) (*CompiledQuery, error) {
	if vq == nil || def == nil {
		return nil, fmt.Errorf("%w: nil query or definition", ErrInvariantViolation)
	}
	if vq.datasetID != def.ID {
		return nil, fmt.Errorf("%w: query for dataset %q compiled against %q", ErrInvariantViolation, vq.datasetID, def.ID)
	}

	dimExpr, ok := def.Dimension(vq.dimension)
	if !ok {
		return nil, fmt.Errorf("%w: dimension %q not in dataset %q", ErrInvariantViolation, vq.dimension, def.ID)
	}
	measExpr, ok := def.Measure(vq.measure)
	if !ok {
		return nil, fmt.Errorf("%w: measure %q not in dataset %q", ErrInvariantViolation, vq.measure, def.ID)
	}
	if !validation.IsFieldKey(vq.dimension) || !validation.IsFieldKey(vq.measure) {
		return nil, fmt.Errorf("%w: unsafe alias", ErrInvariantViolation)
	}
	if !validation.IsTableRef(def.Table) {
		return nil, fmt.Errorf("%w: unsafe table reference %q", ErrInvariantViolation, def.Table)
	}
	if def.DateColumn == "" {
		return nil, fmt.Errorf("%w: dataset %q has no date column", ErrInvariantViolation, def.ID)
	}
	if vq.limit < 1 {
		return nil, fmt.Errorf("%w: limit %d", ErrInvariantViolation, vq.limit)
	}

	var direction string
	switch vq.order {
	case OrderAsc:
		direction = "ASC"
	case OrderDesc:
		direction = "DESC"
	default:
		return nil, fmt.Errorf("%w: order %q", ErrInvariantViolation, vq.order)
	}

	args := []any{vq.dateFrom.Format(DateLayout), vq.dateTo.Format(DateLayout)}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(dimExpr)
	b.WriteString(" AS ")
	b.WriteString(vq.dimension)
	b.WriteString(", ")
	b.WriteString(measExpr)
	b.WriteString(" AS ")
	b.WriteString(vq.measure)
	b.WriteString(" FROM ")
	b.WriteString(def.Table)
	b.WriteString(" WHERE ")
	b.WriteString(def.DateColumn)
	b.WriteString(" >= ")
	b.WriteString(c.dialect.DateParam)
	b.WriteString(" AND ")
	b.WriteString(def.DateColumn)
	b.WriteString(" < ")
	b.WriteString(c.dialect.DateParam)
	if vq.hasFilter {
		b.WriteString(" AND ")
		b.WriteString(PlatformColumn)
		b.WriteString(" = ?")
		args = append(args, vq.platform)
	}
	b.WriteString(" GROUP BY ")
	b.WriteString(vq.dimension)
	b.WriteString(" ORDER BY ")
	b.WriteString(vq.dimension)
	b.WriteString(" ")
	b.WriteString(direction)
	b.WriteString(" LIMIT ")
	b.WriteString(strconv.Itoa(vq.limit))

	return &CompiledQuery{
		SQL:           b.String(),
		Args:          args,
		DatasetID:     def.ID,
		Table:         def.Table,
		DimensionKey:  vq.dimension,
		DimensionExpr: dimExpr,
		MeasureKey:    vq.measure,
		MeasureExpr:   measExpr,
		DateExpr:      def.DateColumn,
		DateFrom:      vq.dateFrom,
		DateTo:        vq.dateTo,
		Platform:      vq.platform,
		HasPlatform:   vq.hasFilter,
		Limit:         vq.limit,
		Order:         vq.order,
	}, nil
}
