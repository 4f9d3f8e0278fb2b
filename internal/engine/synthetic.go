// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package engine

import (
	"cmp"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/dataexplorer/internal/metrics"
	"github.com/tomtom215/dataexplorer/internal/query"
)

var (
	identPattern     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	castPattern      = regexp.MustCompile(`(?i)^CAST\(\s*([A-Za-z_][A-Za-z0-9_]*)\s+AS\s+DATE\s*\)$`)
	aggregatePattern = regexp.MustCompile(`(?i)^(SUM|COUNT|MIN|MAX|AVG)\(\s*(\*|[A-Za-z_][A-Za-z0-9_]*|[0-9]+)\s*\)$`)
)

// Synthetic executes queries against generated data without a database. It
// interprets the plan carried by the compiled query rather than its SQL.
type Synthetic struct {
	gen *Generator
}

// NewSynthetic creates a Synthetic engine seeded with seed.
func NewSynthetic(seed int64) *Synthetic {
	return &Synthetic{gen: NewGenerator(seed)}
}

// Name implements Engine.
func (s *Synthetic) Name() string { return "synthetic" }

// Execute generates the records for cq's date range, applies the platform
// filter, groups by the dimension column and reduces the measure.
func (s *Synthetic) Execute(ctx context.Context, cq *query.CompiledQuery) (rows []Row, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordExecution(s.Name(), cq.DatasetID, time.Since(start), err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, NewExecutionError(s.Name(), err)
	}

	rows, err = s.aggregate(cq)
	if err != nil {
		return nil, NewExecutionError(s.Name(), err)
	}

	if err := ctx.Err(); err != nil {
		return nil, NewExecutionError(s.Name(), err)
	}
	return rows, nil
}

func (s *Synthetic) aggregate(cq *query.CompiledQuery) ([]Row, error) {
	dimColumn, err := columnOf(cq.DimensionExpr)
	if err != nil {
		return nil, err
	}
	red, err := parseReducer(cq.MeasureExpr)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*group)
	var order []*group

	for _, rec := range s.gen.Records(cq.Table, cq.DateFrom, cq.DateTo) {
		if cq.HasPlatform && rec.Platform != cq.Platform {
			continue
		}
		cols := rec.Columns()

		key, ok := cols[dimColumn]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", dimColumn)
		}
		gk := groupKey(key)
		g, ok := groups[gk]
		if !ok {
			g = &group{key: key}
			groups[gk] = g
			order = append(order, g)
		}
		if err := g.add(red, cols); err != nil {
			return nil, err
		}
	}

	slices.SortFunc(order, func(a, b *group) int {
		c := compareValues(a.key, b.key)
		if cq.Order == query.OrderDesc {
			return -c
		}
		return c
	})
	if len(order) > cq.Limit {
		order = order[:cq.Limit]
	}

	rows := make([]Row, len(order))
	for i, g := range order {
		rows[i] = Row{
			cq.DimensionKey: g.key,
			cq.MeasureKey:   g.result(red),
		}
	}
	return rows, nil
}

// reducer is a parsed measure expression.
type reducer struct {
	fn     string // SUM, COUNT, MIN, MAX, AVG, or "" for a bare column
	column string
}

func parseReducer(expr string) (reducer, error) {
	expr = strings.TrimSpace(expr)
	if m := aggregatePattern.FindStringSubmatch(expr); m != nil {
		fn := strings.ToUpper(m[1])
		if fn != "COUNT" && !identPattern.MatchString(m[2]) {
			return reducer{}, fmt.Errorf("unsupported measure expression %q", expr)
		}
		return reducer{fn: fn, column: m[2]}, nil
	}
	if identPattern.MatchString(expr) {
		return reducer{column: expr}, nil
	}
	return reducer{}, fmt.Errorf("unsupported measure expression %q", expr)
}

// columnOf resolves a dimension expression to the record column it reads.
func columnOf(expr string) (string, error) {
	expr = strings.TrimSpace(expr)
	if m := castPattern.FindStringSubmatch(expr); m != nil {
		return m[1], nil
	}
	if identPattern.MatchString(expr) {
		return expr, nil
	}
	return "", fmt.Errorf("unsupported dimension expression %q", expr)
}

type group struct {
	key   any
	count int64
	sum   decimal.Decimal
	min   decimal.Decimal
	max   decimal.Decimal
	first any
}

func (g *group) add(red reducer, cols map[string]any) error {
	g.count++

	switch red.fn {
	case "COUNT":
		return nil
	case "":
		if g.count == 1 {
			v, ok := cols[red.column]
			if !ok {
				return fmt.Errorf("unknown column %q", red.column)
			}
			g.first = v
		}
		return nil
	}

	raw, ok := cols[red.column]
	if !ok {
		return fmt.Errorf("unknown column %q", red.column)
	}
	v, ok := raw.(decimal.Decimal)
	if !ok {
		return fmt.Errorf("%s(%s): column is not numeric", red.fn, red.column)
	}

	g.sum = g.sum.Add(v)
	if g.count == 1 || v.LessThan(g.min) {
		g.min = v
	}
	if g.count == 1 || v.GreaterThan(g.max) {
		g.max = v
	}
	return nil
}

// result returns the reduced measure. Counts are int64; every other numeric
// aggregate is rounded to two decimals.
func (g *group) result(red reducer) any {
	switch red.fn {
	case "COUNT":
		return g.count
	case "SUM":
		return money(g.sum)
	case "MIN":
		return money(g.min)
	case "MAX":
		return money(g.max)
	case "AVG":
		return money(g.sum.Div(decimal.NewFromInt(g.count)))
	default:
		if d, ok := g.first.(decimal.Decimal); ok {
			return money(d)
		}
		return g.first
	}
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func groupKey(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.DateOnly)
	}
	return fmt.Sprint(v)
}

// compareValues orders dimension values of the same type.
func compareValues(a, b any) int {
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case decimal.Decimal:
		if y, ok := b.(decimal.Decimal); ok {
			return x.Cmp(y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
	}
	return strings.Compare(groupKey(a), groupKey(b))
}
