// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package explore

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tomtom215/dataexplorer/internal/engine"
)

// Response is the execute_query payload.
type Response struct {
	Rows []map[string]any `json:"rows"`
}

// Shape normalizes engine rows into the response payload. Keys are
// lower-cased and every value becomes one of nil, string, bool, int64 or
// float64. Row order is preserved and Rows is never nil.
func Shape(rows []engine.Row) Response {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		shaped := make(map[string]any, len(row))
		for k, v := range row {
			shaped[strings.ToLower(k)] = shapeValue(v)
		}
		out = append(out, shaped)
	}
	return Response{Rows: out}
}

func shapeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string, bool, int64:
		return x
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return unsigned(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return unsigned(x)
	case []byte:
		return string(x)
	case decimal.Decimal:
		return x.InexactFloat64()
	case *decimal.Decimal:
		if x == nil {
			return nil
		}
		return x.InexactFloat64()
	case time.Time:
		return formatTime(x)
	case *time.Time:
		if x == nil {
			return nil
		}
		return formatTime(*x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// finite maps NaN and infinities to nil; JSON has no encoding for them.
func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func unsigned(u uint64) any {
	if u > math.MaxInt64 {
		return float64(u)
	}
	return int64(u)
}

// formatTime renders calendar dates as YYYY-MM-DD and anything with a clock
// component as RFC 3339.
func formatTime(t time.Time) string {
	t = t.UTC()
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}
