// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

// Package engine executes compiled explore queries.
//
// Two backends implement Engine. Synthetic generates deterministic demo
// records and aggregates them in process; Warehouse runs the compiled SQL on
// a database/sql handle. Breaker and Throttled wrap either backend and are
// applied by Wrap according to configuration.
//
// Execution is all-or-nothing: an Engine returns either every row of the
// result or an *ExecutionError, never both.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/dataexplorer/internal/config"
	"github.com/tomtom215/dataexplorer/internal/query"
)

// Row maps a result column (dimension or measure key) to a scalar value.
type Row map[string]any

// Engine executes compiled queries. Implementations must be safe for
// concurrent use.
type Engine interface {
	Name() string
	Execute(ctx context.Context, cq *query.CompiledQuery) ([]Row, error)
}

// ErrUnavailable is wrapped by execution errors raised before the backend was
// reached, such as an open circuit.
var ErrUnavailable = errors.New("execution engine unavailable")

// ExecutionError reports a backend failure. Hint is safe to show to callers;
// Err is for logs.
type ExecutionError struct {
	Engine string
	Hint   string
	Err    error
}

func (e *ExecutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s engine: %s", e.Engine, e.Hint)
	}
	return fmt.Sprintf("%s engine: %s: %v", e.Engine, e.Hint, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// NewExecutionError wraps err, choosing a hint from its cause. An err that is
// already an *ExecutionError is returned unchanged.
func NewExecutionError(engine string, err error) error {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return err
	}
	return &ExecutionError{Engine: engine, Hint: hintFor(err), Err: err}
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "query timed out, try a shorter date range"
	case errors.Is(err, context.Canceled):
		return "query was canceled"
	case errors.Is(err, ErrUnavailable):
		return "data source is temporarily unavailable, retry later"
	default:
		return "query execution failed"
	}
}

// Wrap applies the configured throttle and circuit breaker to base. The
// throttle sits outside the breaker so that waiting callers do not count as
// breaker requests.
func Wrap(base Engine, cfg config.EngineConfig) Engine {
	e := base
	if cfg.Breaker.Enabled {
		e = NewBreaker(e, cfg.Breaker)
	}
	if cfg.MaxQPS > 0 {
		e = NewThrottled(e, cfg.MaxQPS, cfg.MaxBurst)
	}
	return e
}
