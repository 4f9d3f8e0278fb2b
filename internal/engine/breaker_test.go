// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/dataexplorer/internal/config"
	"github.com/tomtom215/dataexplorer/internal/metrics"
	"github.com/tomtom215/dataexplorer/internal/query"
)

// stubEngine returns a fixed result and counts calls.
type stubEngine struct {
	name  string
	rows  []Row
	err   error
	calls atomic.Int32
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Execute(ctx context.Context, _ *query.CompiledQuery) ([]Row, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, NewExecutionError(s.name, err)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func testBreakerConfig() config.BreakerConfig {
	return config.BreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		MinRequests:  3,
		FailureRatio: 0.5,
	}
}

func TestBreaker_PassesThrough(t *testing.T) {
	t.Parallel()

	stub := &stubEngine{name: "pass", rows: []Row{{"dt": "2025-01-01", "revenue": 1.0}}}
	b := NewBreaker(stub, testBreakerConfig())

	rows, err := b.Execute(context.Background(), &query.CompiledQuery{DatasetID: "orders"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || b.Name() != "pass" {
		t.Errorf("rows = %v, name = %q", rows, b.Name())
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("pass-engine", "success")); got != 1 {
		t.Errorf("success count = %v, want 1", got)
	}
}

func TestBreaker_OpensAndFailsFast(t *testing.T) {
	t.Parallel()

	backendErr := &ExecutionError{Engine: "flaky", Hint: "query execution failed", Err: errors.New("connection refused")}
	stub := &stubEngine{name: "flaky", err: backendErr}
	b := NewBreaker(stub, testBreakerConfig())
	cq := &query.CompiledQuery{DatasetID: "orders"}

	for i := 0; i < 3; i++ {
		_, err := b.Execute(context.Background(), cq)
		if !errors.Is(err, backendErr) {
			t.Fatalf("call %d error = %v, want backend error", i, err)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", b.State())
	}

	rows, err := b.Execute(context.Background(), cq)
	if rows != nil {
		t.Errorf("rows = %v, want none", rows)
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
	var ee *ExecutionError
	if !errors.As(err, &ee) || ee.Hint != hintFor(ErrUnavailable) {
		t.Errorf("error = %#v, want ExecutionError with unavailable hint", err)
	}
	if got := stub.calls.Load(); got != 3 {
		t.Errorf("backend calls = %d, want 3 (open circuit must not reach it)", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("flaky-engine")); got != 2 {
		t.Errorf("state gauge = %v, want 2 (open)", got)
	}
}

func TestBreaker_CanceledCallersDoNotTrip(t *testing.T) {
	t.Parallel()

	stub := &stubEngine{name: "canceled"}
	b := NewBreaker(stub, testBreakerConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 5; i++ {
		if _, err := b.Execute(ctx, &query.CompiledQuery{}); !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", b.State())
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	base := &stubEngine{name: "base"}

	if got := Wrap(base, config.EngineConfig{}); got != Engine(base) {
		t.Errorf("Wrap with nothing enabled = %T, want base engine", got)
	}

	cfg := config.EngineConfig{MaxQPS: 10, MaxBurst: 2, Breaker: testBreakerConfig()}
	wrapped := Wrap(base, cfg)
	th, ok := wrapped.(*Throttled)
	if !ok {
		t.Fatalf("outer = %T, want *Throttled", wrapped)
	}
	if _, ok := th.next.(*Breaker); !ok {
		t.Errorf("inner = %T, want *Breaker", th.next)
	}
	if wrapped.Name() != "base" {
		t.Errorf("Name() = %q, want base", wrapped.Name())
	}
}
