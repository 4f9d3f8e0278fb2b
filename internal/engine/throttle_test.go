// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/dataexplorer/internal/query"
)

func TestThrottled_BurstPassesImmediately(t *testing.T) {
	t.Parallel()

	stub := &stubEngine{name: "fast"}
	th := NewThrottled(stub, 1, 3)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := th.Execute(context.Background(), &query.CompiledQuery{}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("burst of 3 took %v", elapsed)
	}
	if stub.calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", stub.calls.Load())
	}
}

func TestThrottled_DeadlineBeforeSlot(t *testing.T) {
	t.Parallel()

	stub := &stubEngine{name: "slow"}
	th := NewThrottled(stub, 0.01, 1) // one slot per 100s

	if _, err := th.Execute(context.Background(), &query.CompiledQuery{}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	rows, err := th.Execute(ctx, &query.CompiledQuery{})
	if rows != nil {
		t.Errorf("rows = %v, want none", rows)
	}
	var ee *ExecutionError
	if !errors.As(err, &ee) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want ExecutionError wrapping DeadlineExceeded", err)
	}
	if stub.calls.Load() != 1 {
		t.Errorf("backend calls = %d, throttled call must not reach it", stub.calls.Load())
	}
}

func TestNewThrottled_MinimumBurst(t *testing.T) {
	t.Parallel()

	th := NewThrottled(&stubEngine{name: "x"}, 5, 0)
	if th.limiter.Burst() != 1 {
		t.Errorf("Burst() = %d, want 1", th.limiter.Burst())
	}
}
