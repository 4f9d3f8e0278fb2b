// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/dataexplorer/internal/logging"
	"github.com/tomtom215/dataexplorer/internal/metrics"
)

// flakyPinger fails while down is set.
type flakyPinger struct {
	calls atomic.Int32
	down  atomic.Bool
}

func (p *flakyPinger) Ping(context.Context) error {
	p.calls.Add(1)
	if p.down.Load() {
		return errors.New("dial tcp: connection refused")
	}
	return nil
}

// lockedBuffer is written by the monitor goroutine and read by the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitCalls(t *testing.T, p *flakyPinger, n int32) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for p.calls.Load() < n {
		if time.Now().After(deadline) {
			t.Fatalf("only %d pings, want %d", p.calls.Load(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWarehouseMonitorService_Interface(t *testing.T) {
	var _ suture.Service = (*WarehouseMonitorService)(nil)
}

func TestNewWarehouseMonitorService_Defaults(t *testing.T) {
	svc := NewWarehouseMonitorService(&flakyPinger{}, "duckdb", 0)
	if svc.interval != 30*time.Second {
		t.Errorf("interval = %v, want 30s", svc.interval)
	}
	if svc.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", svc.timeout)
	}
	if svc.String() != "warehouse-monitor" {
		t.Errorf("String() = %q", svc.String())
	}

	if svc := NewWarehouseMonitorService(&flakyPinger{}, "duckdb", time.Second); svc.timeout != time.Second {
		t.Errorf("timeout = %v, want the interval when shorter than 5s", svc.timeout)
	}
}

func TestWarehouseMonitorService_TracksState(t *testing.T) {
	const driver = "monitor-test"
	logs := &lockedBuffer{}
	prev := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(logs))
	t.Cleanup(func() { logging.SetLogger(prev) })

	pinger := &flakyPinger{}
	svc := NewWarehouseMonitorService(pinger, driver, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	waitCalls(t, pinger, 1)
	waitCalls(t, pinger, 2)
	if got := testutil.ToFloat64(metrics.WarehouseUp.WithLabelValues(driver)); got != 1 {
		t.Errorf("warehouse_up = %v, want 1", got)
	}

	pinger.down.Store(true)
	n := pinger.calls.Load()
	waitCalls(t, pinger, n+2)
	if got := testutil.ToFloat64(metrics.WarehouseUp.WithLabelValues(driver)); got != 0 {
		t.Errorf("warehouse_up = %v, want 0", got)
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	// One line per state change, however many pings ran.
	out := logs.String()
	if n := strings.Count(out, "Warehouse reachable"); n != 1 {
		t.Errorf("reachable logged %d times, want 1:\n%s", n, out)
	}
	if n := strings.Count(out, "Warehouse unreachable"); n != 1 {
		t.Errorf("unreachable logged %d times, want 1:\n%s", n, out)
	}
	if !strings.Contains(out, `"component":"warehouse-monitor"`) {
		t.Errorf("component field missing:\n%s", out)
	}
}
