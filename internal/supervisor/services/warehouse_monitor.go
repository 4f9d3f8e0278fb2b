// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package services

import (
	"context"
	"time"

	"github.com/tomtom215/dataexplorer/internal/logging"
	"github.com/tomtom215/dataexplorer/internal/metrics"
)

// Pinger is satisfied by *database.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WarehouseMonitorService pings the warehouse on a fixed interval and
// publishes the result as the warehouse_up gauge. State changes are logged
// once, not on every tick.
type WarehouseMonitorService struct {
	db       Pinger
	driver   string
	interval time.Duration
	timeout  time.Duration
	name     string

	// up is nil until the first ping completes.
	up *bool
}

// NewWarehouseMonitorService creates a monitor for db. A non-positive
// interval means 30s.
func NewWarehouseMonitorService(db Pinger, driver string, interval time.Duration) *WarehouseMonitorService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &WarehouseMonitorService{
		db:       db,
		driver:   driver,
		interval: interval,
		timeout:  min(interval, 5*time.Second),
		name:     "warehouse-monitor",
	}
}

// Serve implements suture.Service. It pings immediately, then on every tick
// until ctx is canceled.
func (m *WarehouseMonitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

func (m *WarehouseMonitorService) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	err := m.db.Ping(pingCtx)
	if ctx.Err() != nil {
		// Shutdown, not a warehouse failure.
		return
	}
	metrics.RecordWarehousePing(m.driver, time.Since(start), err)

	up := err == nil
	if m.up != nil && *m.up == up {
		return
	}
	m.up = &up

	log := logging.WithComponent(m.name)
	if up {
		log.Info().Str("driver", m.driver).Msg("Warehouse reachable")
	} else {
		log.Warn().Err(err).Str("driver", m.driver).Msg("Warehouse unreachable")
	}
}

// String implements fmt.Stringer.
func (m *WarehouseMonitorService) String() string {
	return m.name
}
