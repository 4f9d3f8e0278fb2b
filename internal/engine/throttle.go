// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/dataexplorer/internal/metrics"
	"github.com/tomtom215/dataexplorer/internal/query"
)

// Throttled caps the rate of executions reaching the wrapped engine. Callers
// wait for a slot; a caller whose context ends first gets an ExecutionError
// and never reaches the backend.
type Throttled struct {
	next    Engine
	limiter *rate.Limiter
}

// NewThrottled allows qps executions per second with bursts of up to burst.
func NewThrottled(next Engine, qps float64, burst int) *Throttled {
	if burst < 1 {
		burst = 1
	}
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(qps), burst),
	}
}

// Name implements Engine and reports the wrapped engine's name.
func (t *Throttled) Name() string { return t.next.Name() }

// Execute implements Engine.
func (t *Throttled) Execute(ctx context.Context, cq *query.CompiledQuery) ([]Row, error) {
	start := time.Now()
	err := t.limiter.Wait(ctx)
	metrics.RecordThrottleWait(time.Since(start))
	if err != nil {
		// Wait fails early when the deadline cannot be met; report that as
		// a timeout rather than the limiter's own message.
		if ctx.Err() == nil {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return nil, NewExecutionError(t.Name(), err)
	}
	return t.next.Execute(ctx, cq)
}
