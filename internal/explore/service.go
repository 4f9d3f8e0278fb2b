// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

// Package explore runs the request pipeline behind the share endpoints.
//
// Every operation starts with the access guard. execute_query then passes
// through the validator, the compiler, the execution engine and the result
// shaper; each stage may stop the request with a typed error:
//
//   - access.ErrUnauthorized for a missing, unknown or inactive token
//   - *query.Error for a caller mistake (unknown dataset, invalid field,
//     date range, limit or order)
//   - query.ErrInvariantViolation when the compiler refuses a validated query
//   - *engine.ExecutionError when the backend fails
//
// The Service holds no per-request state and is safe for concurrent use.
package explore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/dataexplorer/internal/engine"
	"github.com/tomtom215/dataexplorer/internal/logging"
	"github.com/tomtom215/dataexplorer/internal/metrics"
	"github.com/tomtom215/dataexplorer/internal/query"
	"github.com/tomtom215/dataexplorer/internal/registry"
)

// DefaultTimeout bounds one engine execution when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// unknownDataset labels metrics for ids outside the catalog, keeping
// caller-supplied strings out of label values.
const unknownDataset = "unknown"

// TokenVerifier is the access guard as seen by the service.
type TokenVerifier interface {
	Verify(token string) error
	Label(token string) (string, bool)
	ActiveCount() int
}

// Options tunes a Service.
type Options struct {
	Limits  query.Limits
	Dialect query.Dialect // SQL dialect of the engine's backend
	Timeout time.Duration // per-execution deadline
}

// Service implements list_datasets, get_dataset_fields and execute_query.
type Service struct {
	guard     TokenVerifier
	registry  *registry.Registry
	validator *query.Validator
	compiler  *query.Compiler
	engine    engine.Engine
	timeout   time.Duration
}

// NewService wires the pipeline. A zero Dialect means the standard dialect.
func NewService(guard TokenVerifier, reg *registry.Registry, eng engine.Engine, opts Options) *Service {
	if opts.Dialect.DateParam == "" {
		opts.Dialect = query.DialectStandard
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Service{
		guard:     guard,
		registry:  reg,
		validator: query.NewValidator(reg, opts.Limits),
		compiler:  query.NewCompiler(opts.Dialect),
		engine:    eng,
		timeout:   opts.Timeout,
	}
}

// EngineName returns the name of the execution backend.
func (s *Service) EngineName() string {
	return s.engine.Name()
}

// Limits returns the effective request limits.
func (s *Service) Limits() query.Limits {
	return s.validator.Limits()
}

// DatasetCount returns the number of datasets in the catalog.
func (s *Service) DatasetCount() int {
	return len(s.registry.List())
}

// ActiveTokens returns the number of active share tokens.
func (s *Service) ActiveTokens() int {
	return s.guard.ActiveCount()
}

// Authorize checks token without running any operation.
func (s *Service) Authorize(token string) error {
	return s.guard.Verify(token)
}

// authorize verifies token and tags ctx with its label for logging.
func (s *Service) authorize(ctx context.Context, token string) (context.Context, error) {
	if err := s.guard.Verify(token); err != nil {
		logging.Ctx(ctx).Debug().Msg("Share token rejected")
		return ctx, err
	}
	if label, ok := s.guard.Label(token); ok {
		ctx = logging.ContextWithShareLabel(ctx, label)
	}
	return ctx, nil
}

// ListDatasets returns the catalog summaries in catalog order.
func (s *Service) ListDatasets(ctx context.Context, token string) ([]registry.Summary, error) {
	if _, err := s.authorize(ctx, token); err != nil {
		return nil, err
	}
	return s.registry.List(), nil
}

// GetFields returns the dimension and measure names of one dataset.
func (s *Service) GetFields(ctx context.Context, token, datasetID string) (registry.Fields, error) {
	ctx, err := s.authorize(ctx, token)
	if err != nil {
		return registry.Fields{}, err
	}
	fields, err := s.registry.Fields(datasetID)
	if err != nil {
		if errors.Is(err, registry.ErrDatasetNotFound) {
			logging.Ctx(ctx).Debug().Str("dataset", datasetID).Msg("Fields requested for unknown dataset")
			return registry.Fields{}, query.DatasetNotFound(datasetID, err)
		}
		return registry.Fields{}, fmt.Errorf("get fields: %w", err)
	}
	return fields, nil
}

// ExecuteQuery runs one aggregation request end to end. On failure no rows
// are returned.
func (s *Service) ExecuteQuery(ctx context.Context, token string, req query.Request) (*Response, error) {
	ctx, err := s.authorize(ctx, token)
	if err != nil {
		return nil, err
	}

	dataset := unknownDataset
	if s.registry.Has(req.DatasetID) {
		dataset = req.DatasetID
	}

	vq, err := s.validator.Validate(req)
	if err != nil {
		kind := query.KindOf(err)
		metrics.RecordQueryRejection(kind.String())
		metrics.RecordQuery(dataset, "rejected", 0)
		logging.Ctx(ctx).Debug().
			Str("dataset", dataset).
			Str("kind", kind.String()).
			Str("reason", err.Error()).
			Msg("Query rejected")
		return nil, err
	}

	def, err := s.registry.Get(vq.DatasetID())
	if err != nil {
		metrics.RecordQuery(dataset, "error", 0)
		return nil, fmt.Errorf("%w: validated dataset vanished: %w", query.ErrInvariantViolation, err)
	}
	cq, err := s.compiler.Compile(vq, def)
	if err != nil {
		metrics.RecordQuery(dataset, "error", 0)
		logging.Ctx(ctx).Error().Err(err).Str("dataset", dataset).Msg("Compiler refused a validated query")
		return nil, err
	}

	execCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	rows, err := s.engine.Execute(execCtx, cq)
	elapsed := time.Since(start)
	if err != nil {
		err = engine.NewExecutionError(s.engine.Name(), err)
		metrics.RecordQuery(dataset, "failed", 0)
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("dataset", dataset).
			Str("engine", s.engine.Name()).
			Dur("duration", elapsed).
			Msg("Query execution failed")
		return nil, err
	}

	resp := Shape(rows)
	metrics.RecordQuery(dataset, "ok", len(resp.Rows))
	logging.Ctx(ctx).Info().
		Str("dataset", dataset).
		Str("dimension", vq.Dimension()).
		Str("measure", vq.Measure()).
		Int("rows", len(resp.Rows)).
		Dur("duration", elapsed).
		Msg("Query executed")
	return &resp, nil
}
