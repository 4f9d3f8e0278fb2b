// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package query

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/dataexplorer/internal/registry"
	"github.com/tomtom215/dataexplorer/internal/validation"
)

// Catalog is the read side of the dataset registry.
type Catalog interface {
	Get(id string) (*registry.Definition, error)
}

// Limits bounds what a request may ask for.
type Limits struct {
	DefaultLimit int // applied when the request has no limit
	MaxLimit     int
	MaxRangeDays int // 0 disables the range-length check
}

// DefaultLimits returns the stock bounds: default 500, maximum 5000, one year.
func DefaultLimits() Limits {
	return Limits{
		DefaultLimit: 500,
		MaxLimit:     5000,
		MaxRangeDays: 366,
	}
}

// Validator checks requests against the catalog. It holds no mutable state
// and is safe for concurrent use.
type Validator struct {
	catalog  Catalog
	limits   Limits
	limitTag string
}

// NewValidator creates a Validator. Zero DefaultLimit or MaxLimit fall back
// to DefaultLimits.
func NewValidator(catalog Catalog, limits Limits) *Validator {
	defaults := DefaultLimits()
	if limits.MaxLimit <= 0 {
		limits.MaxLimit = defaults.MaxLimit
	}
	if limits.DefaultLimit <= 0 || limits.DefaultLimit > limits.MaxLimit {
		limits.DefaultLimit = min(defaults.DefaultLimit, limits.MaxLimit)
	}
	return &Validator{
		catalog:  catalog,
		limits:   limits,
		limitTag: fmt.Sprintf("min=1,max=%d", limits.MaxLimit),
	}
}

// Limits returns the effective bounds.
func (v *Validator) Limits() Limits {
	return v.limits
}

// Validate runs the checks in a fixed order and returns the first failure:
// dataset, dimension, measure, date range, limit, order.
func (v *Validator) Validate(req Request) (*ValidatedQuery, error) {
	def, err := v.catalog.Get(req.DatasetID)
	if err != nil {
		if errors.Is(err, registry.ErrDatasetNotFound) {
			return nil, DatasetNotFound(req.DatasetID, err)
		}
		return nil, fmt.Errorf("look up dataset: %w", err)
	}

	if _, ok := def.Dimension(req.Dimension); !ok {
		valid := def.DimensionNames()
		return nil, &Error{
			Kind:         KindInvalidDimension,
			Message:      fmt.Sprintf("Invalid dimension '%s'. Valid options: %s", req.Dimension, strings.Join(valid, ", ")),
			ValidOptions: valid,
		}
	}

	if _, ok := def.Measure(req.Measure); !ok {
		valid := def.MeasureNames()
		return nil, &Error{
			Kind:         KindInvalidMeasure,
			Message:      fmt.Sprintf("Invalid measure '%s'. Valid options: %s", req.Measure, strings.Join(valid, ", ")),
			ValidOptions: valid,
		}
	}

	from, to, err := v.dateRange(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}

	limit := v.limits.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	if verr := validation.ValidateVar(limit, "limit", v.limitTag); verr != nil {
		return nil, &Error{
			Kind:    KindInvalidLimit,
			Message: fmt.Sprintf("limit must be between 1 and %d", v.limits.MaxLimit),
			Err:     verr,
		}
	}

	order := req.Order
	if order == "" {
		order = string(OrderAsc)
	}
	if verr := validation.ValidateVar(order, "order", "oneof=asc desc"); verr != nil {
		return nil, &Error{
			Kind:    KindInvalidOrder,
			Message: fmt.Sprintf("order must be one of: asc, desc (got '%s')", req.Order),
			Err:     verr,
		}
	}

	vq := &ValidatedQuery{
		datasetID: def.ID,
		dimension: req.Dimension,
		measure:   req.Measure,
		dateFrom:  from,
		dateTo:    to,
		limit:     limit,
		order:     Order(order),
	}
	if req.Platform != nil && *req.Platform != "" {
		vq.platform = *req.Platform
		vq.hasFilter = true
	}
	return vq, nil
}

// dateRange parses both bounds and checks from < to and the range length.
// The range is half-open: [from, to).
func (v *Validator) dateRange(rawFrom, rawTo string) (time.Time, time.Time, error) {
	from, err := time.Parse(DateLayout, rawFrom)
	if err != nil {
		return time.Time{}, time.Time{}, &Error{
			Kind:    KindInvalidDateRange,
			Message: fmt.Sprintf("date_from must be a date in YYYY-MM-DD format (got '%s')", rawFrom),
			Err:     err,
		}
	}
	to, err := time.Parse(DateLayout, rawTo)
	if err != nil {
		return time.Time{}, time.Time{}, &Error{
			Kind:    KindInvalidDateRange,
			Message: fmt.Sprintf("date_to must be a date in YYYY-MM-DD format (got '%s')", rawTo),
			Err:     err,
		}
	}

	if !from.Before(to) {
		return time.Time{}, time.Time{}, &Error{
			Kind:    KindInvalidDateRange,
			Message: "date_from must be before date_to",
		}
	}

	if v.limits.MaxRangeDays > 0 {
		if days := int(to.Sub(from).Hours() / 24); days > v.limits.MaxRangeDays {
			return time.Time{}, time.Time{}, &Error{
				Kind:    KindInvalidDateRange,
				Message: fmt.Sprintf("date range must not exceed %d days (got %d)", v.limits.MaxRangeDays, days),
			}
		}
	}

	return from, to, nil
}
