// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package query

import (
	"errors"
	"fmt"
)

// Kind classifies a caller-attributable query failure.
type Kind int

const (
	KindDatasetNotFound Kind = iota + 1
	KindInvalidDimension
	KindInvalidMeasure
	KindInvalidDateRange
	KindInvalidLimit
	KindInvalidOrder
)

var kindNames = map[Kind]string{
	KindDatasetNotFound:  "dataset_not_found",
	KindInvalidDimension: "invalid_dimension",
	KindInvalidMeasure:   "invalid_measure",
	KindInvalidDateRange: "invalid_date_range",
	KindInvalidLimit:     "invalid_limit",
	KindInvalidOrder:     "invalid_order",
}

// String returns the snake_case name used in metrics labels.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Code returns the API error code, e.g. INVALID_DIMENSION.
func (k Kind) Code() string {
	switch k {
	case KindDatasetNotFound:
		return "DATASET_NOT_FOUND"
	case KindInvalidDimension:
		return "INVALID_DIMENSION"
	case KindInvalidMeasure:
		return "INVALID_MEASURE"
	case KindInvalidDateRange:
		return "INVALID_DATE_RANGE"
	case KindInvalidLimit:
		return "INVALID_LIMIT"
	case KindInvalidOrder:
		return "INVALID_ORDER"
	default:
		return "VALIDATION_ERROR"
	}
}

// Error is a validation failure. Every Error is terminal for the request and
// carries enough detail for the caller to correct it.
type Error struct {
	Kind         Kind
	Message      string
	ValidOptions []string // set for InvalidDimension and InvalidMeasure
	Err          error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels below, so callers can write
// errors.Is(err, query.ErrInvalidDimension).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Kind == e.Kind
}

// DatasetNotFound builds the error for an unknown dataset id.
func DatasetNotFound(id string, cause error) *Error {
	return &Error{
		Kind:    KindDatasetNotFound,
		Message: fmt.Sprintf("Dataset '%s' not found", id),
		Err:     cause,
	}
}

// Kind sentinels for errors.Is.
var (
	ErrDatasetNotFound  = &Error{Kind: KindDatasetNotFound}
	ErrInvalidDimension = &Error{Kind: KindInvalidDimension}
	ErrInvalidMeasure   = &Error{Kind: KindInvalidMeasure}
	ErrInvalidDateRange = &Error{Kind: KindInvalidDateRange}
	ErrInvalidLimit     = &Error{Kind: KindInvalidLimit}
	ErrInvalidOrder     = &Error{Kind: KindInvalidOrder}
)

// ErrInvariantViolation reports that the compiler was handed a query the
// validator should have rejected. It is an internal error, never a caller one.
var ErrInvariantViolation = errors.New("query invariant violation")

// KindOf returns the Kind of err, or 0 if err is not a validation error.
func KindOf(err error) Kind {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return 0
}
