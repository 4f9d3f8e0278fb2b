// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package query

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/dataexplorer/internal/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg, err := registry.New(registry.DefaultDefinitions())
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}
	return reg
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func date(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func validRequest() Request {
	return Request{
		DatasetID: "orders",
		Dimension: "dt",
		Measure:   "revenue",
		DateFrom:  "2025-01-01",
		DateTo:    "2025-01-03",
		Limit:     intPtr(500),
		Order:     "asc",
	}
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	v := NewValidator(testRegistry(t), DefaultLimits())
	vq, err := v.Validate(validRequest())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if vq.DatasetID() != "orders" || vq.Dimension() != "dt" || vq.Measure() != "revenue" {
		t.Errorf("unexpected keys: %s/%s/%s", vq.DatasetID(), vq.Dimension(), vq.Measure())
	}
	if !vq.DateFrom().Equal(date("2025-01-01")) || !vq.DateTo().Equal(date("2025-01-03")) {
		t.Errorf("dates = %v..%v", vq.DateFrom(), vq.DateTo())
	}
	if vq.Limit() != 500 || vq.Order() != OrderAsc {
		t.Errorf("limit/order = %d/%s", vq.Limit(), vq.Order())
	}
	if _, ok := vq.Platform(); ok {
		t.Error("no platform filter expected")
	}
}

func TestValidate_Defaults(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.Limit = nil
	req.Order = ""

	vq, err := NewValidator(testRegistry(t), DefaultLimits()).Validate(req)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if vq.Limit() != 500 {
		t.Errorf("Limit() = %d, want default 500", vq.Limit())
	}
	if vq.Order() != OrderAsc {
		t.Errorf("Order() = %q, want asc", vq.Order())
	}
}

func TestValidate_Platform(t *testing.T) {
	t.Parallel()

	v := NewValidator(testRegistry(t), DefaultLimits())

	req := validRequest()
	req.Platform = strPtr("tiktok")
	vq, err := v.Validate(req)
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := vq.Platform(); !ok || p != "tiktok" {
		t.Errorf("Platform() = %q, %v", p, ok)
	}

	req.Platform = strPtr("")
	vq, err = v.Validate(req)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := vq.Platform(); ok {
		t.Error("empty platform should mean no filter")
	}
}

func TestValidate_Failures(t *testing.T) {
	t.Parallel()

	v := NewValidator(testRegistry(t), DefaultLimits())

	tests := []struct {
		name     string
		mutate   func(*Request)
		sentinel error
		options  []string
	}{
		{
			name:     "unknown dataset",
			mutate:   func(r *Request) { r.DatasetID = "customers" },
			sentinel: ErrDatasetNotFound,
		},
		{
			name:     "unknown dimension lists exactly the dataset dimensions",
			mutate:   func(r *Request) { r.Dimension = "country" },
			sentinel: ErrInvalidDimension,
			options:  []string{"dt", "platform", "product_name"},
		},
		{
			name:     "measure used as dimension",
			mutate:   func(r *Request) { r.Dimension = "revenue" },
			sentinel: ErrInvalidDimension,
			options:  []string{"dt", "platform", "product_name"},
		},
		{
			name:     "sql in dimension",
			mutate:   func(r *Request) { r.Dimension = "dt; DROP TABLE analytics.fact_orders" },
			sentinel: ErrInvalidDimension,
			options:  []string{"dt", "platform", "product_name"},
		},
		{
			name:     "measure from another dataset",
			mutate:   func(r *Request) { r.Measure = "sessions" },
			sentinel: ErrInvalidMeasure,
			options:  []string{"revenue", "orders"},
		},
		{
			name:     "equal dates",
			mutate:   func(r *Request) { r.DateTo = r.DateFrom },
			sentinel: ErrInvalidDateRange,
		},
		{
			name:     "reversed dates",
			mutate:   func(r *Request) { r.DateFrom, r.DateTo = "2025-02-01", "2025-01-01" },
			sentinel: ErrInvalidDateRange,
		},
		{
			name:     "unparseable date",
			mutate:   func(r *Request) { r.DateFrom = "01/01/2025" },
			sentinel: ErrInvalidDateRange,
		},
		{
			name:     "range too long",
			mutate:   func(r *Request) { r.DateFrom, r.DateTo = "2023-01-01", "2025-01-01" },
			sentinel: ErrInvalidDateRange,
		},
		{
			name:     "explicit zero limit",
			mutate:   func(r *Request) { r.Limit = intPtr(0) },
			sentinel: ErrInvalidLimit,
		},
		{
			name:     "limit above maximum",
			mutate:   func(r *Request) { r.Limit = intPtr(5001) },
			sentinel: ErrInvalidLimit,
		},
		{
			name:     "negative limit",
			mutate:   func(r *Request) { r.Limit = intPtr(-1) },
			sentinel: ErrInvalidLimit,
		},
		{
			name:     "bad order",
			mutate:   func(r *Request) { r.Order = "ascending" },
			sentinel: ErrInvalidOrder,
		},
		{
			name:     "upper-case order",
			mutate:   func(r *Request) { r.Order = "DESC" },
			sentinel: ErrInvalidOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := validRequest()
			tt.mutate(&req)
			vq, err := v.Validate(req)
			if vq != nil {
				t.Errorf("Validate() returned a query alongside error %v", err)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.sentinel.(*Error).Kind)
			}

			var qe *Error
			if !errors.As(err, &qe) {
				t.Fatalf("error is not *Error: %T", err)
			}
			if qe.Message == "" {
				t.Error("error message is empty")
			}
			if !reflect.DeepEqual(qe.ValidOptions, tt.options) {
				t.Errorf("ValidOptions = %v, want %v", qe.ValidOptions, tt.options)
			}
		})
	}
}

// TestValidate_FirstFailureWins checks the fixed check order when several
// fields are wrong at once.
func TestValidate_FirstFailureWins(t *testing.T) {
	t.Parallel()

	v := NewValidator(testRegistry(t), DefaultLimits())

	tests := []struct {
		name string
		req  Request
		want Kind
	}{
		{"everything wrong", Request{DatasetID: "nope", Dimension: "x", Measure: "y", DateFrom: "b", DateTo: "a", Limit: intPtr(0), Order: "z"}, KindDatasetNotFound},
		{"dimension before measure", Request{DatasetID: "orders", Dimension: "x", Measure: "y", DateFrom: "b", DateTo: "a", Limit: intPtr(0), Order: "z"}, KindInvalidDimension},
		{"measure before dates", Request{DatasetID: "orders", Dimension: "dt", Measure: "y", DateFrom: "b", DateTo: "a", Limit: intPtr(0), Order: "z"}, KindInvalidMeasure},
		{"dates before limit", Request{DatasetID: "orders", Dimension: "dt", Measure: "orders", DateFrom: "2025-01-02", DateTo: "2025-01-01", Limit: intPtr(0), Order: "z"}, KindInvalidDateRange},
		{"limit before order", Request{DatasetID: "orders", Dimension: "dt", Measure: "orders", DateFrom: "2025-01-01", DateTo: "2025-01-02", Limit: intPtr(0), Order: "z"}, KindInvalidLimit},
		{"order last", Request{DatasetID: "orders", Dimension: "dt", Measure: "orders", DateFrom: "2025-01-01", DateTo: "2025-01-02", Limit: intPtr(1), Order: "z"}, KindInvalidOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := v.Validate(tt.req)
			if got := KindOf(err); got != tt.want {
				t.Errorf("KindOf(err) = %v, want %v (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestValidate_DatasetNotFoundWrapsRegistryError(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.DatasetID = "missing"
	_, err := NewValidator(testRegistry(t), DefaultLimits()).Validate(req)

	if !errors.Is(err, registry.ErrDatasetNotFound) {
		t.Errorf("error should wrap registry.ErrDatasetNotFound: %v", err)
	}
	if err.Error() != "Dataset 'missing' not found" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestNewValidator_LimitsFallback(t *testing.T) {
	t.Parallel()

	v := NewValidator(testRegistry(t), Limits{MaxLimit: 100})
	if got := v.Limits(); got.DefaultLimit != 100 || got.MaxLimit != 100 {
		t.Errorf("Limits() = %+v, want default clamped to max 100", got)
	}

	req := validRequest()
	req.Limit = intPtr(101)
	if _, err := v.Validate(req); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("Validate() error = %v, want ErrInvalidLimit", err)
	}

	req.DateFrom, req.DateTo = "2020-01-01", "2025-01-01"
	req.Limit = intPtr(1)
	if _, err := v.Validate(req); err != nil {
		t.Errorf("MaxRangeDays=0 should disable the range check, got %v", err)
	}
}

func TestKind_Strings(t *testing.T) {
	t.Parallel()

	if KindInvalidDimension.String() != "invalid_dimension" || KindInvalidDimension.Code() != "INVALID_DIMENSION" {
		t.Errorf("unexpected names for KindInvalidDimension: %s/%s", KindInvalidDimension, KindInvalidDimension.Code())
	}
	if Kind(0).String() != "unknown" || Kind(0).Code() != "VALIDATION_ERROR" {
		t.Error("zero Kind should map to unknown/VALIDATION_ERROR")
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Error("KindOf(plain error) should be 0")
	}
}
