// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestQueryRequest_OptionalFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		body         string
		wantPlatform *string
		wantLimit    *int
	}{
		{
			name: "omitted",
			body: `{"dataset_id":"orders","dimension":"dt","measure":"revenue","date_from":"2025-01-01","date_to":"2025-01-03"}`,
		},
		{
			name: "explicit null",
			body: `{"dataset_id":"orders","platform":null,"limit":null}`,
		},
		{
			name:         "present",
			body:         `{"dataset_id":"orders","platform":"tiktok","limit":0}`,
			wantPlatform: ptr("tiktok"),
			wantLimit:    ptr(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var req QueryRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !equalPtr(req.Platform, tt.wantPlatform) {
				t.Errorf("Platform = %v, want %v", req.Platform, tt.wantPlatform)
			}
			// limit 0 must stay distinguishable from an absent limit.
			if !equalPtr(req.Limit, tt.wantLimit) {
				t.Errorf("Limit = %v, want %v", req.Limit, tt.wantLimit)
			}
		})
	}
}

func TestAPIResponse_Envelope(t *testing.T) {
	t.Parallel()

	ok := APIResponse{
		Status:   StatusSuccess,
		Data:     QueryResult{Rows: []map[string]interface{}{}},
		Metadata: Metadata{Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	data, err := json.Marshal(ok)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, `"rows":[]`) {
		t.Errorf("empty rows must encode as [], got %s", s)
	}
	if strings.Contains(s, `"error"`) || strings.Contains(s, `"engine"`) {
		t.Errorf("unset optional fields leaked: %s", s)
	}

	failed := APIResponse{
		Status: StatusError,
		Error: &APIError{
			Code:    "INVALID_MEASURE",
			Message: "Invalid measure 'x'",
			Details: map[string]interface{}{"valid_options": []string{"revenue", "orders"}},
		},
	}
	data, err = json.Marshal(failed)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"valid_options":["revenue","orders"]`) {
		t.Errorf("details not encoded: %s", data)
	}
}

func ptr[T any](v T) *T { return &v }

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
