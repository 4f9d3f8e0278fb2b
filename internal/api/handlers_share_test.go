// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dataexplorer/internal/access"
	"github.com/tomtom215/dataexplorer/internal/engine"
	"github.com/tomtom215/dataexplorer/internal/explore"
	"github.com/tomtom215/dataexplorer/internal/models"
	"github.com/tomtom215/dataexplorer/internal/query"
	"github.com/tomtom215/dataexplorer/internal/registry"
)

const testToken = "share-abc123"

// newTestServer serves the real pipeline over the synthetic engine.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	guard, err := access.New([]access.Token{
		{Token: testToken, Label: "partner", Active: true},
		{Token: "share-revoked", Label: "old", Active: false},
	})
	if err != nil {
		t.Fatal(err)
	}
	reg, err := registry.New(registry.DefaultDefinitions())
	if err != nil {
		t.Fatal(err)
	}
	svc := explore.NewService(guard, reg, engine.NewSynthetic(42), explore.Options{Limits: query.DefaultLimits()})
	return serve(t, NewHandler(svc, nil, "test"))
}

func serve(t *testing.T, h *Handler) *httptest.Server {
	t.Helper()

	mw := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})
	srv := httptest.NewServer(NewRouter(h, mw).SetupChi())
	t.Cleanup(srv.Close)
	return srv
}

// decodeEnvelope reads an APIResponse and decodes its data into target.
func decodeEnvelope(t *testing.T, resp *http.Response, target interface{}) models.APIResponse {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	var raw struct {
		Status   string           `json:"status"`
		Data     json.RawMessage  `json:"data"`
		Metadata models.Metadata  `json:"metadata"`
		Error    *models.APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	if target != nil {
		if err := json.Unmarshal(raw.Data, target); err != nil {
			t.Fatalf("decode data %s: %v", raw.Data, err)
		}
	}
	return models.APIResponse{
		Status:   raw.Status,
		Metadata: raw.Metadata,
		Error:    raw.Error,
	}
}

func do(t *testing.T, method, url, body string, header http.Header) *http.Response {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, rdr)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

const revenueByDayBody = `{"dataset_id":"orders","dimension":"dt","measure":"revenue","date_from":"2025-01-01","date_to":"2025-01-03","limit":500,"order":"asc"}`

func TestListDatasets(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	for name, tc := range map[string]struct {
		url    string
		header http.Header
	}{
		"path token":   {url: srv.URL + "/share/" + testToken + "/datasets"},
		"bearer token": {url: srv.URL + "/api/v1/share/datasets", header: bearer(testToken)},
		"bearer lower": {url: srv.URL + "/api/v1/share/datasets", header: http.Header{"Authorization": {"bearer " + testToken}}},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			resp := do(t, http.MethodGet, tc.url, "", tc.header)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			var got []models.DatasetSummary
			env := decodeEnvelope(t, resp, &got)
			if env.Status != models.StatusSuccess {
				t.Errorf("status = %q", env.Status)
			}
			if len(got) != 2 || got[0].ID != "orders" || got[1].ID != "livestream" {
				t.Errorf("datasets = %+v", got)
			}
			if resp.Header.Get("Cache-Control") != "no-store" {
				t.Errorf("Cache-Control = %q", resp.Header.Get("Cache-Control"))
			}
		})
	}
}

func TestUnauthorized(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		url    string
		body   string
		header http.Header
	}{
		{"unknown path token", http.MethodGet, "/share/nope/datasets", "", nil},
		{"inactive token", http.MethodGet, "/share/share-revoked/dataset/orders/fields", "", nil},
		{"unknown dataset still 401", http.MethodGet, "/share/nope/dataset/missing/fields", "", nil},
		{"query with bad token", http.MethodPost, "/share/nope/query", revenueByDayBody, nil},
		{"malformed body with bad token", http.MethodPost, "/share/nope/query", "{not json", nil},
		{"missing bearer", http.MethodGet, "/api/v1/share/datasets", "", nil},
		{"wrong scheme", http.MethodGet, "/api/v1/share/datasets", "", http.Header{"Authorization": {"Basic " + testToken}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := do(t, tt.method, srv.URL+tt.url, tt.body, tt.header)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", resp.StatusCode)
			}
			if resp.Header.Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
			env := decodeEnvelope(t, resp, nil)
			if env.Error == nil || env.Error.Code != ErrCodeUnauthorized {
				t.Errorf("error = %+v", env.Error)
			}
		})
	}
}

func TestGetFields(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/share/"+testToken+"/dataset/livestream/fields", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var fields models.DatasetFields
	decodeEnvelope(t, resp, &fields)
	if strings.Join(fields.Dimensions, ",") != "dt,host,platform" || strings.Join(fields.Measures, ",") != "revenue,sessions" {
		t.Errorf("fields = %+v", fields)
	}

	resp = do(t, http.MethodGet, srv.URL+"/share/"+testToken+"/dataset/missing/fields", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown dataset status = %d, want 404", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp, nil)
	if env.Error == nil || env.Error.Code != "DATASET_NOT_FOUND" {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestExecuteQuery(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/share/"+testToken+"/query", revenueByDayBody, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var result models.QueryResult
	env := decodeEnvelope(t, resp, &result)
	if len(result.Rows) != 2 {
		t.Fatalf("rows = %v, want 2", result.Rows)
	}
	if result.Rows[0]["dt"] != "2025-01-01" || result.Rows[1]["dt"] != "2025-01-02" {
		t.Errorf("dates = %v, %v", result.Rows[0]["dt"], result.Rows[1]["dt"])
	}
	if _, ok := result.Rows[0]["revenue"].(float64); !ok {
		t.Errorf("revenue = %T, want number", result.Rows[0]["revenue"])
	}
	if env.Metadata.Engine != "synthetic" {
		t.Errorf("metadata.engine = %q", env.Metadata.Engine)
	}
	if env.Metadata.RequestID == "" || env.Metadata.RequestID != resp.Header.Get("X-Request-ID") {
		t.Errorf("metadata.request_id = %q, header = %q", env.Metadata.RequestID, resp.Header.Get("X-Request-ID"))
	}

	// Bearer mirror returns the same rows.
	resp = do(t, http.MethodPost, srv.URL+"/api/v1/share/query", revenueByDayBody, bearer(testToken))
	var mirrored models.QueryResult
	decodeEnvelope(t, resp, &mirrored)
	if fmt.Sprint(mirrored.Rows) != fmt.Sprint(result.Rows) {
		t.Errorf("bearer rows = %v, want %v", mirrored.Rows, result.Rows)
	}
}

func TestExecuteQuery_EmptyResultIsArray(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	body := `{"dataset_id":"orders","dimension":"dt","measure":"revenue","date_from":"2025-01-01","date_to":"2025-01-03","platform":"myspace"}`

	resp := do(t, http.MethodPost, srv.URL+"/share/"+testToken+"/query", body, nil)
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(raw), `"rows":[]`) {
		t.Errorf("status = %d, body = %s", resp.StatusCode, raw)
	}
}

func TestExecuteQuery_ValidationErrors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantCode    string
		wantOptions []interface{}
	}{
		{
			name:       "unknown dataset",
			body:       `{"dataset_id":"missing","dimension":"dt","measure":"revenue","date_from":"2025-01-01","date_to":"2025-01-03"}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "DATASET_NOT_FOUND",
		},
		{
			name:        "invalid dimension",
			body:        `{"dataset_id":"orders","dimension":"host","measure":"revenue","date_from":"2025-01-01","date_to":"2025-01-03"}`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    "INVALID_DIMENSION",
			wantOptions: []interface{}{"dt", "platform", "product_name"},
		},
		{
			name:        "invalid measure",
			body:        `{"dataset_id":"livestream","dimension":"host","measure":"orders","date_from":"2025-01-01","date_to":"2025-01-03"}`,
			wantStatus:  http.StatusBadRequest,
			wantCode:    "INVALID_MEASURE",
			wantOptions: []interface{}{"revenue", "sessions"},
		},
		{
			name:       "bad date",
			body:       `{"dataset_id":"orders","dimension":"dt","measure":"revenue","date_from":"01/01/2025","date_to":"2025-01-03"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_DATE_RANGE",
		},
		{
			name:       "limit zero",
			body:       `{"dataset_id":"orders","dimension":"dt","measure":"revenue","date_from":"2025-01-01","date_to":"2025-01-03","limit":0}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_LIMIT",
		},
		{
			name:       "limit over max",
			body:       `{"dataset_id":"orders","dimension":"dt","measure":"revenue","date_from":"2025-01-01","date_to":"2025-01-03","limit":5001}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_LIMIT",
		},
		{
			name:       "bad order",
			body:       `{"dataset_id":"orders","dimension":"dt","measure":"revenue","date_from":"2025-01-01","date_to":"2025-01-03","order":"random"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_ORDER",
		},
		{
			name:       "malformed json",
			body:       `{"dataset_id":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeInvalidJSON,
		},
		{
			name:       "wrong json type",
			body:       `{"dataset_id":"orders","limit":"ten"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := do(t, http.MethodPost, srv.URL+"/share/"+testToken+"/query", tt.body, nil)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			env := decodeEnvelope(t, resp, nil)
			if env.Status != models.StatusError || env.Error == nil {
				t.Fatalf("envelope = %+v", env)
			}
			if env.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", env.Error.Code, tt.wantCode)
			}
			if tt.wantOptions != nil && fmt.Sprint(env.Error.Details["valid_options"]) != fmt.Sprint(tt.wantOptions) {
				t.Errorf("valid_options = %v, want %v", env.Error.Details["valid_options"], tt.wantOptions)
			}
		})
	}
}

func TestExecuteQuery_BodyTooLarge(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	body := `{"dataset_id":"` + strings.Repeat("x", maxQueryBodyBytes) + `"}`

	resp := do(t, http.MethodPost, srv.URL+"/share/"+testToken+"/query", body, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp, nil)
	if env.Error == nil || env.Error.Message != "Request body too large" {
		t.Errorf("error = %+v", env.Error)
	}
}

// stubExplorer returns a fixed error from ExecuteQuery.
type stubExplorer struct {
	err error
}

func (s stubExplorer) Authorize(string) error { return nil }

func (s stubExplorer) ListDatasets(context.Context, string) ([]registry.Summary, error) {
	return nil, s.err
}

func (s stubExplorer) GetFields(context.Context, string, string) (registry.Fields, error) {
	return registry.Fields{}, s.err
}

func (s stubExplorer) ExecuteQuery(context.Context, string, query.Request) (*explore.Response, error) {
	return nil, s.err
}

func (s stubExplorer) EngineName() string { return "stub" }
func (s stubExplorer) DatasetCount() int  { return 0 }
func (s stubExplorer) ActiveTokens() int  { return 0 }

func TestExecuteQuery_BackendErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantHint   string
	}{
		{
			name:       "execution failure",
			err:        &engine.ExecutionError{Engine: "warehouse", Hint: "query execution failed", Err: errors.New("dial tcp: refused")},
			wantStatus: http.StatusBadGateway,
			wantCode:   ErrCodeExecution,
			wantHint:   "query execution failed",
		},
		{
			name:       "timeout",
			err:        engine.NewExecutionError("warehouse", context.DeadlineExceeded),
			wantStatus: http.StatusBadGateway,
			wantCode:   ErrCodeExecution,
			wantHint:   "query timed out, try a shorter date range",
		},
		{
			name:       "invariant violation",
			err:        fmt.Errorf("%w: measure missing", query.ErrInvariantViolation),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := serve(t, NewHandler(stubExplorer{err: tt.err}, nil, "test"))
			resp := do(t, http.MethodPost, srv.URL+"/share/any/query", revenueByDayBody, nil)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			env := decodeEnvelope(t, resp, nil)
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Fatalf("error = %+v", env.Error)
			}
			if tt.wantHint != "" && env.Error.Details["hint"] != tt.wantHint {
				t.Errorf("hint = %v, want %q", env.Error.Details["hint"], tt.wantHint)
			}
			// Internal detail stays in logs.
			if strings.Contains(env.Error.Message, "refused") || strings.Contains(env.Error.Message, "measure missing") {
				t.Errorf("message leaks internals: %q", env.Error.Message)
			}
		})
	}
}
