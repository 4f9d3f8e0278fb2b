// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/dataexplorer/internal/config"
	"github.com/tomtom215/dataexplorer/internal/metrics"
)

// =====================================================
// ChiMiddleware Configuration Tests
// =====================================================

func TestNewChiMiddleware_DefaultConfig(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(nil)
	if m.config == nil {
		t.Fatal("config is nil")
	}
	// Empty by default; origins require explicit configuration
	if len(m.config.CORSAllowedOrigins) != 0 {
		t.Errorf("CORSAllowedOrigins = %v, want []", m.config.CORSAllowedOrigins)
	}
	if m.config.RateLimitRequests != 100 || m.config.RateLimitWindow != time.Minute {
		t.Errorf("rate limit = %d per %v", m.config.RateLimitRequests, m.config.RateLimitWindow)
	}
}

func TestNewChiMiddlewareFromConfig(t *testing.T) {
	t.Parallel()

	m := NewChiMiddlewareFromConfig(&config.SecurityConfig{
		CORSOrigins:       []string{"https://dash.example.com"},
		RateLimitReqs:     7,
		RateLimitWindow:   2 * time.Minute,
		RateLimitDisabled: true,
	})
	if len(m.config.CORSAllowedOrigins) != 1 || m.config.CORSAllowedOrigins[0] != "https://dash.example.com" {
		t.Errorf("CORSAllowedOrigins = %v", m.config.CORSAllowedOrigins)
	}
	if m.config.RateLimitRequests != 7 || m.config.RateLimitWindow != 2*time.Minute || !m.config.RateLimitDisabled {
		t.Errorf("config = %+v", m.config)
	}
}

// =====================================================
// Rate Limiting Tests
// =====================================================

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRateLimit_RejectsWithEnvelope(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(&ChiMiddlewareConfig{
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
	})
	r := chi.NewRouter()
	r.With(m.RateLimit()).Get("/limited-test", okHandler)

	before := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("/limited-test"))

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/limited-test", nil)
		req.RemoteAddr = "10.1.2.3:5555"
		r.ServeHTTP(last, req)
		if i < 2 && last.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, last.Code)
		}
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last.Code)
	}
	body, _ := io.ReadAll(last.Body)
	if !strings.Contains(string(body), ErrCodeRateLimited) {
		t.Errorf("body = %s", body)
	}
	if got := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("/limited-test")) - before; got != 1 {
		t.Errorf("rate limit hits delta = %v, want 1", got)
	}

	// A different client has its own budget.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/limited-test", nil)
	req.RemoteAddr = "10.9.9.9:5555"
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client status = %d", rec.Code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(&ChiMiddlewareConfig{
		RateLimitRequests: 1,
		RateLimitWindow:   time.Minute,
		RateLimitDisabled: true,
	})
	h := m.RateLimit()(http.HandlerFunc(okHandler))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
}

// =====================================================
// Header Tests
// =====================================================

func TestAPISecurityHeaders(t *testing.T) {
	t.Parallel()

	h := APISecurityHeaders()(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS set on plain HTTP")
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("HSTS missing behind HTTPS proxy")
	}
}

func TestCORS_Preflight(t *testing.T) {
	t.Parallel()

	m := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"https://dash.example.com"},
		CORSAllowedMethods: []string{"GET", "POST"},
		CORSAllowedHeaders: []string{"Content-Type", "Authorization"},
		RateLimitDisabled:  true,
	})
	h := m.CORS()(http.HandlerFunc(okHandler))

	tests := []struct {
		origin    string
		wantAllow string
	}{
		{"https://dash.example.com", "https://dash.example.com"},
		{"https://evil.example.com", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodOptions, "/share/x/query", nil)
		req.Header.Set("Origin", tt.origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
			t.Errorf("origin %s: Allow-Origin = %q, want %q", tt.origin, got, tt.wantAllow)
		}
	}
}

func TestShareToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer", "Bearer abc", "abc"},
		{"case-insensitive scheme", "BEARER abc", "abc"},
		{"extra spaces", "Bearer   abc  ", "abc"},
		{"basic", "Basic abc", ""},
		{"no scheme", "abc", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/share/datasets", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := shareToken(req); got != tt.want {
			t.Errorf("%s: shareToken() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	if got := sanitizeLogValue("a\nb\tc"); got != `a\x0ab\x09c` {
		t.Errorf("sanitizeLogValue() = %q", got)
	}
}
