// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestAdminAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword: %v", err)
	}

	tests := []struct {
		name     string
		auth     *AdminAuth
		provided string
		want     bool
	}{
		{"plain match", NewAdminAuth("s3cret", ""), "s3cret", true},
		{"plain mismatch", NewAdminAuth("s3cret", ""), "s3cre", false},
		{"plain empty header", NewAdminAuth("s3cret", ""), "", false},
		{"not configured", NewAdminAuth("", ""), "anything", false},
		{"not configured empty header", NewAdminAuth("", ""), "", false},
		{"hash match", NewAdminAuth("", string(hash)), "hashed-secret", true},
		{"hash mismatch", NewAdminAuth("", string(hash)), "s3cret", false},
		{"hash wins over plain", NewAdminAuth("s3cret", string(hash)), "s3cret", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.auth.Authorized(tt.provided); got != tt.want {
				t.Errorf("Authorized(%q) = %v, want %v", tt.provided, got, tt.want)
			}
		})
	}
}

func TestAdminRoutesRequireSecret(t *testing.T) {
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/admin/metrics"},
		{http.MethodPost, "/api/v1/admin/metrics/reset"},
		{http.MethodPost, "/api/v1/admin/cache/clear"},
	}

	for _, rt := range routes {
		for _, secret := range []string{"", "wrong"} {
			t.Run(rt.path+"/"+secret, func(t *testing.T) {
				env := newTestEnv(t)

				w := env.do(rt.method, rt.path, map[string]string{AdminSecretHeader: secret})
				if w.Code != http.StatusUnauthorized {
					t.Fatalf("status = %d, want 401", w.Code)
				}
				body := decode[AdminResponse](t, w)
				if body.OK {
					t.Error("ok = true, want false")
				}
			})
		}
	}
}

func TestAdminDisabledRejectsEverything(t *testing.T) {
	env := newTestEnv(t)
	env.handler.admin = NewAdminAuth("", "")

	w := env.do(http.MethodPost, "/api/v1/admin/metrics/reset", map[string]string{AdminSecretHeader: ""})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestResetMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.recorder.RecordFetchMetric("nasa.apod", 10*time.Millisecond, true, false)

	w := env.do(http.MethodPost, "/api/v1/admin/metrics/reset", map[string]string{AdminSecretHeader: testAdminSecret})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := decode[AdminResponse](t, w); !body.OK {
		t.Error("ok = false, want true")
	}
	if n := len(env.recorder.GetMetrics()); n != 0 {
		t.Errorf("metrics after reset = %d, want 0", n)
	}
}

func TestResetMetricsWrongMethod(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/admin/metrics/reset", map[string]string{AdminSecretHeader: testAdminSecret})
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestAdminMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.recorder.RecordFetchMetric("nasa.apod", 10*time.Millisecond, true, false)

	w := env.do(http.MethodGet, "/api/v1/admin/metrics", map[string]string{AdminSecretHeader: testAdminSecret})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decode[AdminResponse](t, w)
	if !body.OK {
		t.Error("ok = false, want true")
	}
	if snap, ok := body.Metrics["nasa.apod"]; !ok || snap.Count != 1 {
		t.Errorf("metrics[nasa.apod] = %+v, want count 1", snap)
	}
	if body.Cache == nil {
		t.Error("expected cache stats")
	}
}

func TestClearCache(t *testing.T) {
	env := newTestEnv(t)
	env.cache.Set("a", 1)
	env.cache.Set("b", 2)
	env.cache.Set("c", 3)
	header := map[string]string{AdminSecretHeader: testAdminSecret}

	w := env.do(http.MethodPost, "/api/v1/admin/cache/clear?key=a", header)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decode[AdminResponse](t, w)
	if !body.OK || body.Cleared == nil || *body.Cleared != 1 {
		t.Errorf("body = %+v, want ok with 1 cleared", body)
	}
	if env.cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", env.cache.Len())
	}

	w = env.do(http.MethodPost, "/api/v1/admin/cache/clear", header)
	body = decode[AdminResponse](t, w)
	if !body.OK || body.Cleared == nil || *body.Cleared != 2 {
		t.Errorf("body = %+v, want ok with 2 cleared", body)
	}
	if env.cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0", env.cache.Len())
	}
}

func TestClearCacheInvalidKey(t *testing.T) {
	env := newTestEnv(t)
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'k'
	}

	w := env.do(http.MethodPost, "/api/v1/admin/cache/clear?key="+string(long), map[string]string{AdminSecretHeader: testAdminSecret})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body := decode[AdminResponse](t, w); body.OK {
		t.Error("ok = true, want false")
	}
}

func TestAdminActionPanicReportsNotOK(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/metrics/reset", nil)
	w := httptest.NewRecorder()

	adminAction(w, req, "explode", func() AdminResponse {
		panic("boom")
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if body := decode[AdminResponse](t, w); body.OK {
		t.Error("ok = true, want false")
	}
}
