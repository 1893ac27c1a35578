// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package api

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/tomtom215/spacedeck/internal/controllers"
	"github.com/tomtom215/spacedeck/internal/upstream"
)

type envelope[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data"`
	Error   *APIError `json:"error"`
	Meta    *APIMeta  `json:"meta"`
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/health/live", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decode[envelope[HealthStatus]](t, w)
	if body.Data.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Data.Status)
	}
	if body.Meta == nil || body.Meta.RequestID == "" {
		t.Error("expected request id in meta")
	}
}

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		store      Pinger
		wantStatus int
	}{
		{"reachable", pingStub{}, http.StatusOK},
		{"unreachable", pingStub{err: errors.New("closed")}, http.StatusServiceUnavailable},
		{"no store", nil, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.handler.store = tt.store

			w := env.do(http.MethodGet, "/api/v1/health/ready", nil)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestAPOD(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/apod?date=2026-01-02", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	body := decode[envelope[upstream.APOD]](t, w)
	if body.Data.Date != "2026-01-02" {
		t.Errorf("date = %q, want 2026-01-02", body.Data.Date)
	}
}

func TestAPODInvalidDate(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/apod?date=yesterday", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	body := decode[envelope[any]](t, w)
	if body.Error == nil || body.Error.Code != ErrCodeValidationFailed {
		t.Errorf("error = %+v, want %s", body.Error, ErrCodeValidationFailed)
	}
	if env.up.calls != 0 {
		t.Errorf("upstream calls = %d, want 0", env.up.calls)
	}
}

func TestAPODDateOutsideArchive(t *testing.T) {
	tomorrow := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
	env := newTestEnv(t)

	for _, date := range []string{"0001-01-01", "1995-06-15", tomorrow, "9999-12-31"} {
		w := env.do(http.MethodGet, "/api/v1/apod?date="+date, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("date %s: status = %d, want 400", date, w.Code)
			continue
		}
		if body := decode[envelope[any]](t, w); body.Error == nil || body.Error.Code != ErrCodeBadRequest {
			t.Errorf("date %s: error = %+v, want %s", date, body.Error, ErrCodeBadRequest)
		}
	}

	if n := len(env.recorder.GetMetrics()); n != 0 {
		t.Errorf("recorder buckets = %d, want 0", n)
	}
	if n := env.cache.Len(); n != 0 {
		t.Errorf("cache entries = %d, want 0", n)
	}
	if env.up.calls != 0 {
		t.Errorf("upstream calls = %d, want 0", env.up.calls)
	}

	if w := env.do(http.MethodGet, "/api/v1/apod?date=1995-06-16", nil); w.Code != http.StatusOK {
		t.Errorf("first archive day: status = %d, want 200", w.Code)
	}
}

func TestNEODays(t *testing.T) {
	tests := []struct {
		query      string
		wantStatus int
		wantCount  int
	}{
		{"", http.StatusOK, defaultNEODays},
		{"?days=5", http.StatusOK, 5},
		{"?days=0", http.StatusBadRequest, 0},
		{"?days=8", http.StatusBadRequest, 0},
		{"?days=abc", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			env := newTestEnv(t)

			w := env.do(http.MethodGet, "/api/v1/neo"+tt.query, nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			body := decode[envelope[[]upstream.NearEarthObject]](t, w)
			if len(body.Data) != tt.wantCount {
				t.Errorf("len(data) = %d, want %d", len(body.Data), tt.wantCount)
			}
		})
	}
}

func TestSpaceWeatherColdFailure(t *testing.T) {
	env := newTestEnv(t)
	env.up.setDown(true)

	w := env.do(http.MethodGet, "/api/v1/space-weather", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	body := decode[envelope[any]](t, w)
	if body.Error == nil || body.Error.Code != ErrCodeExternalServiceFail {
		t.Errorf("error = %+v, want %s", body.Error, ErrCodeExternalServiceFail)
	}
}

func TestSpaceWeatherServedFromCacheWhenDown(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(http.MethodGet, "/api/v1/space-weather", nil); w.Code != http.StatusOK {
		t.Fatalf("warm status = %d, want 200", w.Code)
	}
	env.up.setDown(true)

	w := env.do(http.MethodGet, "/api/v1/space-weather", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decode[envelope[controllers.SpaceWeather]](t, w)
	if body.Data.LatestKp != 3 {
		t.Errorf("latest kp = %v, want 3", body.Data.LatestKp)
	}
}

func TestDomainSourceHeader(t *testing.T) {
	paths := []string{
		"/api/v1/agriculture",
		"/api/v1/climate",
		"/api/v1/disasters",
		"/api/v1/missions",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			env := newTestEnv(t)

			first := env.do(http.MethodGet, path, nil)
			if first.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", first.Code)
			}
			if got := first.Header().Get(DataSourceHeader); got != string(controllers.SourceLive) {
				t.Errorf("first %s = %q, want %q", DataSourceHeader, got, controllers.SourceLive)
			}

			second := env.do(http.MethodGet, path, nil)
			if got := second.Header().Get(DataSourceHeader); got != string(controllers.SourceCache) {
				t.Errorf("second %s = %q, want %q", DataSourceHeader, got, controllers.SourceCache)
			}
		})
	}
}

func TestDomainFallbackWhenEverythingFails(t *testing.T) {
	env := newTestEnv(t)
	env.up.setDown(true)

	w := env.do(http.MethodGet, "/api/v1/disasters", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get(DataSourceHeader); got != string(controllers.SourceFallback) {
		t.Errorf("%s = %q, want %q", DataSourceHeader, got, controllers.SourceFallback)
	}
	body := decode[envelope[controllers.Result[controllers.DisasterSummary]]](t, w)
	if body.Meta == nil || body.Meta.Source != string(controllers.SourceFallback) {
		t.Errorf("meta = %+v, want source %q", body.Meta, controllers.SourceFallback)
	}
	if body.Data.Notice != controllers.FallbackNotice {
		t.Errorf("notice = %q, want %q", body.Data.Notice, controllers.FallbackNotice)
	}
	if !body.Data.Stale {
		t.Error("fallback result should be stale")
	}
}

func TestDomainDurableAfterCacheCleared(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(http.MethodGet, "/api/v1/missions", nil); w.Code != http.StatusOK {
		t.Fatalf("warm status = %d, want 200", w.Code)
	}
	env.set.Wait()
	env.cache.Clear()
	env.up.setDown(true)

	w := env.do(http.MethodGet, "/api/v1/missions", nil)
	if got := w.Header().Get(DataSourceHeader); got != string(controllers.SourceDurable) {
		t.Fatalf("%s = %q, want %q", DataSourceHeader, got, controllers.SourceDurable)
	}
	body := decode[envelope[controllers.Result[controllers.MissionsSummary]]](t, w)
	if body.Data.LastUpdated == nil || body.Data.CacheAgeHours == nil {
		t.Error("durable result should carry last_updated and cache_age_hours")
	}
	if len(body.Data.Data.Launches) != 1 {
		t.Errorf("launches = %d, want 1", len(body.Data.Data.Launches))
	}
}
