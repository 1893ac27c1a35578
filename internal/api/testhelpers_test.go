// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/spacedeck/internal/cache"
	"github.com/tomtom215/spacedeck/internal/config"
	"github.com/tomtom215/spacedeck/internal/controllers"
	"github.com/tomtom215/spacedeck/internal/metrics"
	"github.com/tomtom215/spacedeck/internal/summary"
	"github.com/tomtom215/spacedeck/internal/upstream"
)

const testAdminSecret = "correct-horse-battery-staple"

var errDown = errors.New("upstream down")

// stubUpstream answers every source from fixed data unless down is set.
type stubUpstream struct {
	mu    sync.Mutex
	down  bool
	calls int
}

func (s *stubUpstream) fail() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.down {
		return errDown
	}
	return nil
}

func (s *stubUpstream) setDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

func (s *stubUpstream) APOD(_ context.Context, date string) (upstream.APOD, error) {
	if err := s.fail(); err != nil {
		return upstream.APOD{}, err
	}
	if date == "" {
		date = "2026-10-19"
	}
	return upstream.APOD{Date: date, Title: "Pillars of Creation", MediaType: "image"}, nil
}

func (s *stubUpstream) NEOFeed(_ context.Context, start time.Time, days int) ([]upstream.NearEarthObject, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	out := make([]upstream.NearEarthObject, days)
	for i := range out {
		out[i] = upstream.NearEarthObject{ID: string(rune('a' + i)), Name: "neo", CloseApproach: start.AddDate(0, 0, i)}
	}
	return out, nil
}

func (s *stubUpstream) LatestRoverPhotos(_ context.Context, rover string) ([]upstream.RoverPhoto, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	return []upstream.RoverPhoto{{ID: 1, Sol: 4000, EarthDate: "2026-10-18", Camera: "NAVCAM", Rover: rover}}, nil
}

func (s *stubUpstream) Events(_ context.Context, _ string, _ int) ([]upstream.Event, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	return []upstream.Event{
		{ID: "e1", Title: "Fire A", CategoryID: "wildfires", Category: "Wildfires"},
		{ID: "e2", Title: "Etna", CategoryID: "volcanoes", Category: "Volcanoes"},
	}, nil
}

func (s *stubUpstream) DailyPoint(_ context.Context, _, _ float64, start, _ time.Time) (upstream.PowerSeries, error) {
	if err := s.fail(); err != nil {
		return upstream.PowerSeries{}, err
	}
	t, p, sol := 21.0, 3.0, 5.5
	return upstream.PowerSeries{Days: []upstream.PowerDay{{Date: start.Format("20060102"), TempC: &t, PrecipMm: &p, SolarKWhM2: &sol}}}, nil
}

func (s *stubUpstream) UpcomingLaunches(_ context.Context, _ int) ([]upstream.Launch, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	return []upstream.Launch{{ID: "l1", Name: "Falcon 9 | Starlink", NET: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)}}, nil
}

func (s *stubUpstream) PlanetaryKIndex(_ context.Context) ([]upstream.KpSample, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	return []upstream.KpSample{{Time: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), Kp: 3}}, nil
}

type pingStub struct{ err error }

func (p pingStub) Ping(context.Context) error { return p.err }

type testEnv struct {
	up       *stubUpstream
	cache    *cache.Service
	recorder *metrics.Recorder
	set      *controllers.Set
	handler  *Handler
	server   http.Handler
}

func testControllersConfig() config.ControllersConfig {
	return config.ControllersConfig{
		Fanout:       2,
		Rovers:       []string{"curiosity"},
		Regions:      []config.RegionConfig{{Name: "Punjab", Lat: 30.9, Lon: 75.8}},
		ClimateZones: []config.RegionConfig{{Name: "Sahara", Lat: 23.4, Lon: 25.6}},
		LaunchLimit:  5,
		EventLimit:   10,
		PowerDays:    7,
	}
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		APODTTL:         time.Hour,
		NEOTTL:          time.Hour,
		LaunchesTTL:     time.Hour,
		RoverTTL:        time.Hour,
		EventsTTL:       time.Hour,
		PowerTTL:        time.Hour,
		SpaceWeatherTTL: time.Hour,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	up := &stubUpstream{}
	rec := metrics.NewRecorder()
	c := cache.NewService(rec)
	set := controllers.New(controllers.Deps{
		Upstream:    up,
		Cache:       c,
		Store:       summary.NewMemoryStore(),
		CacheTTLs:   testCacheConfig(),
		Controllers: testControllersConfig(),
		SummaryTTL:  summary.DefaultTTL,
	})
	t.Cleanup(func() {
		c.Wait()
		set.Wait()
	})

	h := NewHandler(HandlerDeps{
		Controllers: set,
		Cache:       c,
		Recorder:    rec,
		Store:       pingStub{},
		Admin:       NewAdminAuth(testAdminSecret, ""),
	})
	mw := NewChiMiddlewareFromSecurity([]string{"*"}, 100, time.Minute, true)
	return &testEnv{
		up:       up,
		cache:    c,
		recorder: rec,
		set:      set,
		handler:  h,
		server:   NewRouter(h, mw).SetupChi(),
	}
}

func (e *testEnv) do(method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(""))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}
