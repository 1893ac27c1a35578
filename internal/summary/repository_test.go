// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package summary

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"
)

type cropSummary struct {
	Regions  []string `json:"regions"`
	AvgTempC float64  `json:"avgTempC"`
}

// brokenStore fails every call, as an unreachable backend would.
type brokenStore struct {
	puts atomic.Int32
}

var errUnavailable = errors.New("store unavailable")

func (b *brokenStore) Get(context.Context, string) (*Document, error) { return nil, errUnavailable }
func (b *brokenStore) Put(context.Context, string, Document) error {
	b.puts.Add(1)
	return errUnavailable
}
func (b *brokenStore) Ping(context.Context) error { return errUnavailable }
func (b *brokenStore) Close() error               { return nil }

func TestRepository_SaveThenGet(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	repo := NewRepository[cropSummary](NewMemoryStore(), "agriculture", DefaultTTL, WithClock(clock))
	ctx := context.Background()

	if rec := repo.GetCached(ctx); rec != nil {
		t.Fatalf("GetCached() on empty store = %+v, want nil", rec)
	}

	repo.Save(ctx, cropSummary{Regions: []string{"Corn Belt"}, AvgTempC: 14.5})

	now = now.Add(90 * time.Minute)
	rec := repo.GetCached(ctx)
	if rec == nil {
		t.Fatal("GetCached() = nil after Save")
	}
	if rec.Summary.AvgTempC != 14.5 || len(rec.Summary.Regions) != 1 {
		t.Errorf("Summary = %+v", rec.Summary)
	}
	if math.Abs(rec.CacheAgeHours-1.5) > 1e-9 {
		t.Errorf("CacheAgeHours = %v, want 1.5", rec.CacheAgeHours)
	}
}

func TestRepository_ExpiresAfterTTL(t *testing.T) {
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	repo := NewRepository[cropSummary](NewMemoryStore(), "climate", 6*time.Hour, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	repo.Save(ctx, cropSummary{AvgTempC: 1})

	now = now.Add(6 * time.Hour)
	if repo.GetCached(ctx) == nil {
		t.Error("a record exactly at the TTL is still served")
	}

	now = now.Add(time.Minute)
	if rec := repo.GetCached(ctx); rec != nil {
		t.Errorf("GetCached() past TTL = %+v, want nil", rec)
	}
}

func TestRepository_UnavailableStore(t *testing.T) {
	store := &brokenStore{}
	repo := NewRepository[cropSummary](store, "disasters", time.Hour)
	ctx := context.Background()

	if rec := repo.GetCached(ctx); rec != nil {
		t.Errorf("GetCached() = %+v, want nil", rec)
	}

	// must not panic or surface an error
	repo.Save(ctx, cropSummary{})
	if store.puts.Load() != 1 {
		t.Errorf("Put calls = %d, want 1", store.puts.Load())
	}
}

func TestRepository_NilStore(t *testing.T) {
	repo := NewRepository[cropSummary](nil, "missions", 0)
	ctx := context.Background()

	repo.Save(ctx, cropSummary{AvgTempC: 3})
	if rec := repo.GetCached(ctx); rec != nil {
		t.Errorf("GetCached() with nil store = %+v, want nil", rec)
	}
	if repo.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want DefaultTTL", repo.ttl)
	}
}

func TestRepository_CorruptPayload(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Put(ctx, "agriculture", Document{Payload: []byte("not json"), LastUpdated: time.Now()})

	repo := NewRepository[cropSummary](store, "agriculture", time.Hour)
	if rec := repo.GetCached(ctx); rec != nil {
		t.Errorf("GetCached() on corrupt payload = %+v, want nil", rec)
	}
}

func TestRepository_SaveAsync(t *testing.T) {
	repo := NewRepository[cropSummary](NewMemoryStore(), "agriculture", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	repo.SaveAsync(ctx, cropSummary{AvgTempC: 21})
	cancel()
	repo.Wait()

	rec := repo.GetCached(context.Background())
	if rec == nil || rec.Summary.AvgTempC != 21 {
		t.Errorf("GetCached() after SaveAsync = %+v", rec)
	}
}

func TestRepository_SharedStoreIsolatesDomains(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	agri := NewRepository[cropSummary](store, "agriculture", time.Hour)
	climate := NewRepository[cropSummary](store, "climate", time.Hour)

	agri.Save(ctx, cropSummary{AvgTempC: 10})

	if climate.GetCached(ctx) != nil {
		t.Error("climate should not see the agriculture document")
	}
	if agri.Domain() != "agriculture" {
		t.Errorf("Domain() = %q", agri.Domain())
	}
}
