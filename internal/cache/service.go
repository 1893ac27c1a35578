// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package cache

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/spacedeck/internal/metrics"
)

// Entry is one cached value. Entries are replaced wholesale, never
// mutated, so a reader holding one sees a consistent pair.
type Entry struct {
	Timestamp time.Time
	Data      any
}

// Stats are lifetime counters for a Service.
type Stats struct {
	Hits            int64 `json:"hits"`
	Misses          int64 `json:"misses"`
	Refreshes       int64 `json:"refreshes"`
	RefreshFailures int64 `json:"refreshFailures"`
	Entries         int   `json:"entries"`
}

// Service is an in-process key/value store with stale-while-refresh reads.
//
// It has no size bound and no eviction: the key space is the fixed set of
// feeds the application serves plus parameterised variants whose inputs
// are validated and bounded by the callers. Entries only leave through
// Clear. Cache events are recorded per feed (see MetricName), not per key.
//
// Thread Safety: all methods are safe for concurrent use.
type Service struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	inflight map[string]struct{}

	recorder       *metrics.Recorder
	now            func() time.Time
	refreshTimeout time.Duration
	dedup          bool

	// refreshes tracks detached refresh goroutines for Wait.
	refreshes sync.WaitGroup

	hits, misses, refreshCount, refreshFailures atomic.Int64
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now. Tests use it to age entries without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRefreshTimeout bounds each detached refresh. Zero leaves the
// fetcher's own timeout as the only bound.
func WithRefreshTimeout(d time.Duration) Option {
	return func(s *Service) { s.refreshTimeout = d }
}

// WithRefreshDedup allows at most one detached refresh per key at a time.
// Without it, every stale read starts its own refresh.
func WithRefreshDedup() Option {
	return func(s *Service) { s.dedup = true }
}

// NewService creates an empty Service. rec may be nil.
func NewService(rec *metrics.Recorder, opts ...Option) *Service {
	s := &Service{
		entries:  make(map[string]Entry),
		inflight: make(map[string]struct{}),
		recorder: rec,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCached returns whatever is stored under key regardless of age.
// It never triggers a fetch.
func (s *Service) GetCached(key string) (any, bool) {
	e, ok := s.lookup(key)
	if !ok {
		return nil, false
	}
	return e.Data, true
}

// GetIfFresh returns the stored value only if it is younger than maxAge.
func (s *Service) GetIfFresh(key string, maxAge time.Duration) (any, bool) {
	e, ok := s.lookup(key)
	if !ok || s.now().Sub(e.Timestamp) >= maxAge {
		return nil, false
	}
	return e.Data, true
}

// Set stores data under key with the current time, replacing any entry.
func (s *Service) Set(key string, data any) {
	s.mu.Lock()
	_, existed := s.entries[key]
	s.entries[key] = Entry{Timestamp: s.now(), Data: data}
	s.mu.Unlock()
	if !existed {
		metrics.CacheEntries.Inc()
	}
}

// Clear removes the given keys, or every entry when called with none.
// It returns the number of entries removed.
func (s *Service) Clear(keys ...string) int {
	s.mu.Lock()
	removed := 0
	if len(keys) == 0 {
		removed = len(s.entries)
		s.entries = make(map[string]Entry)
	} else {
		for _, k := range keys {
			if _, ok := s.entries[k]; ok {
				delete(s.entries, k)
				removed++
			}
		}
	}
	s.mu.Unlock()
	metrics.CacheEntries.Sub(float64(removed))
	return removed
}

// Len returns the number of entries.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Keys returns the stored keys in sorted order.
func (s *Service) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Stats returns lifetime counters.
func (s *Service) Stats() Stats {
	return Stats{
		Hits:            s.hits.Load(),
		Misses:          s.misses.Load(),
		Refreshes:       s.refreshCount.Load(),
		RefreshFailures: s.refreshFailures.Load(),
		Entries:         s.Len(),
	}
}

// Wait blocks until every detached refresh started so far has finished.
// Callers never need it for correctness; shutdown and tests use it.
func (s *Service) Wait() {
	s.refreshes.Wait()
}

func (s *Service) lookup(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

func (s *Service) recordHit(key string) {
	s.hits.Add(1)
	s.recorder.RecordCacheEvent(MetricName(key), true)
}

func (s *Service) recordMiss(key string) {
	s.misses.Add(1)
	s.recorder.RecordCacheEvent(MetricName(key), false)
}

// claimRefresh reports whether the caller may start a refresh for key.
// Without dedup it always may.
func (s *Service) claimRefresh(key string) bool {
	if !s.dedup {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *Service) releaseRefresh(key string) {
	if !s.dedup {
		return
	}
	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
}
