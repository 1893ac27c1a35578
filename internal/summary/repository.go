// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

// Package summary is the durable cache for computed domain summaries.
//
// Each domain (agriculture, climate, disasters, missions) owns one fixed
// document. A Repository reads it back with its age and treats anything
// older than the domain TTL as absent; it overwrites it after every
// successful recomputation. The store is an optimisation: every failure is
// logged and turned into a miss (reads) or a no-op (writes), never an error
// for the controller.
package summary

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/spacedeck/internal/logging"
	"github.com/tomtom215/spacedeck/internal/metrics"
)

// DefaultTTL is how long a stored summary is served.
const DefaultTTL = 6 * time.Hour

// saveTimeout bounds a detached save.
const saveTimeout = 10 * time.Second

// Record is a stored summary as returned to callers. CacheAgeHours is
// computed at read time and never stored.
type Record[S any] struct {
	Summary       S         `json:"summary"`
	LastUpdated   time.Time `json:"lastUpdated"`
	CacheAgeHours float64   `json:"cacheAgeHours"`
}

// Option configures a Repository.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Repository reads and writes the summary document of one domain.
type Repository[S any] struct {
	store  Store
	domain string
	ttl    time.Duration
	now    func() time.Time
	log    zerolog.Logger
	saves  sync.WaitGroup
}

// NewRepository creates the repository for domain. A nil store behaves as
// a permanently unavailable one. ttl <= 0 uses DefaultTTL.
func NewRepository[S any](store Store, domain string, ttl time.Duration, opts ...Option) *Repository[S] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Repository[S]{
		store:  store,
		domain: domain,
		ttl:    ttl,
		now:    o.now,
		log:    logging.WithComponent("summary").With().Str("domain", domain).Logger(),
	}
}

// Domain returns the document id.
func (r *Repository[S]) Domain() string {
	return r.domain
}

// GetCached returns the stored summary, or nil when it is missing, older
// than the TTL, unreadable, or the store is unavailable.
func (r *Repository[S]) GetCached(ctx context.Context) *Record[S] {
	if r.store == nil {
		metrics.RecordSummaryOperation(r.domain, "get", "error")
		return nil
	}

	doc, err := r.store.Get(ctx, r.domain)
	if errors.Is(err, ErrNotFound) {
		metrics.RecordSummaryOperation(r.domain, "get", "miss")
		return nil
	}
	if err != nil {
		metrics.RecordSummaryOperation(r.domain, "get", "error")
		r.log.Warn().Err(err).Msg("Durable summary read failed, treating as miss")
		return nil
	}

	var s S
	if err := json.Unmarshal(doc.Payload, &s); err != nil {
		metrics.RecordSummaryOperation(r.domain, "get", "error")
		r.log.Warn().Err(err).Msg("Durable summary unreadable, treating as miss")
		return nil
	}

	age := r.now().Sub(doc.LastUpdated)
	if age > r.ttl {
		metrics.RecordSummaryOperation(r.domain, "get", "stale")
		return nil
	}

	metrics.RecordSummaryOperation(r.domain, "get", "hit")
	return &Record[S]{
		Summary:       s,
		LastUpdated:   doc.LastUpdated,
		CacheAgeHours: age.Hours(),
	}
}

// Save overwrites the stored summary with s and the current time. Failures
// are logged and swallowed.
func (r *Repository[S]) Save(ctx context.Context, s S) {
	if r.store == nil {
		metrics.RecordSummaryOperation(r.domain, "save", "error")
		return
	}

	payload, err := json.Marshal(s)
	if err != nil {
		metrics.RecordSummaryOperation(r.domain, "save", "error")
		r.log.Warn().Err(err).Msg("Durable summary encode failed")
		return
	}

	if err := r.store.Put(ctx, r.domain, Document{Payload: payload, LastUpdated: r.now()}); err != nil {
		metrics.RecordSummaryOperation(r.domain, "save", "error")
		r.log.Warn().Err(err).Msg("Durable summary save failed")
		return
	}
	metrics.RecordSummaryOperation(r.domain, "save", "ok")
}

// SaveAsync runs Save in a detached goroutine and returns at once. The
// save keeps ctx's values but not its cancellation.
func (r *Repository[S]) SaveAsync(ctx context.Context, s S) {
	r.saves.Add(1)
	go func() {
		defer r.saves.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
		defer cancel()
		r.Save(sctx, s)
	}()
}

// Wait blocks until every SaveAsync started so far has finished.
func (r *Repository[S]) Wait() {
	r.saves.Wait()
}
