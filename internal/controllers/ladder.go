// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

// Package controllers turns upstream feeds into the domain summaries served
// by the API: agriculture, climate, disasters and missions.
//
// Every summary is resolved with the same four tiers:
//
//  1. live: compute from the feeds (each feed goes through the TTL cache)
//  2. on success persist the summary to the durable store in the background;
//     a partial summary is persisted only when no valid durable copy exists
//  3. on failure serve the durable summary if it is younger than its TTL
//  4. otherwise serve the documented static fallback for the domain
//
// Summary never returns an error. The Source field of the result says which
// tier answered.
package controllers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/spacedeck/internal/logging"
	"github.com/tomtom215/spacedeck/internal/metrics"
	"github.com/tomtom215/spacedeck/internal/summary"
)

// Source names the tier that produced a result.
type Source string

const (
	// SourceLive means at least one feed was fetched for this request.
	SourceLive Source = "live"
	// SourceCache means every feed was already in the TTL cache.
	SourceCache Source = "cache"
	// SourceDurable means the live path failed and the durable summary was used.
	SourceDurable Source = "durable"
	// SourceFallback means nothing else was available.
	SourceFallback Source = "fallback"
)

// FallbackNotice accompanies every fallback result.
const FallbackNotice = "Live data is temporarily unavailable; showing default values."

// persistInterval bounds how often a summary built entirely from cached
// feeds is written back to the durable store.
const persistInterval = 30 * time.Minute

// Result is a resolved domain summary.
type Result[S any] struct {
	Data          S          `json:"data"`
	Source        Source     `json:"source"`
	Stale         bool       `json:"stale"`
	LastUpdated   *time.Time `json:"last_updated,omitempty"`
	CacheAgeHours *float64   `json:"cache_age_hours,omitempty"`
	Notice        string     `json:"notice,omitempty"`
}

// partialError is returned by compute alongside a usable summary that is
// missing one or more feeds.
type partialError struct{ err error }

func (e *partialError) Error() string { return "partial summary: " + e.err.Error() }
func (e *partialError) Unwrap() error { return e.err }

// partial wraps err, or returns nil when err is nil.
func partial(err error) error {
	if err == nil {
		return nil
	}
	return &partialError{err: err}
}

type ladder[S any] struct {
	domain   string
	repo     *summary.Repository[S]
	fallback func() S
	now      func() time.Time

	mu        sync.Mutex
	lastSaved time.Time
}

func newLadder[S any](domain string, repo *summary.Repository[S], now func() time.Time, fallback func() S) *ladder[S] {
	return &ladder[S]{domain: domain, repo: repo, fallback: fallback, now: now}
}

// resolve runs compute and walks down the tiers on failure. warm reports
// whether every feed compute needs is already cached; it is sampled before
// compute runs.
func (l *ladder[S]) resolve(ctx context.Context, warm bool, compute func(context.Context) (S, error)) Result[S] {
	data, err := compute(ctx)
	var pe *partialError
	incomplete := errors.As(err, &pe)
	if err == nil || incomplete {
		source := SourceLive
		if warm {
			source = SourceCache
		}
		switch {
		case incomplete:
			// never replace a complete durable copy with a partial one
			if l.repo.GetCached(ctx) == nil {
				l.repo.SaveAsync(ctx, data)
			}
		case l.shouldPersist(source):
			l.repo.SaveAsync(ctx, data)
		}
		metrics.RecordControllerResponse(l.domain, string(source))
		return Result[S]{Data: data, Source: source}
	}

	log := logging.Ctx(ctx).With().Str("component", "controllers").Str("domain", l.domain).Logger()

	if rec := l.repo.GetCached(ctx); rec != nil {
		log.Warn().Err(err).Float64("cache_age_hours", rec.CacheAgeHours).Msg("Live summary failed, serving durable copy")
		metrics.RecordControllerResponse(l.domain, string(SourceDurable))
		updated := rec.LastUpdated
		age := rec.CacheAgeHours
		return Result[S]{
			Data:          rec.Summary,
			Source:        SourceDurable,
			Stale:         true,
			LastUpdated:   &updated,
			CacheAgeHours: &age,
		}
	}

	log.Warn().Err(err).Msg("Live summary failed and no durable copy, serving fallback")
	metrics.RecordControllerResponse(l.domain, string(SourceFallback))
	return Result[S]{
		Data:   l.fallback(),
		Source: SourceFallback,
		Stale:  true,
		Notice: FallbackNotice,
	}
}

// shouldPersist is true for every live result and for cached results once
// persistInterval has passed since the last save.
func (l *ladder[S]) shouldPersist(source Source) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if source == SourceCache && now.Sub(l.lastSaved) < persistInterval {
		return false
	}
	l.lastSaved = now
	return true
}

// Wait blocks until pending durable saves have finished.
func (l *ladder[S]) Wait() {
	l.repo.Wait()
}
