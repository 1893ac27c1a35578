// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

// Package cache is the in-process TTL cache that sits in front of every
// upstream feed.
//
// The central operation is FetchWithBackgroundRefresh:
//
//   - cold key: count a miss, call the fetcher and wait for it, store and
//     return the result; a fetcher error goes straight back to the caller
//   - fresh entry (age < ttl): count a hit and return it, no fetch
//   - stale entry (age >= ttl): count a hit, return the stale value at once
//     and refresh in a detached goroutine; a failed refresh is logged and
//     the stale entry stays in place
//
// The caller never waits on, or sees the outcome of, a background refresh.
//
//	launches, err := cache.FetchWithBackgroundRefresh(ctx, svc, "launches", time.Hour,
//	    func(ctx context.Context) ([]upstream.Launch, error) {
//	        return client.UpcomingLaunches(ctx, 10)
//	    })
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/spacedeck/internal/logging"
	"github.com/tomtom215/spacedeck/internal/metrics"
)

// Fetcher produces a fresh value for a key. It should be bounded by its own
// timeout (normally by going through the fetch package); the cache adds none
// on the cold path.
type Fetcher[T any] func(ctx context.Context) (T, error)

// FetchWithBackgroundRefresh returns the value for key, fetching it on a cold
// miss and refreshing it in the background once it is older than ttl.
//
// A stored value whose type is not T is treated as a cold miss and
// overwritten.
func FetchWithBackgroundRefresh[T any](ctx context.Context, s *Service, key string, ttl time.Duration, fetcher Fetcher[T]) (T, error) {
	if e, ok := s.lookup(key); ok {
		if v, ok := e.Data.(T); ok {
			s.recordHit(key)
			if s.now().Sub(e.Timestamp) >= ttl {
				startRefresh(ctx, s, key, fetcher)
			}
			return v, nil
		}
		logging.CtxWarn(ctx).Str("key", key).Str("stored_type", fmt.Sprintf("%T", e.Data)).Msg("Cached value has unexpected type, refetching")
	}

	s.recordMiss(key)
	v, err := fetcher(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	s.Set(key, v)
	return v, nil
}

// Cached is the typed form of GetCached.
func Cached[T any](s *Service, key string) (T, bool) {
	v, ok := s.GetCached(key)
	t, isT := v.(T)
	return t, ok && isT
}

// IfFresh is the typed form of GetIfFresh.
func IfFresh[T any](s *Service, key string, maxAge time.Duration) (T, bool) {
	v, ok := s.GetIfFresh(key, maxAge)
	t, isT := v.(T)
	return t, ok && isT
}

// startRefresh runs fetcher in a detached goroutine. The goroutine keeps the
// caller's context values (request id for logs) but not its cancellation:
// the request that noticed the stale entry is usually finished long before
// the refresh is.
func startRefresh[T any](ctx context.Context, s *Service, key string, fetcher Fetcher[T]) {
	if !s.claimRefresh(key) {
		metrics.RecordBackgroundRefresh("deduplicated")
		return
	}

	s.refreshes.Add(1)
	go func() {
		defer s.refreshes.Done()
		defer s.releaseRefresh(key)

		rctx := context.WithoutCancel(ctx)
		if s.refreshTimeout > 0 {
			var cancel context.CancelFunc
			rctx, cancel = context.WithTimeout(rctx, s.refreshTimeout)
			defer cancel()
		}

		v, err := runFetcher(rctx, fetcher)
		if err != nil {
			s.refreshFailures.Add(1)
			metrics.RecordBackgroundRefresh("failure")
			logging.CtxWarn(ctx).Err(err).Str("key", key).Msg("Background refresh failed, keeping stale entry")
			return
		}

		s.Set(key, v)
		s.refreshCount.Add(1)
		metrics.RecordBackgroundRefresh("success")
		logging.Ctx(ctx).Debug().Str("key", key).Msg("Background refresh stored")
	}()
}

func runFetcher[T any](ctx context.Context, fetcher Fetcher[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetcher panicked: %v", r)
		}
	}()
	return fetcher(ctx)
}
