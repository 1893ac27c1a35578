// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/spacedeck/internal/fetch"
)

// source is one upstream host: its base URL, its pacing, its breaker, and
// the fetch policy used for every call to it.
type source struct {
	name    string
	baseURL string
	fetcher *fetch.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[any]
	opts    fetch.Options
}

func newSource(name, baseURL string, fc *fetch.Client, p Policy) *source {
	return &source{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: fc,
		limiter: rate.NewLimiter(rate.Limit(p.RatePerSecond), p.Burst),
		breaker: newBreaker(name, p.Breaker),
		opts:    p.Fetch,
	}
}

// endpoint joins path and query onto the base URL.
func (s *source) endpoint(path string, query url.Values) string {
	u := s.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// get waits for the limiter, then fetches through the breaker. metric names
// the recorder bucket for this call.
func get[T any](ctx context.Context, s *source, metric, path string, query url.Values) (T, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		var zero T
		return zero, fmt.Errorf("%s: rate limiter: %w", s.name, err)
	}

	opts := s.opts
	opts.MetricName = metric
	target := s.endpoint(path, query)

	return execute(s.breaker, func() (T, error) {
		return fetch.Fetch[T](ctx, s.fetcher, target, opts)
	})
}
