// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package services

import (
	"context"
	"time"

	"github.com/tomtom215/spacedeck/internal/controllers"
	"github.com/tomtom215/spacedeck/internal/logging"
)

const maxWarmTimeout = 2 * time.Minute

// Warmer primes the cache. *controllers.Set implements it.
type Warmer interface {
	Warm(ctx context.Context) (controllers.WarmReport, error)
}

// CacheWarmerService calls Warm once at start and then every interval.
type CacheWarmerService struct {
	warmer   Warmer
	interval time.Duration
	timeout  time.Duration
}

// NewCacheWarmerService creates the service. interval must be positive;
// main skips the service when warming is disabled.
func NewCacheWarmerService(w Warmer, interval time.Duration) *CacheWarmerService {
	return &CacheWarmerService{warmer: w, interval: interval, timeout: min(interval, maxWarmTimeout)}
}

// Serve warms until ctx is canceled. A failed warm is logged and retried on
// the next tick; it never stops the service.
func (s *CacheWarmerService) Serve(ctx context.Context) error {
	s.warm(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.warm(ctx)
		}
	}
}

func (s *CacheWarmerService) warm(ctx context.Context) {
	wctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	wctx = logging.ContextWithCorrelationID(wctx, logging.GenerateCorrelationID())

	start := time.Now()
	report, err := s.warmer.Warm(wctx)

	log := logging.Ctx(wctx)
	event := log.Info()
	if err != nil {
		event = log.Warn().Err(err)
	}
	for domain, source := range report.Sources {
		event = event.Str(domain, string(source))
	}
	event.Dur("duration", time.Since(start)).Msg("Cache warm finished")
}

// String names the service in supervisor events.
func (s *CacheWarmerService) String() string {
	return "cache-warmer"
}
