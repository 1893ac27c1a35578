// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/spacedeck/internal/cache"
	"github.com/tomtom215/spacedeck/internal/config"
	"github.com/tomtom215/spacedeck/internal/summary"
)

// Deps are the shared collaborators of every controller.
type Deps struct {
	Upstream    Upstream
	Cache       *cache.Service
	Store       summary.Store
	CacheTTLs   config.CacheConfig
	Controllers config.ControllersConfig
	SummaryTTL  time.Duration
	Now         func() time.Time
}

// Set is every controller plus the feeds they share.
type Set struct {
	Feeds       *Feeds
	Agriculture *Agriculture
	Climate     *Climate
	Disasters   *Disasters
	Missions    *Missions
}

// New wires the feeds and the four domain controllers.
func New(d Deps) *Set {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	feeds := NewFeeds(d.Upstream, d.Cache, d.CacheTTLs, d.Controllers, now)
	clock := summary.WithClock(now)

	return &Set{
		Feeds: feeds,
		Agriculture: NewAgriculture(feeds,
			summary.NewRepository[AgricultureSummary](d.Store, DomainAgriculture, d.SummaryTTL, clock), d.Controllers),
		Climate: NewClimate(feeds,
			summary.NewRepository[ClimateSummary](d.Store, DomainClimate, d.SummaryTTL, clock), d.Controllers),
		Disasters: NewDisasters(feeds,
			summary.NewRepository[DisasterSummary](d.Store, DomainDisasters, d.SummaryTTL, clock)),
		Missions: NewMissions(feeds,
			summary.NewRepository[MissionsSummary](d.Store, DomainMissions, d.SummaryTTL, clock), d.Controllers),
	}
}

// Wait blocks until every pending durable save has finished.
func (s *Set) Wait() {
	s.Agriculture.Wait()
	s.Climate.Wait()
	s.Disasters.Wait()
	s.Missions.Wait()
}

// WarmReport is the tier each domain answered from during Warm.
type WarmReport struct {
	Sources map[string]Source
}

// Warm primes every feed by resolving each domain summary and the
// stand-alone feeds once. Domain summaries never fail, so the error only
// covers the stand-alone feeds.
func (s *Set) Warm(ctx context.Context) (WarmReport, error) {
	report := WarmReport{Sources: map[string]Source{
		DomainAgriculture: s.Agriculture.Summary(ctx).Source,
		DomainClimate:     s.Climate.Summary(ctx).Source,
		DomainDisasters:   s.Disasters.Summary(ctx).Source,
		DomainMissions:    s.Missions.Summary(ctx).Source,
	}}

	var errs []error
	if _, err := s.Feeds.APOD(ctx, ""); err != nil {
		errs = append(errs, fmt.Errorf("apod: %w", err))
	}
	if _, err := s.Feeds.SpaceWeather(ctx); err != nil {
		errs = append(errs, fmt.Errorf("space weather: %w", err))
	}
	return report, errors.Join(errs...)
}
