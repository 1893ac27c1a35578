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

	"github.com/tomtom215/spacedeck/internal/concurrency"
	"github.com/tomtom215/spacedeck/internal/config"
	"github.com/tomtom215/spacedeck/internal/summary"
	"github.com/tomtom215/spacedeck/internal/upstream"
)

// DomainAgriculture is the durable document id of the agriculture summary.
const DomainAgriculture = "agriculture"

// Growing condition labels.
const (
	ConditionFavourable = "favourable"
	ConditionDry        = "dry"
	ConditionCold       = "cold"
	ConditionHot        = "hot"
	ConditionUnknown    = "unknown"
)

// RegionConditions is the averaged POWER window for one region.
type RegionConditions struct {
	Region    string                 `json:"region"`
	Lat       float64                `json:"lat"`
	Lon       float64                `json:"lon"`
	Available bool                   `json:"available"`
	Averages  upstream.PowerAverages `json:"averages"`
	Condition string                 `json:"condition"`
}

// AgricultureSummary covers every configured agricultural region.
type AgricultureSummary struct {
	Regions     []RegionConditions `json:"regions"`
	PeriodDays  int                `json:"period_days"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Agriculture resolves the agriculture summary.
type Agriculture struct {
	feeds  *Feeds
	cfg    config.ControllersConfig
	ladder *ladder[AgricultureSummary]
}

// NewAgriculture creates the agriculture controller.
func NewAgriculture(feeds *Feeds, repo *summary.Repository[AgricultureSummary], cfg config.ControllersConfig) *Agriculture {
	a := &Agriculture{feeds: feeds, cfg: cfg}
	a.ladder = newLadder(DomainAgriculture, repo, feeds.now, a.fallback)
	return a
}

// Summary returns the current agriculture summary. It never fails.
func (a *Agriculture) Summary(ctx context.Context) Result[AgricultureSummary] {
	keys := make([]string, len(a.cfg.Regions))
	for i, r := range a.cfg.Regions {
		keys[i] = a.feeds.powerKey(r)
	}
	return a.ladder.resolve(ctx, a.feeds.cached(keys...), a.compute)
}

func (a *Agriculture) compute(ctx context.Context) (AgricultureSummary, error) {
	series, err := regionSeries(ctx, a.feeds, a.cfg.Regions, a.cfg.Fanout)
	if err != nil {
		return AgricultureSummary{}, err
	}

	out := AgricultureSummary{
		Regions:     make([]RegionConditions, len(a.cfg.Regions)),
		PeriodDays:  a.cfg.PowerDays,
		GeneratedAt: a.feeds.now().UTC(),
	}
	for i, r := range a.cfg.Regions {
		rc := RegionConditions{Region: r.Name, Lat: r.Lat, Lon: r.Lon, Condition: ConditionUnknown}
		if s := series[i]; s != nil {
			rc.Available = true
			rc.Averages = s.Averages()
			rc.Condition = growingCondition(rc.Averages)
		}
		out.Regions[i] = rc
	}
	return out, partial(missingSeries(series))
}

// fallback lists every region as unavailable.
func (a *Agriculture) fallback() AgricultureSummary {
	out := AgricultureSummary{
		Regions:    make([]RegionConditions, len(a.cfg.Regions)),
		PeriodDays: a.cfg.PowerDays,
	}
	for i, r := range a.cfg.Regions {
		out.Regions[i] = RegionConditions{Region: r.Name, Lat: r.Lat, Lon: r.Lon, Condition: ConditionUnknown}
	}
	return out
}

// growingCondition classifies mean daily temperature (C) and precipitation
// (mm/day).
func growingCondition(avg upstream.PowerAverages) string {
	switch {
	case avg.TempC == nil:
		return ConditionUnknown
	case *avg.TempC < 10:
		return ConditionCold
	case *avg.TempC > 32:
		return ConditionHot
	case avg.PrecipMm != nil && *avg.PrecipMm < 1:
		return ConditionDry
	default:
		return ConditionFavourable
	}
}

var errAllRegionsFailed = errors.New("no region returned data")

// regionSeries fetches POWER data for every region with at most limit
// requests in flight. A failed region is nil in the result; the call only
// fails when every region failed.
func regionSeries(ctx context.Context, feeds *Feeds, regions []config.RegionConfig, limit int) ([]*upstream.PowerSeries, error) {
	tasks := make([]concurrency.Task[upstream.PowerSeries], len(regions))
	for i, r := range regions {
		tasks[i] = func(ctx context.Context) (upstream.PowerSeries, error) {
			return feeds.Power(ctx, r)
		}
	}
	series := concurrency.Run(ctx, tasks, limit)
	for _, s := range series {
		if s != nil {
			return series, nil
		}
	}
	return nil, errAllRegionsFailed
}

// missingSeries reports how many regions in a non-nil result failed.
func missingSeries(series []*upstream.PowerSeries) error {
	missing := 0
	for _, s := range series {
		if s == nil {
			missing++
		}
	}
	if missing == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d regions returned no data", missing, len(series))
}

// Wait blocks until pending durable saves have finished.
func (a *Agriculture) Wait() { a.ladder.Wait() }
