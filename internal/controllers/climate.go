// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/spacedeck/internal/config"
	"github.com/tomtom215/spacedeck/internal/logging"
	"github.com/tomtom215/spacedeck/internal/summary"
	"github.com/tomtom215/spacedeck/internal/upstream"
)

// DomainClimate is the durable document id of the climate summary.
const DomainClimate = "climate"

// ZoneConditions is the averaged POWER window for one climate zone.
type ZoneConditions struct {
	Zone      string                 `json:"zone"`
	Lat       float64                `json:"lat"`
	Lon       float64                `json:"lon"`
	Available bool                   `json:"available"`
	Averages  upstream.PowerAverages `json:"averages"`
}

// Geomagnetic is the space-weather part of the climate summary.
type Geomagnetic struct {
	Available  bool      `json:"available"`
	LatestKp   float64   `json:"latest_kp"`
	MaxKp24h   float64   `json:"max_kp_24h"`
	Level      string    `json:"level"`
	ObservedAt time.Time `json:"observed_at,omitempty"`
}

// ClimateSummary combines surface conditions per zone with geomagnetic activity.
type ClimateSummary struct {
	Zones       []ZoneConditions `json:"zones"`
	Geomagnetic Geomagnetic      `json:"geomagnetic"`
	PeriodDays  int              `json:"period_days"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// Climate resolves the climate summary.
type Climate struct {
	feeds  *Feeds
	cfg    config.ControllersConfig
	ladder *ladder[ClimateSummary]
}

// NewClimate creates the climate controller.
func NewClimate(feeds *Feeds, repo *summary.Repository[ClimateSummary], cfg config.ControllersConfig) *Climate {
	c := &Climate{feeds: feeds, cfg: cfg}
	c.ladder = newLadder(DomainClimate, repo, feeds.now, c.fallback)
	return c
}

// Summary returns the current climate summary. It never fails.
func (c *Climate) Summary(ctx context.Context) Result[ClimateSummary] {
	keys := make([]string, 0, len(c.cfg.ClimateZones)+1)
	for _, z := range c.cfg.ClimateZones {
		keys = append(keys, c.feeds.powerKey(z))
	}
	keys = append(keys, KeySpaceWeather)
	return c.ladder.resolve(ctx, c.feeds.cached(keys...), c.compute)
}

func (c *Climate) compute(ctx context.Context) (ClimateSummary, error) {
	series, zoneErr := regionSeries(ctx, c.feeds, c.cfg.ClimateZones, c.cfg.Fanout)

	geo := Geomagnetic{Level: ConditionUnknown}
	sw, swErr := c.feeds.SpaceWeather(ctx)
	if swErr == nil {
		geo = Geomagnetic{
			Available:  true,
			LatestKp:   sw.LatestKp,
			MaxKp24h:   sw.MaxKp24h,
			Level:      sw.Level,
			ObservedAt: sw.ObservedAt,
		}
	} else {
		logging.CtxWarn(ctx).Err(swErr).Str("domain", DomainClimate).Msg("Space weather unavailable for climate summary")
	}

	if zoneErr != nil && swErr != nil {
		return ClimateSummary{}, errors.Join(zoneErr, swErr)
	}

	out := c.fallback()
	out.Geomagnetic = geo
	out.GeneratedAt = c.feeds.now().UTC()
	for i := range out.Zones {
		if series != nil && series[i] != nil {
			out.Zones[i].Available = true
			out.Zones[i].Averages = series[i].Averages()
		}
	}
	if zoneErr == nil {
		zoneErr = missingSeries(series)
	}
	return out, partial(errors.Join(zoneErr, swErr))
}

// fallback lists every zone as unavailable with unknown geomagnetic activity.
func (c *Climate) fallback() ClimateSummary {
	out := ClimateSummary{
		Zones:       make([]ZoneConditions, len(c.cfg.ClimateZones)),
		Geomagnetic: Geomagnetic{Level: ConditionUnknown},
		PeriodDays:  c.cfg.PowerDays,
	}
	for i, z := range c.cfg.ClimateZones {
		out.Zones[i] = ZoneConditions{Zone: z.Name, Lat: z.Lat, Lon: z.Lon}
	}
	return out
}

// Wait blocks until pending durable saves have finished.
func (c *Climate) Wait() { c.ladder.Wait() }
