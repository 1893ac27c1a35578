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
	"github.com/tomtom215/spacedeck/internal/upstream"
)

// Upstream is the set of source calls the feeds use. *upstream.Client
// implements it.
type Upstream interface {
	APOD(ctx context.Context, date string) (upstream.APOD, error)
	NEOFeed(ctx context.Context, start time.Time, days int) ([]upstream.NearEarthObject, error)
	LatestRoverPhotos(ctx context.Context, rover string) ([]upstream.RoverPhoto, error)
	Events(ctx context.Context, status string, limit int) ([]upstream.Event, error)
	DailyPoint(ctx context.Context, lat, lon float64, start, end time.Time) (upstream.PowerSeries, error)
	UpcomingLaunches(ctx context.Context, limit int) ([]upstream.Launch, error)
	PlanetaryKIndex(ctx context.Context) ([]upstream.KpSample, error)
}

// Cache keys. Parameterised feeds add a suffix.
const (
	KeyLaunches     = "launches"
	KeySpaceWeather = "space-weather"
	KeyEvents       = "events:open"
	keyAPODPrefix   = "apod:"
	keyRoverPrefix  = "rover:"
)

// powerLag is how far behind real time POWER daily data is published.
const powerLag = 2 * 24 * time.Hour

// ErrNoData is returned by a feed whose upstream answered with nothing usable.
var ErrNoData = errors.New("no data available")

// ErrDateOutOfRange is returned for an APOD date before the archive starts
// or after today (UTC). Such dates are never cached.
var ErrDateOutOfRange = errors.New("date out of range")

// APODFirstDate is the first day of the APOD archive.
var APODFirstDate = time.Date(1995, 6, 16, 0, 0, 0, 0, time.UTC)

const apodDateLayout = "2006-01-02"

// SpaceWeather summarises the recent planetary K-index.
type SpaceWeather struct {
	LatestKp   float64             `json:"latest_kp"`
	MaxKp24h   float64             `json:"max_kp_24h"`
	Level      string              `json:"level"`
	ObservedAt time.Time           `json:"observed_at"`
	Samples    []upstream.KpSample `json:"samples"`
}

// Feeds are the cached upstream reads shared by the controllers and the
// plain feed endpoints. Every method goes through
// cache.FetchWithBackgroundRefresh, so a repeat call inside the key's TTL
// issues no upstream request.
type Feeds struct {
	src   Upstream
	cache *cache.Service
	ttl   config.CacheConfig
	cfg   config.ControllersConfig
	now   func() time.Time
}

// NewFeeds creates Feeds. now defaults to time.Now.
func NewFeeds(src Upstream, c *cache.Service, ttl config.CacheConfig, cfg config.ControllersConfig, now func() time.Time) *Feeds {
	if now == nil {
		now = time.Now
	}
	return &Feeds{src: src, cache: c, ttl: ttl, cfg: cfg, now: now}
}

// CheckAPODDate accepts "" (today) or a YYYY-MM-DD date from APODFirstDate
// through today (UTC).
func (f *Feeds) CheckAPODDate(date string) error {
	if date == "" {
		return nil
	}
	d, err := time.Parse(apodDateLayout, date)
	if err != nil {
		return fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrDateOutOfRange, date)
	}
	today := f.now().UTC().Truncate(24 * time.Hour)
	if d.Before(APODFirstDate) || d.After(today) {
		return fmt.Errorf("%w: %s is not between %s and %s", ErrDateOutOfRange,
			date, APODFirstDate.Format(apodDateLayout), today.Format(apodDateLayout))
	}
	return nil
}

// APOD returns the picture for date, "" meaning today. Dates rejected by
// CheckAPODDate fail without touching the cache or the upstream.
func (f *Feeds) APOD(ctx context.Context, date string) (upstream.APOD, error) {
	if err := f.CheckAPODDate(date); err != nil {
		return upstream.APOD{}, err
	}
	key := keyAPODPrefix + date
	if date == "" {
		key = keyAPODPrefix + "today"
	}
	return cache.FetchWithBackgroundRefresh(ctx, f.cache, key, f.ttl.APODTTL, func(ctx context.Context) (upstream.APOD, error) {
		return f.src.APOD(ctx, date)
	})
}

// NEO returns close approaches for the next days days, starting today (UTC).
func (f *Feeds) NEO(ctx context.Context, days int) ([]upstream.NearEarthObject, error) {
	start := f.now().UTC().Truncate(24 * time.Hour)
	key := cache.GenerateKey("neo", map[string]any{"start": start.Format("2006-01-02"), "days": days})
	return cache.FetchWithBackgroundRefresh(ctx, f.cache, key, f.ttl.NEOTTL, func(ctx context.Context) ([]upstream.NearEarthObject, error) {
		return f.src.NEOFeed(ctx, start, days)
	})
}

// SpaceWeather returns the current geomagnetic activity.
func (f *Feeds) SpaceWeather(ctx context.Context) (SpaceWeather, error) {
	return cache.FetchWithBackgroundRefresh(ctx, f.cache, KeySpaceWeather, f.ttl.SpaceWeatherTTL, func(ctx context.Context) (SpaceWeather, error) {
		samples, err := f.src.PlanetaryKIndex(ctx)
		if err != nil {
			return SpaceWeather{}, err
		}
		return summarizeKp(samples)
	})
}

func summarizeKp(samples []upstream.KpSample) (SpaceWeather, error) {
	if len(samples) == 0 {
		return SpaceWeather{}, ErrNoData
	}
	latest := samples[len(samples)-1]
	since := latest.Time.Add(-24 * time.Hour)
	maxKp := latest.Kp
	for _, s := range samples {
		if !s.Time.Before(since) && s.Kp > maxKp {
			maxKp = s.Kp
		}
	}
	return SpaceWeather{
		LatestKp:   latest.Kp,
		MaxKp24h:   maxKp,
		Level:      upstream.GeomagneticLevel(latest.Kp),
		ObservedAt: latest.Time,
		Samples:    samples,
	}, nil
}

// Launches returns the next configured number of launches.
func (f *Feeds) Launches(ctx context.Context) ([]upstream.Launch, error) {
	return cache.FetchWithBackgroundRefresh(ctx, f.cache, KeyLaunches, f.ttl.LaunchesTTL, func(ctx context.Context) ([]upstream.Launch, error) {
		return f.src.UpcomingLaunches(ctx, f.cfg.LaunchLimit)
	})
}

// RoverPhotos returns the latest photos of rover.
func (f *Feeds) RoverPhotos(ctx context.Context, rover string) ([]upstream.RoverPhoto, error) {
	return cache.FetchWithBackgroundRefresh(ctx, f.cache, keyRoverPrefix+rover, f.ttl.RoverTTL, func(ctx context.Context) ([]upstream.RoverPhoto, error) {
		return f.src.LatestRoverPhotos(ctx, rover)
	})
}

// OpenEvents returns currently open natural events.
func (f *Feeds) OpenEvents(ctx context.Context) ([]upstream.Event, error) {
	return cache.FetchWithBackgroundRefresh(ctx, f.cache, KeyEvents, f.ttl.EventsTTL, func(ctx context.Context) ([]upstream.Event, error) {
		return f.src.Events(ctx, "open", f.cfg.EventLimit)
	})
}

// Power returns the configured window of daily POWER data for r.
func (f *Feeds) Power(ctx context.Context, r config.RegionConfig) (upstream.PowerSeries, error) {
	return cache.FetchWithBackgroundRefresh(ctx, f.cache, f.powerKey(r), f.ttl.PowerTTL, func(ctx context.Context) (upstream.PowerSeries, error) {
		end := f.now().UTC().Add(-powerLag)
		start := end.AddDate(0, 0, -(f.cfg.PowerDays - 1))
		series, err := f.src.DailyPoint(ctx, r.Lat, r.Lon, start, end)
		if err != nil {
			return upstream.PowerSeries{}, err
		}
		if len(series.Days) == 0 {
			return upstream.PowerSeries{}, ErrNoData
		}
		return series, nil
	})
}

func (f *Feeds) powerKey(r config.RegionConfig) string {
	return cache.GenerateKey("power", map[string]any{"lat": r.Lat, "lon": r.Lon, "days": f.cfg.PowerDays})
}

func (f *Feeds) roverKey(rover string) string {
	return keyRoverPrefix + rover
}

// cached reports whether every key already has an entry.
func (f *Feeds) cached(keys ...string) bool {
	for _, k := range keys {
		if _, ok := f.cache.GetCached(k); !ok {
			return false
		}
	}
	return true
}
