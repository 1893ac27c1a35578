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
	"github.com/tomtom215/spacedeck/internal/logging"
	"github.com/tomtom215/spacedeck/internal/summary"
	"github.com/tomtom215/spacedeck/internal/upstream"
)

// DomainMissions is the durable document id of the missions summary.
const DomainMissions = "missions"

// RoverStatus is the latest activity of one Mars rover.
type RoverStatus struct {
	Rover      string               `json:"rover"`
	Available  bool                 `json:"available"`
	Sol        int                  `json:"sol,omitempty"`
	EarthDate  string               `json:"earth_date,omitempty"`
	PhotoCount int                  `json:"photo_count"`
	Latest     *upstream.RoverPhoto `json:"latest,omitempty"`
}

// MissionsSummary is upcoming launches plus the rovers' latest sol.
type MissionsSummary struct {
	Launches    []upstream.Launch `json:"launches"`
	Rovers      []RoverStatus     `json:"rovers"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Missions resolves the missions summary.
type Missions struct {
	feeds  *Feeds
	cfg    config.ControllersConfig
	ladder *ladder[MissionsSummary]
}

// NewMissions creates the missions controller.
func NewMissions(feeds *Feeds, repo *summary.Repository[MissionsSummary], cfg config.ControllersConfig) *Missions {
	m := &Missions{feeds: feeds, cfg: cfg}
	m.ladder = newLadder(DomainMissions, repo, feeds.now, m.fallback)
	return m
}

// Summary returns the current missions summary. It never fails.
func (m *Missions) Summary(ctx context.Context) Result[MissionsSummary] {
	keys := []string{KeyLaunches}
	for _, r := range m.cfg.Rovers {
		keys = append(keys, m.feeds.roverKey(r))
	}
	return m.ladder.resolve(ctx, m.feeds.cached(keys...), m.compute)
}

func (m *Missions) compute(ctx context.Context) (MissionsSummary, error) {
	launches, launchErr := m.feeds.Launches(ctx)
	if launchErr != nil {
		logging.CtxWarn(ctx).Err(launchErr).Str("domain", DomainMissions).Msg("Launch schedule unavailable")
	}

	tasks := make([]concurrency.Task[[]upstream.RoverPhoto], len(m.cfg.Rovers))
	for i, rover := range m.cfg.Rovers {
		tasks[i] = func(ctx context.Context) ([]upstream.RoverPhoto, error) {
			return m.feeds.RoverPhotos(ctx, rover)
		}
	}
	photos := concurrency.Run(ctx, tasks, m.cfg.Fanout)

	out := m.fallback()
	out.GeneratedAt = m.feeds.now().UTC()
	missing := 0
	for i := range out.Rovers {
		if photos[i] == nil {
			missing++
			continue
		}
		out.Rovers[i] = roverStatus(m.cfg.Rovers[i], *photos[i])
	}

	var roverErr error
	if missing > 0 {
		roverErr = fmt.Errorf("%d of %d rovers returned no data", missing, len(out.Rovers))
	}
	if launchErr != nil && missing == len(out.Rovers) {
		return MissionsSummary{}, errors.Join(launchErr, roverErr)
	}
	if launchErr == nil {
		out.Launches = launches
	}
	return out, partial(errors.Join(launchErr, roverErr))
}

// roverStatus picks the photo from the highest sol as the latest.
func roverStatus(rover string, photos []upstream.RoverPhoto) RoverStatus {
	st := RoverStatus{Rover: rover, Available: true, PhotoCount: len(photos)}
	for i := range photos {
		p := photos[i]
		if st.Latest == nil || p.Sol > st.Latest.Sol {
			st.Latest = &p
		}
	}
	if st.Latest != nil {
		st.Sol = st.Latest.Sol
		st.EarthDate = st.Latest.EarthDate
	}
	return st
}

// fallback is an empty launch list with every rover unavailable.
func (m *Missions) fallback() MissionsSummary {
	out := MissionsSummary{
		Launches: []upstream.Launch{},
		Rovers:   make([]RoverStatus, len(m.cfg.Rovers)),
	}
	for i, r := range m.cfg.Rovers {
		out.Rovers[i] = RoverStatus{Rover: r}
	}
	return out
}

// Wait blocks until pending durable saves have finished.
func (m *Missions) Wait() { m.ladder.Wait() }
