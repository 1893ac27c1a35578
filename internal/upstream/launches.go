// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package upstream

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

type launchesWire struct {
	Count   int          `json:"count"`
	Results []launchWire `json:"results"`
}

type launchWire struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	NET    time.Time `json:"net"`
	Image  string    `json:"image"`
	Status struct {
		Name   string `json:"name"`
		Abbrev string `json:"abbrev"`
	} `json:"status"`
	Provider struct {
		Name string `json:"name"`
	} `json:"launch_service_provider"`
	Rocket struct {
		Configuration struct {
			Name     string `json:"name"`
			FullName string `json:"full_name"`
		} `json:"configuration"`
	} `json:"rocket"`
	// Mission is null for launches without a published payload.
	Mission *struct {
		Name  string `json:"name"`
		Type  string `json:"type"`
		Orbit *struct {
			Name string `json:"name"`
		} `json:"orbit"`
	} `json:"mission"`
	Pad struct {
		Name     string `json:"name"`
		Location struct {
			Name string `json:"name"`
		} `json:"location"`
	} `json:"pad"`
}

// UpcomingLaunches fetches the next limit launches.
func (c *Client) UpcomingLaunches(ctx context.Context, limit int) ([]Launch, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}, "mode": {"normal"}}
	w, err := get[launchesWire](ctx, c.launches, "launches", "/2.2.0/launch/upcoming/", q)
	if err != nil {
		return nil, err
	}
	out := make([]Launch, 0, len(w.Results))
	for _, l := range w.Results {
		out = append(out, normalizeLaunch(l))
	}
	return out, nil
}

func normalizeLaunch(w launchWire) Launch {
	l := Launch{
		ID:       w.ID,
		Name:     w.Name,
		NET:      w.NET,
		Status:   w.Status.Name,
		Provider: w.Provider.Name,
		Rocket:   w.Rocket.Configuration.FullName,
		Pad:      w.Pad.Name,
		Location: w.Pad.Location.Name,
		ImageURL: w.Image,
	}
	if l.Rocket == "" {
		l.Rocket = w.Rocket.Configuration.Name
	}
	if w.Mission != nil {
		l.Mission = w.Mission.Name
		l.MissionType = w.Mission.Type
		if w.Mission.Orbit != nil {
			l.Orbit = w.Mission.Orbit.Name
		}
	}
	return l
}
