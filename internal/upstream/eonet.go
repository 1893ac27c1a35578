// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

type eventsWire struct {
	Events []eventWire `json:"events"`
}

type eventWire struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Closed     *string `json:"closed"`
	Categories []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"categories"`
	Sources []struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"sources"`
	Geometry []geometryWire `json:"geometry"`
}

type geometryWire struct {
	Type           string          `json:"type"`
	Date           time.Time       `json:"date"`
	MagnitudeValue *float64        `json:"magnitudeValue"`
	MagnitudeUnit  string          `json:"magnitudeUnit"`
	Coordinates    json.RawMessage `json:"coordinates"`
}

// geometry is the set of EONET location shapes: pointGeometry or polygonGeometry.
type geometry interface {
	centroid() (lat, lon float64, ok bool)
}

// pointGeometry is a GeoJSON Point, [lon, lat].
type pointGeometry [2]float64

func (p pointGeometry) centroid() (float64, float64, bool) {
	return p[1], p[0], true
}

// polygonGeometry is a GeoJSON Polygon; only the outer ring is used.
type polygonGeometry [][][2]float64

func (p polygonGeometry) centroid() (float64, float64, bool) {
	if len(p) == 0 || len(p[0]) == 0 {
		return 0, 0, false
	}
	ring := p[0]
	// A closed ring repeats its first vertex last.
	if n := len(ring); n > 1 && ring[0] == ring[n-1] {
		ring = ring[:n-1]
	}
	var lat, lon float64
	for _, v := range ring {
		lon += v[0]
		lat += v[1]
	}
	n := float64(len(ring))
	return lat / n, lon / n, true
}

func decodeGeometry(g geometryWire) (geometry, error) {
	switch g.Type {
	case "Point":
		var p pointGeometry
		if err := json.Unmarshal(g.Coordinates, &p); err != nil {
			return nil, fmt.Errorf("point coordinates: %w", err)
		}
		return p, nil
	case "Polygon":
		var p polygonGeometry
		if err := json.Unmarshal(g.Coordinates, &p); err != nil {
			return nil, fmt.Errorf("polygon coordinates: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

// Events fetches natural events. status is "open", "closed" or "all".
func (c *Client) Events(ctx context.Context, status string, limit int) ([]Event, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	w, err := get[eventsWire](ctx, c.eonet, "eonet", "/api/v3/events", q)
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(w.Events))
	for _, e := range w.Events {
		out = append(out, normalizeEvent(e))
	}
	return out, nil
}

// normalizeEvent keeps the most recent geometry. An event whose geometry
// cannot be decoded is kept with HasLocation false.
func normalizeEvent(w eventWire) Event {
	ev := Event{
		ID:     w.ID,
		Title:  w.Title,
		Closed: w.Closed != nil && *w.Closed != "",
	}
	if len(w.Categories) > 0 {
		ev.CategoryID = w.Categories[0].ID
		ev.Category = w.Categories[0].Title
	}
	if len(w.Sources) > 0 {
		ev.SourceURL = w.Sources[0].URL
	}

	var latest *geometryWire
	for i := range w.Geometry {
		if latest == nil || w.Geometry[i].Date.After(latest.Date) {
			latest = &w.Geometry[i]
		}
	}
	if latest == nil {
		return ev
	}

	ev.Observed = latest.Date
	ev.Magnitude = latest.MagnitudeValue
	ev.Unit = latest.MagnitudeUnit
	if g, err := decodeGeometry(*latest); err == nil {
		ev.Lat, ev.Lon, ev.HasLocation = g.centroid()
	}
	return ev
}
