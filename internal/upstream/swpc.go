// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// SWPC publishes the planetary K-index in two JSON shapes: a table (array of
// string arrays whose first row is the header) and records (array of objects).
var kpTimeLayouts = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

type kpShape interface {
	samples() ([]KpSample, error)
}

// kpTable is [["time_tag","Kp",...],["2026-10-18 00:00:00.000","2.33",...]].
type kpTable [][]string

// kpRecords is [{"time_tag":"2026-10-18T00:00:00","Kp":2.33}].
type kpRecords []struct {
	TimeTag string          `json:"time_tag"`
	Kp      json.RawMessage `json:"Kp"`
	KpIndex json.RawMessage `json:"kp_index"`
}

var errEmptyKp = errors.New("empty K-index payload")

// PlanetaryKIndex fetches recent planetary K-index samples, oldest first.
func (c *Client) PlanetaryKIndex(ctx context.Context) ([]KpSample, error) {
	raw, err := get[[]byte](ctx, c.swpc, "swpc", "/products/noaa-planetary-k-index.json", nil)
	if err != nil {
		return nil, err
	}
	shape, err := decodeKp(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", SourceSWPC, err)
	}
	return shape.samples()
}

// decodeKp picks the shape from the first element of the top-level array.
func decodeKp(raw []byte) (kpShape, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) < 2 || trimmed[0] != '[' {
		return nil, fmt.Errorf("unrecognised K-index payload")
	}
	inner := bytes.TrimSpace(trimmed[1:])
	switch {
	case len(inner) == 0 || inner[0] == ']':
		return nil, errEmptyKp
	case inner[0] == '[':
		var t kpTable
		if err := json.Unmarshal(trimmed, &t); err != nil {
			return nil, fmt.Errorf("decode K-index table: %w", err)
		}
		return t, nil
	case inner[0] == '{':
		var r kpRecords
		if err := json.Unmarshal(trimmed, &r); err != nil {
			return nil, fmt.Errorf("decode K-index records: %w", err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unrecognised K-index element %q", inner[0])
	}
}

func (t kpTable) samples() ([]KpSample, error) {
	if len(t) == 0 {
		return nil, errEmptyKp
	}
	timeCol, kpCol := -1, -1
	for i, h := range t[0] {
		switch strings.ToLower(h) {
		case "time_tag":
			timeCol = i
		case "kp", "kp_index":
			kpCol = i
		}
	}
	if timeCol < 0 || kpCol < 0 {
		return nil, fmt.Errorf("K-index table header missing time_tag or Kp: %v", t[0])
	}

	out := make([]KpSample, 0, len(t)-1)
	for _, row := range t[1:] {
		if len(row) <= timeCol || len(row) <= kpCol {
			continue
		}
		ts, ok := parseKpTime(row[timeCol])
		if !ok {
			continue
		}
		kp, err := strconv.ParseFloat(row[kpCol], 64)
		if err != nil {
			continue
		}
		out = append(out, KpSample{Time: ts, Kp: kp})
	}
	return sortKp(out), nil
}

func (r kpRecords) samples() ([]KpSample, error) {
	out := make([]KpSample, 0, len(r))
	for _, rec := range r {
		ts, ok := parseKpTime(rec.TimeTag)
		if !ok {
			continue
		}
		raw := rec.Kp
		if len(raw) == 0 {
			raw = rec.KpIndex
		}
		kp, ok := parseKpValue(raw)
		if !ok {
			continue
		}
		out = append(out, KpSample{Time: ts, Kp: kp})
	}
	return sortKp(out), nil
}

// parseKpValue accepts a JSON number or a numeric string.
func parseKpValue(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func parseKpTime(s string) (time.Time, bool) {
	for _, layout := range kpTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func sortKp(s []KpSample) []KpSample {
	sort.Slice(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })
	return s
}

// GeomagneticLevel maps a Kp value to the NOAA G-scale label.
func GeomagneticLevel(kp float64) string {
	switch {
	case kp >= 9:
		return "G5 extreme"
	case kp >= 8:
		return "G4 severe"
	case kp >= 7:
		return "G3 strong"
	case kp >= 6:
		return "G2 moderate"
	case kp >= 5:
		return "G1 minor"
	case kp >= 4:
		return "active"
	default:
		return "quiet"
	}
}
