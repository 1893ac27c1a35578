// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package upstream

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"time"
)

// POWER parameter names.
const (
	ParamTemperature = "T2M"
	ParamPrecip      = "PRECTOTCORR"
	ParamSolar       = "ALLSKY_SFC_SW_DWN"
)

// powerFillValue marks a missing reading in POWER responses.
const powerFillValue = -999.0

const powerDateLayout = "20060102"

type powerWire struct {
	Header struct {
		FillValue *float64 `json:"fill_value"`
	} `json:"header"`
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
}

// DailyPoint fetches temperature, precipitation and solar irradiance for a
// point between start and end inclusive.
func (c *Client) DailyPoint(ctx context.Context, lat, lon float64, start, end time.Time) (PowerSeries, error) {
	q := url.Values{
		"parameters": {ParamTemperature + "," + ParamPrecip + "," + ParamSolar},
		"community":  {"AG"},
		"latitude":   {strconv.FormatFloat(lat, 'f', 4, 64)},
		"longitude":  {strconv.FormatFloat(lon, 'f', 4, 64)},
		"start":      {start.Format(powerDateLayout)},
		"end":        {end.Format(powerDateLayout)},
		"format":     {"JSON"},
	}
	w, err := get[powerWire](ctx, c.power, "power", "/api/temporal/daily/point", q)
	if err != nil {
		return PowerSeries{}, err
	}
	return normalizePower(w, lat, lon), nil
}

// normalizePower pivots the per-parameter maps into days and drops fill
// values. Days with no valid reading at all are omitted.
func normalizePower(w powerWire, lat, lon float64) PowerSeries {
	fill := powerFillValue
	if w.Header.FillValue != nil {
		fill = *w.Header.FillValue
	}

	params := w.Properties.Parameter
	dates := make(map[string]struct{})
	for _, series := range params {
		for d := range series {
			dates[d] = struct{}{}
		}
	}

	value := func(param, date string) *float64 {
		v, ok := params[param][date]
		if !ok || v == fill || v == powerFillValue {
			return nil
		}
		return &v
	}

	days := make([]PowerDay, 0, len(dates))
	for d := range dates {
		day := PowerDay{
			Date:       d,
			TempC:      value(ParamTemperature, d),
			PrecipMm:   value(ParamPrecip, d),
			SolarKWhM2: value(ParamSolar, d),
		}
		if day.TempC == nil && day.PrecipMm == nil && day.SolarKWhM2 == nil {
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	return PowerSeries{Lat: lat, Lon: lon, Days: days}
}
