// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package upstream

import "time"

// APOD is the Astronomy Picture of the Day.
type APOD struct {
	Date         string `json:"date"`
	Title        string `json:"title"`
	Explanation  string `json:"explanation"`
	MediaType    string `json:"media_type"`
	URL          string `json:"url"`
	HDURL        string `json:"hd_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Copyright    string `json:"copyright,omitempty"`
}

// NearEarthObject is one asteroid close approach from the NeoWs feed.
type NearEarthObject struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Hazardous      bool      `json:"hazardous"`
	DiameterMinKm  float64   `json:"diameter_min_km"`
	DiameterMaxKm  float64   `json:"diameter_max_km"`
	CloseApproach  time.Time `json:"close_approach"`
	VelocityKps    float64   `json:"velocity_kps"`
	MissDistanceKm float64   `json:"miss_distance_km"`
	OrbitingBody   string    `json:"orbiting_body"`
}

// RoverPhoto is one image from a Mars rover.
type RoverPhoto struct {
	ID        int64  `json:"id"`
	Rover     string `json:"rover"`
	Sol       int    `json:"sol"`
	EarthDate string `json:"earth_date"`
	Camera    string `json:"camera"`
	ImageURL  string `json:"image_url"`
}

// Event is a natural event from EONET reduced to a single location.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CategoryID  string    `json:"category_id"`
	Category    string    `json:"category"`
	Closed      bool      `json:"closed"`
	Observed    time.Time `json:"observed"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	HasLocation bool      `json:"has_location"`
	Magnitude   *float64  `json:"magnitude,omitempty"`
	Unit        string    `json:"magnitude_unit,omitempty"`
	SourceURL   string    `json:"source_url,omitempty"`
}

// PowerDay is one day of POWER readings. Missing values are nil.
type PowerDay struct {
	Date       string   `json:"date"`
	TempC      *float64 `json:"temp_c,omitempty"`
	PrecipMm   *float64 `json:"precip_mm,omitempty"`
	SolarKWhM2 *float64 `json:"solar_kwh_m2,omitempty"`
}

// PowerSeries is a POWER daily time series for one point, oldest first.
type PowerSeries struct {
	Lat  float64    `json:"lat"`
	Lon  float64    `json:"lon"`
	Days []PowerDay `json:"days"`
}

// PowerAverages are the means of the non-missing readings in a series.
type PowerAverages struct {
	TempC      *float64 `json:"temp_c,omitempty"`
	PrecipMm   *float64 `json:"precip_mm,omitempty"`
	SolarKWhM2 *float64 `json:"solar_kwh_m2,omitempty"`
	Days       int      `json:"days"`
}

// Averages returns the per-parameter means over the days that reported a value.
func (s PowerSeries) Averages() PowerAverages {
	var temp, precip, solar []float64
	for _, d := range s.Days {
		if d.TempC != nil {
			temp = append(temp, *d.TempC)
		}
		if d.PrecipMm != nil {
			precip = append(precip, *d.PrecipMm)
		}
		if d.SolarKWhM2 != nil {
			solar = append(solar, *d.SolarKWhM2)
		}
	}
	return PowerAverages{
		TempC:      mean(temp),
		PrecipMm:   mean(precip),
		SolarKWhM2: mean(solar),
		Days:       len(s.Days),
	}
}

func mean(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	m := sum / float64(len(xs))
	return &m
}

// Launch is an upcoming launch from Launch Library 2.
type Launch struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	NET         time.Time `json:"net"`
	Status      string    `json:"status"`
	Provider    string    `json:"provider"`
	Rocket      string    `json:"rocket"`
	Mission     string    `json:"mission,omitempty"`
	MissionType string    `json:"mission_type,omitempty"`
	Orbit       string    `json:"orbit,omitempty"`
	Pad         string    `json:"pad"`
	Location    string    `json:"location"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// KpSample is one planetary K-index reading.
type KpSample struct {
	Time time.Time `json:"time"`
	Kp   float64   `json:"kp"`
}
