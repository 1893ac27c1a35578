// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package upstream

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"
)

const nasaDateLayout = "2006-01-02"

type apodWire struct {
	Date         string `json:"date"`
	Title        string `json:"title"`
	Explanation  string `json:"explanation"`
	MediaType    string `json:"media_type"`
	URL          string `json:"url"`
	HDURL        string `json:"hdurl"`
	ThumbnailURL string `json:"thumbnail_url"`
	Copyright    string `json:"copyright"`
}

// APOD fetches the picture for date (YYYY-MM-DD), or today's when date is empty.
func (c *Client) APOD(ctx context.Context, date string) (APOD, error) {
	q := url.Values{"api_key": {c.apiKey}, "thumbs": {"true"}}
	if date != "" {
		q.Set("date", date)
	}
	w, err := get[apodWire](ctx, c.nasa, "apod", "/planetary/apod", q)
	if err != nil {
		return APOD{}, err
	}
	return normalizeAPOD(w), nil
}

func normalizeAPOD(w apodWire) APOD {
	return APOD{
		Date:         w.Date,
		Title:        w.Title,
		Explanation:  w.Explanation,
		MediaType:    w.MediaType,
		URL:          w.URL,
		HDURL:        w.HDURL,
		ThumbnailURL: w.ThumbnailURL,
		Copyright:    w.Copyright,
	}
}

type neoFeedWire struct {
	ElementCount     int                  `json:"element_count"`
	NearEarthObjects map[string][]neoWire `json:"near_earth_objects"`
}

type neoWire struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Hazardous         bool   `json:"is_potentially_hazardous_asteroid"`
	EstimatedDiameter struct {
		Kilometers struct {
			Min float64 `json:"estimated_diameter_min"`
			Max float64 `json:"estimated_diameter_max"`
		} `json:"kilometers"`
	} `json:"estimated_diameter"`
	CloseApproachData []closeApproachWire `json:"close_approach_data"`
}

type closeApproachWire struct {
	EpochMillis      int64 `json:"epoch_date_close_approach"`
	RelativeVelocity struct {
		KPS string `json:"kilometers_per_second"`
	} `json:"relative_velocity"`
	MissDistance struct {
		KM string `json:"kilometers"`
	} `json:"miss_distance"`
	OrbitingBody string `json:"orbiting_body"`
}

// NEOFeed fetches close approaches for days days starting at start. NeoWs
// caps a feed window at 7 days.
func (c *Client) NEOFeed(ctx context.Context, start time.Time, days int) ([]NearEarthObject, error) {
	if days < 1 || days > 7 {
		return nil, fmt.Errorf("neo feed: days must be between 1 and 7, got %d", days)
	}
	end := start.AddDate(0, 0, days-1)
	q := url.Values{
		"api_key":    {c.apiKey},
		"start_date": {start.Format(nasaDateLayout)},
		"end_date":   {end.Format(nasaDateLayout)},
	}
	w, err := get[neoFeedWire](ctx, c.nasa, "neo", "/neo/rest/v1/feed", q)
	if err != nil {
		return nil, err
	}
	return normalizeNEOFeed(w), nil
}

// normalizeNEOFeed flattens the per-day map and orders by close approach.
// Objects without approach data are dropped.
func normalizeNEOFeed(w neoFeedWire) []NearEarthObject {
	out := make([]NearEarthObject, 0, w.ElementCount)
	for _, day := range w.NearEarthObjects {
		for _, n := range day {
			if len(n.CloseApproachData) == 0 {
				continue
			}
			ca := n.CloseApproachData[0]
			out = append(out, NearEarthObject{
				ID:             n.ID,
				Name:           n.Name,
				Hazardous:      n.Hazardous,
				DiameterMinKm:  n.EstimatedDiameter.Kilometers.Min,
				DiameterMaxKm:  n.EstimatedDiameter.Kilometers.Max,
				CloseApproach:  time.UnixMilli(ca.EpochMillis).UTC(),
				VelocityKps:    parseFloat(ca.RelativeVelocity.KPS),
				MissDistanceKm: parseFloat(ca.MissDistance.KM),
				OrbitingBody:   ca.OrbitingBody,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CloseApproach.Equal(out[j].CloseApproach) {
			return out[i].ID < out[j].ID
		}
		return out[i].CloseApproach.Before(out[j].CloseApproach)
	})
	return out
}

// roverPhotosWire covers both Mars Rover Photos response shapes:
// /latest_photos answers {"latest_photos": [...]}, /photos answers {"photos": [...]}.
type roverPhotosWire struct {
	LatestPhotos []roverPhotoWire `json:"latest_photos"`
	Photos       []roverPhotoWire `json:"photos"`
}

type roverPhotoWire struct {
	ID        int64  `json:"id"`
	Sol       int    `json:"sol"`
	ImgSrc    string `json:"img_src"`
	EarthDate string `json:"earth_date"`
	Camera    struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
	} `json:"camera"`
	Rover struct {
		Name string `json:"name"`
	} `json:"rover"`
}

// LatestRoverPhotos fetches the most recent sol's photos for rover.
func (c *Client) LatestRoverPhotos(ctx context.Context, rover string) ([]RoverPhoto, error) {
	q := url.Values{"api_key": {c.apiKey}}
	path := "/mars-photos/api/v1/rovers/" + url.PathEscape(rover) + "/latest_photos"
	w, err := get[roverPhotosWire](ctx, c.nasa, "rover", path, q)
	if err != nil {
		return nil, err
	}
	return normalizeRoverPhotos(w, rover), nil
}

func normalizeRoverPhotos(w roverPhotosWire, rover string) []RoverPhoto {
	photos := w.LatestPhotos
	if len(photos) == 0 {
		photos = w.Photos
	}
	out := make([]RoverPhoto, 0, len(photos))
	for _, p := range photos {
		name := p.Rover.Name
		if name == "" {
			name = rover
		}
		camera := p.Camera.FullName
		if camera == "" {
			camera = p.Camera.Name
		}
		out = append(out, RoverPhoto{
			ID:        p.ID,
			Rover:     name,
			Sol:       p.Sol,
			EarthDate: p.EarthDate,
			Camera:    camera,
			ImageURL:  p.ImgSrc,
		})
	}
	return out
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
