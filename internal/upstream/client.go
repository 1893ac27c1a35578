// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

// Package upstream holds typed clients for the public space-data sources:
// NASA (APOD, NeoWs, Mars Rover Photos), EONET, POWER, Launch Library 2 and
// NOAA SWPC.
//
// Every call goes through a per-source rate limiter, a per-source circuit
// breaker and the resilient fetch. Each source's wire format is decoded into
// explicit shape types and converted by a pure normalisation function, so
// controllers only ever see the normalised records in types.go.
package upstream

import (
	"net/http"
	"time"

	"github.com/tomtom215/spacedeck/internal/config"
	"github.com/tomtom215/spacedeck/internal/fetch"
	"github.com/tomtom215/spacedeck/internal/metrics"
)

// Source names, also used as breaker names.
const (
	SourceNASA          = "nasa"
	SourceEONET         = "eonet"
	SourcePOWER         = "power"
	SourceLaunchLibrary = "launch-library"
	SourceSWPC          = "swpc"
)

// Policy is the call policy shared by every source of a Client.
type Policy struct {
	Fetch         fetch.Options
	RatePerSecond float64
	Burst         int
	Breaker       BreakerSettings
}

// Endpoints holds the base URL of each source.
type Endpoints struct {
	NASA          string
	EONET         string
	POWER         string
	LaunchLibrary string
	SWPC          string
}

// Client reaches every upstream source.
type Client struct {
	apiKey string
	now    func() time.Time

	nasa     *source
	eonet    *source
	power    *source
	launches *source
	swpc     *source
}

// NewClient creates a Client. fc may be shared with other components.
func NewClient(endpoints Endpoints, apiKey string, fc *fetch.Client, p Policy) *Client {
	return &Client{
		apiKey:   apiKey,
		now:      time.Now,
		nasa:     newSource(SourceNASA, endpoints.NASA, fc, p),
		eonet:    newSource(SourceEONET, endpoints.EONET, fc, p),
		power:    newSource(SourcePOWER, endpoints.POWER, fc, p),
		launches: newSource(SourceLaunchLibrary, endpoints.LaunchLibrary, fc, p),
		swpc:     newSource(SourceSWPC, endpoints.SWPC, fc, p),
	}
}

// NewClientFromConfig wires a Client from the upstream configuration.
func NewClientFromConfig(cfg config.UpstreamConfig, rec *metrics.Recorder) *Client {
	fc := fetch.NewClient(&http.Client{}, rec, fetch.WithDefaults(fetch.Options{
		Timeout: cfg.Timeout,
		Retries: fetch.Retries(cfg.Retries),
		Backoff: cfg.Backoff,
	}))

	return NewClient(Endpoints{
		NASA:          cfg.NASABaseURL,
		EONET:         cfg.EONETBaseURL,
		POWER:         cfg.POWERBaseURL,
		LaunchLibrary: cfg.LaunchLibraryBaseURL,
		SWPC:          cfg.SWPCBaseURL,
	}, cfg.NASAAPIKey, fc, Policy{
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.Burst,
		Breaker: BreakerSettings{
			MaxRequests:  cfg.BreakerMaxRequests,
			Interval:     cfg.BreakerInterval,
			Timeout:      cfg.BreakerTimeout,
			MinRequests:  cfg.BreakerMinRequests,
			FailureRatio: cfg.BreakerFailureRatio,
		},
	})
}
