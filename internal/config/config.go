// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

// Package config loads Spacedeck configuration.
//
// Sources are layered with koanf, lowest precedence first:
//
//  1. built-in defaults (defaultConfig)
//  2. an optional YAML file (CONFIG_PATH, ./config.yaml, /etc/spacedeck/config.yaml)
//  3. environment variables (HTTP_PORT, NASA_API_KEY, ADMIN_SECRET, ...)
//
// The result is checked with go-playground/validator struct tags and a few
// cross-field rules in Validate.
package config

import "time"

// Config is the full application configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	Security    SecurityConfig    `koanf:"security"`
	Upstream    UpstreamConfig    `koanf:"upstream"`
	Cache       CacheConfig       `koanf:"cache"`
	Summary     SummaryConfig     `koanf:"summary"`
	Controllers ControllersConfig `koanf:"controllers"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	Environment     string        `koanf:"environment" validate:"oneof=development production"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// SecurityConfig holds the admin secret and HTTP edge protections.
type SecurityConfig struct {
	// AdminSecret is compared against the X-Admin-Secret header on admin
	// routes. AdminSecretHash, a bcrypt hash, takes precedence when set.
	// With neither set every admin call gets 401.
	AdminSecret       string        `koanf:"admin_secret"`
	AdminSecretHash   string        `koanf:"admin_secret_hash"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// UpstreamConfig holds base URLs and call policy for the public data sources.
type UpstreamConfig struct {
	NASAAPIKey           string `koanf:"nasa_api_key" validate:"required"`
	NASABaseURL          string `koanf:"nasa_base_url" validate:"url"`
	EONETBaseURL         string `koanf:"eonet_base_url" validate:"url"`
	POWERBaseURL         string `koanf:"power_base_url" validate:"url"`
	LaunchLibraryBaseURL string `koanf:"launch_library_base_url" validate:"url"`
	SWPCBaseURL          string `koanf:"swpc_base_url" validate:"url"`

	// Per-call policy handed to the resilient fetch.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	Retries int           `koanf:"retries" validate:"min=0,max=10"`
	Backoff time.Duration `koanf:"backoff" validate:"gt=0"`

	// Per-source pacing.
	RatePerSecond float64 `koanf:"rate_per_second" validate:"gt=0"`
	Burst         int     `koanf:"burst" validate:"min=1"`

	// Per-source circuit breaker.
	BreakerMaxRequests  uint32        `koanf:"breaker_max_requests" validate:"min=1"`
	BreakerInterval     time.Duration `koanf:"breaker_interval"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests" validate:"min=1"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio" validate:"gt=0,lte=1"`
}

// CacheConfig holds TTLs for the in-process cache keys.
type CacheConfig struct {
	APODTTL         time.Duration `koanf:"apod_ttl" validate:"gt=0"`
	NEOTTL          time.Duration `koanf:"neo_ttl" validate:"gt=0"`
	LaunchesTTL     time.Duration `koanf:"launches_ttl" validate:"gt=0"`
	RoverTTL        time.Duration `koanf:"rover_ttl" validate:"gt=0"`
	EventsTTL       time.Duration `koanf:"events_ttl" validate:"gt=0"`
	PowerTTL        time.Duration `koanf:"power_ttl" validate:"gt=0"`
	SpaceWeatherTTL time.Duration `koanf:"space_weather_ttl" validate:"gt=0"`

	// RefreshTimeout bounds a detached stale-entry refresh. 0 means no bound
	// beyond the fetch's own timeout.
	RefreshTimeout time.Duration `koanf:"refresh_timeout"`

	// RefreshDedup collapses concurrent refreshes of the same stale key.
	RefreshDedup bool `koanf:"refresh_dedup"`

	// WarmInterval re-primes the feeds in the background. 0 disables.
	WarmInterval time.Duration `koanf:"warm_interval"`
}

// SummaryConfig selects the durable summary store.
type SummaryConfig struct {
	Backend string        `koanf:"backend" validate:"oneof=badger sqlite memory"`
	Path    string        `koanf:"path"`
	TTL     time.Duration `koanf:"ttl" validate:"gt=0"`
}

// ControllersConfig tunes the domain controllers.
type ControllersConfig struct {
	Fanout       int            `koanf:"fanout" validate:"min=1,max=32"`
	Rovers       []string       `koanf:"rovers" validate:"min=1,dive,oneof=curiosity perseverance opportunity spirit"`
	Regions      []RegionConfig `koanf:"regions" validate:"min=1,dive"`
	ClimateZones []RegionConfig `koanf:"climate_zones" validate:"min=1,dive"`
	LaunchLimit  int            `koanf:"launch_limit" validate:"min=1,max=100"`
	EventLimit   int            `koanf:"event_limit" validate:"min=1,max=500"`
	PowerDays    int            `koanf:"power_days" validate:"min=1,max=60"`
}

// RegionConfig is a named point sampled from POWER.
type RegionConfig struct {
	Name string  `koanf:"name" validate:"required"`
	Lat  float64 `koanf:"lat" validate:"gte=-90,lte=90"`
	Lon  float64 `koanf:"lon" validate:"gte=-180,lte=180"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
