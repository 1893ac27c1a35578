// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/spacedeck/config.yaml",
	"/etc/spacedeck/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
		},
		Upstream: UpstreamConfig{
			NASAAPIKey:           "DEMO_KEY",
			NASABaseURL:          "https://api.nasa.gov",
			EONETBaseURL:         "https://eonet.gsfc.nasa.gov/api/v3",
			POWERBaseURL:         "https://power.larc.nasa.gov/api",
			LaunchLibraryBaseURL: "https://ll.thespacedevs.com/2.2.0",
			SWPCBaseURL:          "https://services.swpc.noaa.gov",
			Timeout:              5 * time.Second,
			Retries:              2,
			Backoff:              300 * time.Millisecond,
			RatePerSecond:        5,
			Burst:                10,
			BreakerMaxRequests:   3,
			BreakerInterval:      time.Minute,
			BreakerTimeout:       2 * time.Minute,
			BreakerMinRequests:   10,
			BreakerFailureRatio:  0.6,
		},
		Cache: CacheConfig{
			APODTTL:         6 * time.Hour,
			NEOTTL:          time.Hour,
			LaunchesTTL:     time.Hour,
			RoverTTL:        6 * time.Hour,
			EventsTTL:       30 * time.Minute,
			PowerTTL:        6 * time.Hour,
			SpaceWeatherTTL: 15 * time.Minute,
			RefreshTimeout:  30 * time.Second,
			WarmInterval:    30 * time.Minute,
		},
		Summary: SummaryConfig{
			Backend: "badger",
			Path:    "/data/summaries",
			TTL:     6 * time.Hour,
		},
		Controllers: ControllersConfig{
			Fanout: 4,
			Rovers: []string{"curiosity", "perseverance"},
			Regions: []RegionConfig{
				{Name: "US Corn Belt", Lat: 41.6, Lon: -93.6},
				{Name: "Punjab", Lat: 30.9, Lon: 75.8},
				{Name: "Pampas", Lat: -34.6, Lon: -60.9},
				{Name: "Black Earth Belt", Lat: 49.0, Lon: 33.0},
				{Name: "Mekong Delta", Lat: 10.0, Lon: 105.8},
			},
			ClimateZones: []RegionConfig{
				{Name: "Arctic", Lat: 78.2, Lon: 15.6},
				{Name: "Sahara", Lat: 23.4, Lon: 25.6},
				{Name: "Amazon Basin", Lat: -3.4, Lon: -62.2},
				{Name: "Antarctic Peninsula", Lat: -64.8, Lon: -62.9},
				{Name: "Tibetan Plateau", Lat: 31.0, Lon: 88.0},
			},
			LaunchLimit: 10,
			EventLimit:  50,
			PowerDays:   7,
		},
	}
}

// Load reads defaults, the optional config file and the environment, then
// validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"controllers.rovers",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"admin_secret":        "security.admin_secret",
	"admin_secret_hash":   "security.admin_secret_hash",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"nasa_api_key":              "upstream.nasa_api_key",
	"nasa_base_url":             "upstream.nasa_base_url",
	"eonet_base_url":            "upstream.eonet_base_url",
	"power_base_url":            "upstream.power_base_url",
	"launch_library_base_url":   "upstream.launch_library_base_url",
	"swpc_base_url":             "upstream.swpc_base_url",
	"upstream_timeout":          "upstream.timeout",
	"upstream_retries":          "upstream.retries",
	"upstream_backoff":          "upstream.backoff",
	"upstream_rate_per_second":  "upstream.rate_per_second",
	"upstream_burst":            "upstream.burst",
	"upstream_breaker_timeout":  "upstream.breaker_timeout",
	"upstream_breaker_interval": "upstream.breaker_interval",

	"cache_apod_ttl":          "cache.apod_ttl",
	"cache_neo_ttl":           "cache.neo_ttl",
	"cache_launches_ttl":      "cache.launches_ttl",
	"cache_rover_ttl":         "cache.rover_ttl",
	"cache_events_ttl":        "cache.events_ttl",
	"cache_power_ttl":         "cache.power_ttl",
	"cache_space_weather_ttl": "cache.space_weather_ttl",
	"cache_refresh_timeout":   "cache.refresh_timeout",
	"cache_refresh_dedup":     "cache.refresh_dedup",
	"cache_warm_interval":     "cache.warm_interval",

	"summary_backend": "summary.backend",
	"summary_path":    "summary.path",
	"summary_ttl":     "summary.ttl",

	"controller_fanout":       "controllers.fanout",
	"controller_rovers":       "controllers.rovers",
	"controller_launch_limit": "controllers.launch_limit",
	"controller_event_limit":  "controllers.event_limit",
	"controller_power_days":   "controllers.power_days",
}

// envTransformFunc maps HTTP_PORT to server.port and so on. An empty return
// makes koanf skip the variable.
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}
