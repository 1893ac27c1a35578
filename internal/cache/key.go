// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// GenerateKey builds a compact key for a parameterised feed, for example
// the NEO feed for a given date window. Equal params give equal keys.
//
//	key := cache.GenerateKey("neo", neoWindow{Start: "2026-10-19", Days: 7})
//	// "neo:3f0c..."
func GenerateKey(prefix string, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", prefix, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", prefix, hash[:16])
}

// MetricName is the Recorder name for key: the part before the first ':'.
// Parameterised variants of one feed ("apod:2026-10-18", "neo:3f0c...")
// share a single bucket.
func MetricName(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
