// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package api

// APODRequest is the query of GET /apod. An empty date means today.
type APODRequest struct {
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

// NEORequest is the query of GET /neo. NeoWs accepts at most 7 days.
type NEORequest struct {
	Days int `validate:"min=1,max=7"`
}

// ClearCacheRequest is the query of POST /admin/cache/clear. An empty key
// clears every entry.
type ClearCacheRequest struct {
	Key string `validate:"omitempty,max=256,printascii"`
}

// defaultNEODays is used when /neo has no days parameter.
const defaultNEODays = 3
