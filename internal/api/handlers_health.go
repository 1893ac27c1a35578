// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package api

import (
	"context"
	"net/http"
	"time"
)

// readyTimeout bounds the durable store ping in HealthReady.
const readyTimeout = 2 * time.Second

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status         string  `json:"status"`
	StoreReachable *bool   `json:"store_reachable,omitempty"`
	CacheEntries   int     `json:"cache_entries"`
	Uptime         float64 `json:"uptime_seconds"`
}

// HealthLive reports that the process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthStatus{
		Status:       "ok",
		CacheEntries: h.cache.Len(),
		Uptime:       time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports whether the durable summary store answers. The API
// keeps serving without it, so an unreachable store makes the service
// degraded rather than down; the response is still 503 so that load
// balancers can tell.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	reachable := h.store != nil && h.store.Ping(ctx) == nil
	status := HealthStatus{
		Status:         "ready",
		StoreReachable: &reachable,
		CacheEntries:   h.cache.Len(),
		Uptime:         time.Since(h.startTime).Seconds(),
	}
	if !reachable {
		status.Status = "degraded"
		NewResponseWriter(w, r).ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Durable summary store unreachable", status)
		return
	}
	NewResponseWriter(w, r).Success(status)
}
