// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/spacedeck/internal/cache"
	"github.com/tomtom215/spacedeck/internal/controllers"
	"github.com/tomtom215/spacedeck/internal/metrics"
)

// DataSourceHeader tells clients which tier answered a domain request.
const DataSourceHeader = "X-Data-Source"

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandlerDeps are the collaborators of Handler.
type HandlerDeps struct {
	Controllers *controllers.Set
	Cache       *cache.Service
	Recorder    *metrics.Recorder
	Store       Pinger
	Admin       *AdminAuth
}

// Handler serves every API endpoint.
type Handler struct {
	controllers *controllers.Set
	cache       *cache.Service
	recorder    *metrics.Recorder
	store       Pinger
	admin       *AdminAuth
	startTime   time.Time
}

// NewHandler creates a Handler. A nil Admin rejects every admin call.
func NewHandler(d HandlerDeps) *Handler {
	admin := d.Admin
	if admin == nil {
		admin = NewAdminAuth("", "")
	}
	return &Handler{
		controllers: d.Controllers,
		cache:       d.Cache,
		recorder:    d.Recorder,
		store:       d.Store,
		admin:       admin,
		startTime:   time.Now(),
	}
}

// getIntParam returns the query parameter as an int, def when absent, and
// ok false when present but not a number.
func getIntParam(r *http.Request, key string, def int) (int, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, true
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}
