// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package api

import (
	"net/http"

	"github.com/tomtom215/spacedeck/internal/controllers"
)

// Domain summaries never fail; the controllers fall back to durable or
// static data, and the tier is reported in the body and X-Data-Source.

func writeSummary[S any](w http.ResponseWriter, r *http.Request, res controllers.Result[S]) {
	NewResponseWriter(w, r).WithSource(string(res.Source)).Success(res)
}

// Agriculture serves the agriculture summary.
func (h *Handler) Agriculture(w http.ResponseWriter, r *http.Request) {
	writeSummary(w, r, h.controllers.Agriculture.Summary(r.Context()))
}

// Climate serves the climate summary.
func (h *Handler) Climate(w http.ResponseWriter, r *http.Request) {
	writeSummary(w, r, h.controllers.Climate.Summary(r.Context()))
}

// Disasters serves the open natural events summary.
func (h *Handler) Disasters(w http.ResponseWriter, r *http.Request) {
	writeSummary(w, r, h.controllers.Disasters.Summary(r.Context()))
}

// Missions serves upcoming launches and rover activity.
func (h *Handler) Missions(w http.ResponseWriter, r *http.Request) {
	writeSummary(w, r, h.controllers.Missions.Summary(r.Context()))
}
