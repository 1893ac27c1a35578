// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package api

import (
	"net/http"

	"github.com/tomtom215/spacedeck/internal/upstream"
	"github.com/tomtom215/spacedeck/internal/validation"
)

// APOD serves the Astronomy Picture of the Day.
func (h *Handler) APOD(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	req := APODRequest{Date: r.URL.Query().Get("date")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr.Error(), verr.Fields)
		return
	}
	if err := h.controllers.Feeds.CheckAPODDate(req.Date); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	apod, err := h.controllers.Feeds.APOD(r.Context(), req.Date)
	if err != nil {
		rw.ExternalServiceError(upstream.SourceNASA, err)
		return
	}
	rw.Success(apod)
}

// NEO serves near-Earth object close approaches.
func (h *Handler) NEO(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	days, ok := getIntParam(r, "days", defaultNEODays)
	if !ok {
		rw.BadRequest("days must be an integer")
		return
	}
	req := NEORequest{Days: days}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr.Error(), verr.Fields)
		return
	}

	neos, err := h.controllers.Feeds.NEO(r.Context(), req.Days)
	if err != nil {
		rw.ExternalServiceError(upstream.SourceNASA, err)
		return
	}
	rw.Success(neos)
}

// SpaceWeather serves the planetary K-index summary.
func (h *Handler) SpaceWeather(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	sw, err := h.controllers.Feeds.SpaceWeather(r.Context())
	if err != nil {
		rw.ExternalServiceError(upstream.SourceSWPC, err)
		return
	}
	rw.Success(sw)
}
