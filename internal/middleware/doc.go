// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

/*
Package middleware provides infrastructure HTTP middleware for the API.

Key Components:

  - Request ID: UUID-based request tracking; the id and a short correlation
    id are put into the logging context so background refreshes triggered
    by a request log under the same ids
  - Prometheus Metrics: request count, duration and in-flight gauge, labelled
    by chi route pattern rather than raw path

Both are chi-style func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
