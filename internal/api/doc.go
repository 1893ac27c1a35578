// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

/*
Package api provides the HTTP surface of Spacedeck on the chi router.

Endpoints:

	GET  /api/v1/health/live          process is up
	GET  /api/v1/health/ready         durable summary store reachable
	GET  /api/v1/apod?date=           Astronomy Picture of the Day
	GET  /api/v1/neo?days=            near-Earth close approaches (1-7 days)
	GET  /api/v1/space-weather        planetary K-index summary
	GET  /api/v1/agriculture          regional growing conditions
	GET  /api/v1/climate              climate zones plus geomagnetic activity
	GET  /api/v1/disasters            open natural events by category
	GET  /api/v1/missions             upcoming launches and rover activity
	GET  /metrics                     Prometheus exposition

	GET  /api/v1/admin/metrics        fetch/cache metrics snapshot
	POST /api/v1/admin/metrics/reset  clear the metrics snapshot
	POST /api/v1/admin/cache/clear    clear one key (?key=) or the whole cache

Data endpoints use the APIResponse envelope. Admin endpoints require the
X-Admin-Secret header and answer {"ok":true} or {"ok":false}; a missing or
wrong secret gets 401.
*/
package api
