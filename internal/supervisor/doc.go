// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

/*
Package supervisor runs Spacedeck's long-lived services under a suture v4 tree.

	RootSupervisor ("spacedeck")
	├── RefreshSupervisor ("refresh-layer")
	│   └── CacheWarmerService (if cache.warm_interval > 0)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A warmer that keeps failing is restarted with backoff inside its own layer
and never takes the HTTP server down with it. Supervisor events are logged
through sutureslog into the zerolog stream.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddRefreshService(services.NewCacheWarmerService(set, cfg.Cache.WarmInterval))
	tree.AddAPIService(services.NewHTTPServerService(srv, srv.Addr, cfg.Server.ShutdownTimeout))
	err = tree.Serve(ctx)
*/
package supervisor
