// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

// Package metrics holds the in-memory fetch/cache Recorder and the
// Prometheus collectors it mirrors into.
//
// The Recorder keeps one Bucket per metric name. Upstream fetches record
// under the name the caller chose (for example "apod" or "launches");
// cache lookups record under "cache:<key>", where a miss increments
// Failures. Snapshots are served by the admin API and the Recorder can be
// reset at runtime.
//
//	rec := metrics.NewRecorder()
//	rec.RecordFetchMetric("apod", 120*time.Millisecond, true, false)
//	snap := rec.GetMetrics()["apod"] // snap.AvgMs == 120
//
// A nil *Recorder is valid and records nothing, so components can be
// built without one in tests.
package metrics

import (
	"sync"
	"time"

	"github.com/tomtom215/spacedeck/internal/logging"
)

// CachePrefix namespaces cache buckets.
const CachePrefix = "cache:"

// Bucket aggregates samples for one metric name.
type Bucket struct {
	Count           int64   `json:"count"`
	Failures        int64   `json:"failures"`
	Timeouts        int64   `json:"timeouts"`
	TotalDurationMs float64 `json:"totalDurationMs"`
	LastSampleMs    float64 `json:"lastSampleMs"`
}

// Snapshot is a Bucket plus its derived average.
type Snapshot struct {
	Bucket
	AvgMs float64 `json:"avgMs"`
}

// Recorder aggregates fetch and cache samples in memory.
type Recorder struct {
	mu      sync.Mutex
	buckets map[string]*Bucket
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{buckets: make(map[string]*Bucket)}
}

// RecordFetchMetric adds one upstream sample under name.
// It never panics into the caller.
func (r *Recorder) RecordFetchMetric(name string, duration time.Duration, success, timeout bool) {
	if r == nil {
		return
	}
	defer recoverRecording(name)

	ms := float64(duration) / float64(time.Millisecond)

	r.update(name, func(b *Bucket) {
		b.Count++
		if !success {
			b.Failures++
		}
		if timeout {
			b.Timeouts++
		}
		b.TotalDurationMs += ms
		b.LastSampleMs = ms
	})

	recordUpstreamFetch(name, duration, success, timeout)
}

// RecordCacheEvent adds one cache lookup under "cache:<name>". A miss
// increments Failures.
func (r *Recorder) RecordCacheEvent(name string, hit bool) {
	if r == nil {
		return
	}
	defer recoverRecording(name)

	r.update(CachePrefix+name, func(b *Bucket) {
		b.Count++
		if !hit {
			b.Failures++
		}
	})

	recordCacheEvent(hit)
}

// GetMetrics returns a snapshot of every bucket with AvgMs filled in.
func (r *Recorder) GetMetrics() map[string]Snapshot {
	out := make(map[string]Snapshot)
	if r == nil {
		return out
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for name, b := range r.buckets {
		s := Snapshot{Bucket: *b}
		if b.Count > 0 {
			s.AvgMs = b.TotalDurationMs / float64(b.Count)
		}
		out[name] = s
	}
	return out
}

// ResetMetrics drops every bucket.
func (r *Recorder) ResetMetrics() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.buckets = make(map[string]*Bucket)
	r.mu.Unlock()
}

func (r *Recorder) update(name string, fn func(b *Bucket)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buckets[name]
	if !ok {
		b = &Bucket{}
		r.buckets[name] = b
	}
	fn(b)
}

func recoverRecording(name string) {
	if rec := recover(); rec != nil {
		logging.Warn().Str("metric", name).Interface("panic", rec).Msg("Metric recording failed")
	}
}
