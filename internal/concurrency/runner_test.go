// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package concurrency

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func valueTask(v int) Task[int] {
	return func(context.Context) (int, error) { return v, nil }
}

func TestRun_IndexAlignedWithFailures(t *testing.T) {
	tasks := []Task[int]{
		valueTask(1),
		func(context.Context) (int, error) { return 0, errors.New("upstream down") },
		valueTask(3),
	}

	got := Run(context.Background(), tasks, 2)

	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0] == nil || *got[0] != 1 {
		t.Errorf("got[0] = %v, want 1", got[0])
	}
	if got[1] != nil {
		t.Errorf("got[1] = %v, want nil", *got[1])
	}
	if got[2] == nil || *got[2] != 3 {
		t.Errorf("got[2] = %v, want 3", got[2])
	}
}

func TestRun_Empty(t *testing.T) {
	got := Run[int](context.Background(), nil, 4)
	if got == nil || len(got) != 0 {
		t.Errorf("Run(nil) = %v, want empty slice", got)
	}
}

func TestRun_RespectsLimit(t *testing.T) {
	const limit = 3
	var inFlight, peak atomic.Int32

	tasks := make([]Task[int], 12)
	for i := range tasks {
		tasks[i] = func(context.Context) (int, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			return i, nil
		}
	}

	got := Run(context.Background(), tasks, limit)

	if p := peak.Load(); p > limit {
		t.Errorf("peak in-flight = %d, want <= %d", p, limit)
	}
	for i, v := range got {
		if v == nil || *v != i {
			t.Errorf("got[%d] = %v, want %d", i, v, i)
		}
	}
}

func TestRun_ClampsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	task := func(context.Context) (int, error) {
		n := inFlight.Add(1)
		if n > peak.Load() {
			peak.Store(n)
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return 1, nil
	}

	for _, limit := range []int{0, -5} {
		peak.Store(0)
		got := Run(context.Background(), []Task[int]{task, task, task}, limit)
		if len(got) != 3 {
			t.Fatalf("limit %d: len = %d, want 3", limit, len(got))
		}
		if p := peak.Load(); p != 1 {
			t.Errorf("limit %d: peak = %d, want 1", limit, p)
		}
	}
}

func TestRun_PanicBecomesNil(t *testing.T) {
	tasks := []Task[string]{
		func(context.Context) (string, error) { panic("bad payload") },
		func(context.Context) (string, error) { return "ok", nil },
	}

	got := Run(context.Background(), tasks, 2)

	if got[0] != nil {
		t.Errorf("got[0] = %v, want nil", *got[0])
	}
	if got[1] == nil || *got[1] != "ok" {
		t.Errorf("got[1] = %v, want ok", got[1])
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called atomic.Int32
	task := func(context.Context) (int, error) {
		called.Add(1)
		return 1, nil
	}

	got := Run(ctx, []Task[int]{task, task}, 1)

	if called.Load() != 0 {
		t.Errorf("tasks ran %d times on a cancelled context", called.Load())
	}
	for i, v := range got {
		if v != nil {
			t.Errorf("got[%d] = %v, want nil", i, *v)
		}
	}
}
