// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

// Package concurrency runs a batch of independent tasks with a ceiling on
// how many are in flight.
//
// A failing task never fails the batch: its slot in the result is nil and
// the error is logged. Controllers use this to fan out per-region and
// per-rover fetches and then work with whatever came back.
package concurrency

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/spacedeck/internal/logging"
	"github.com/tomtom215/spacedeck/internal/metrics"
)

// Task produces one value.
type Task[T any] func(ctx context.Context) (T, error)

// Run executes tasks with at most limit running at once and returns one
// result per task, index aligned. A task that errors, panics, or is never
// started because ctx ended yields nil. A limit below 1 is treated as 1.
func Run[T any](ctx context.Context, tasks []Task[T], limit int) []*T {
	results := make([]*T, len(tasks))
	if len(tasks) == 0 {
		return results
	}
	if limit < 1 {
		limit = 1
	}

	// The group's derived context is not used: one failed task must not
	// cancel its siblings.
	var g errgroup.Group
	g.SetLimit(limit)

	for i, task := range tasks {
		if ctx.Err() != nil {
			metrics.RecordTask("skipped")
			continue
		}
		g.Go(func() error {
			v, err := runTask(ctx, task)
			if err != nil {
				metrics.RecordTask("failure")
				logging.CtxWarn(ctx).Err(err).Int("task", i).Msg("Batch task failed")
				return nil
			}
			metrics.RecordTask("success")
			results[i] = &v
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func runTask[T any](ctx context.Context, task Task[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return v, err
	}
	return task(ctx)
}
