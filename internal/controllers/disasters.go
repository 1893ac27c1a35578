// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package controllers

import (
	"context"
	"sort"
	"time"

	"github.com/tomtom215/spacedeck/internal/summary"
	"github.com/tomtom215/spacedeck/internal/upstream"
)

// DomainDisasters is the durable document id of the disasters summary.
const DomainDisasters = "disasters"

// CategoryGroup is the open events of one EONET category.
type CategoryGroup struct {
	ID     string           `json:"id"`
	Title  string           `json:"title"`
	Count  int              `json:"count"`
	Events []upstream.Event `json:"events"`
}

// DisasterSummary groups open natural events by category, largest first.
type DisasterSummary struct {
	Categories  []CategoryGroup `json:"categories"`
	TotalOpen   int             `json:"total_open"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Disasters resolves the disasters summary.
type Disasters struct {
	feeds  *Feeds
	ladder *ladder[DisasterSummary]
}

// NewDisasters creates the disasters controller.
func NewDisasters(feeds *Feeds, repo *summary.Repository[DisasterSummary]) *Disasters {
	d := &Disasters{feeds: feeds}
	d.ladder = newLadder(DomainDisasters, repo, feeds.now, func() DisasterSummary {
		return DisasterSummary{Categories: []CategoryGroup{}}
	})
	return d
}

// Summary returns the current disasters summary. It never fails.
func (d *Disasters) Summary(ctx context.Context) Result[DisasterSummary] {
	return d.ladder.resolve(ctx, d.feeds.cached(KeyEvents), d.compute)
}

func (d *Disasters) compute(ctx context.Context) (DisasterSummary, error) {
	events, err := d.feeds.OpenEvents(ctx)
	if err != nil {
		return DisasterSummary{}, err
	}
	out := groupEvents(events)
	out.GeneratedAt = d.feeds.now().UTC()
	return out, nil
}

func groupEvents(events []upstream.Event) DisasterSummary {
	byID := make(map[string]*CategoryGroup)
	total := 0
	for _, e := range events {
		if e.Closed {
			continue
		}
		total++
		id := e.CategoryID
		if id == "" {
			id = "uncategorized"
		}
		g, ok := byID[id]
		if !ok {
			title := e.Category
			if title == "" {
				title = "Uncategorized"
			}
			g = &CategoryGroup{ID: id, Title: title}
			byID[id] = g
		}
		g.Events = append(g.Events, e)
		g.Count++
	}

	groups := make([]CategoryGroup, 0, len(byID))
	for _, g := range byID {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Title < groups[j].Title
	})
	return DisasterSummary{Categories: groups, TotalOpen: total}
}

// Wait blocks until pending durable saves have finished.
func (d *Disasters) Wait() { d.ladder.Wait() }
