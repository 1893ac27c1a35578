// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package summary

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Store.Get when no document exists for the id.
var ErrNotFound = errors.New("summary document not found")

// Document is the stored form of one summary: an opaque payload plus the
// time it was written.
type Document struct {
	Payload     []byte
	LastUpdated time.Time
}

// Store is the durable key/value contract the repository needs: read one
// document by fixed id with its timestamp, and overwrite one document by
// fixed id. Nothing else about the backing technology is assumed.
type Store interface {
	Get(ctx context.Context, id string) (*Document, error)
	Put(ctx context.Context, id string, doc Document) error
	Ping(ctx context.Context) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open creates the store for backend. path is a directory for badger and a
// file for sqlite; memory ignores it.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendBadger:
		s, err := OpenBadger(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown summary backend %q", backend)
	}
}
