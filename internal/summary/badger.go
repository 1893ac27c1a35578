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

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const badgerKeyPrefix = "summary:"

// badgerRecord is the JSON value stored under summary:<id>.
type badgerRecord struct {
	Payload     json.RawMessage `json:"payload"`
	LastUpdated int64           `json:"lastUpdated"` // unix millis
}

// BadgerStore keeps summaries in an embedded BadgerDB.
type BadgerStore struct {
	db    *badger.DB
	owned bool
}

// OpenBadger opens (or creates) a BadgerDB at dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("badger directory is required")
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db, owned: true}, nil
}

// NewBadgerStore wraps an already open DB. Close leaves it open.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Get reads the document for id.
func (s *BadgerStore) Get(ctx context.Context, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec badgerRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get summary: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}

	return &Document{
		Payload:     []byte(rec.Payload),
		LastUpdated: time.UnixMilli(rec.LastUpdated).UTC(),
	}, nil
}

// Put overwrites the document for id.
func (s *BadgerStore) Put(ctx context.Context, id string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(badgerRecord{
		Payload:     json.RawMessage(doc.Payload),
		LastUpdated: doc.LastUpdated.UTC().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKeyPrefix+id), data)
	})
}

// Ping fails once the DB is closed.
func (s *BadgerStore) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return fmt.Errorf("badger is closed")
	}
	return ctx.Err()
}

// Close closes the DB if this store opened it.
func (s *BadgerStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
