// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package fetch

import (
	"errors"
	"fmt"
)

// ErrTimeout matches (via errors.Is) any *Error whose last attempt was cut
// off by the per-attempt timeout.
var ErrTimeout = errors.New("upstream request timed out")

// Error is the only error type Fetch returns. It carries either an HTTP
// status code or a network/timeout indication.
type Error struct {
	URL        string
	Attempts   int
	StatusCode int // 0 when no response was received
	Timeout    bool
	Body       string // truncated body of a non-2xx response
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("fetch %s: timed out after %d attempt(s)", e.URL, e.Attempts)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: status %d after %d attempt(s): %s", e.URL, e.StatusCode, e.Attempts, e.Body)
	default:
		return fmt.Sprintf("fetch %s: %v (after %d attempt(s))", e.URL, e.Err, e.Attempts)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrTimeout) succeed for timeouts.
func (e *Error) Is(target error) bool {
	return target == ErrTimeout && e.Timeout
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}
