// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

// Package fetch wraps a single upstream HTTP call with a per-attempt
// timeout, bounded retries with exponential backoff, and metric recording.
//
// Attempt n (starting at 0) that fails is followed by a wait of
// Backoff * 2^n before the next one, so the defaults (2 retries, 300ms)
// give waits of 300ms and 600ms. Worst case latency is therefore the sum
// of every attempt's timeout plus every wait.
//
//	type apod struct{ Title string `json:"title"` }
//	v, err := fetch.Fetch[apod](ctx, client, url, fetch.Options{MetricName: "apod"})
//	if errors.Is(err, fetch.ErrTimeout) { ... }
//
// Bodies are decoded into T as JSON whatever the content type says. When T
// is string or []byte the raw body is returned instead.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/spacedeck/internal/logging"
	"github.com/tomtom215/spacedeck/internal/metrics"
)

const (
	DefaultTimeout = 5 * time.Second
	DefaultRetries = 2
	DefaultBackoff = 300 * time.Millisecond

	maxBodySize      = 32 << 20
	maxErrorBodySize = 512
)

// Options configures one call. Zero fields take the client defaults.
type Options struct {
	Timeout time.Duration

	// Retries is the number of attempts after the first. nil means the
	// client default; use Retries(0) to disable retrying.
	Retries *int

	// Backoff is the base wait before the first retry.
	Backoff time.Duration

	// MetricName enables recording one sample per attempt.
	MetricName string

	Method string
	Header http.Header
	Body   []byte
}

// Retries returns a pointer for Options.Retries.
func Retries(n int) *int {
	return &n
}

// Client executes resilient fetches.
type Client struct {
	http     *http.Client
	recorder *metrics.Recorder
	defaults Options
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDefaults sets per-client defaults for Timeout, Retries and Backoff.
func WithDefaults(o Options) ClientOption {
	return func(c *Client) {
		if o.Timeout > 0 {
			c.defaults.Timeout = o.Timeout
		}
		if o.Retries != nil {
			c.defaults.Retries = Retries(*o.Retries)
		}
		if o.Backoff > 0 {
			c.defaults.Backoff = o.Backoff
		}
	}
}

// NewClient creates a Client. A nil httpClient uses a fresh http.Client
// without its own timeout; the per-attempt context is the bound.
func NewClient(httpClient *http.Client, rec *metrics.Recorder, opts ...ClientOption) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &Client{
		http:     httpClient,
		recorder: rec,
		defaults: Options{
			Timeout: DefaultTimeout,
			Retries: Retries(DefaultRetries),
			Backoff: DefaultBackoff,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs the call described by opts and returns the decoded body.
func Fetch[T any](ctx context.Context, c *Client, url string, opts Options) (T, error) {
	var out T
	_, err := c.Do(ctx, url, opts, func(_ *http.Response, raw []byte) error {
		var v T
		if err := decode(raw, &v); err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// Text performs the call and returns the body as a string.
func (c *Client) Text(ctx context.Context, url string, opts Options) (string, error) {
	return Fetch[string](ctx, c, url, opts)
}

// Bytes performs the call and returns the raw body without decoding.
func (c *Client) Bytes(ctx context.Context, url string, opts Options) ([]byte, error) {
	return c.Do(ctx, url, opts, nil)
}

// Do runs the retry loop. handle is called with every 2xx response body and
// its error counts as a failed attempt, so a truncated or malformed payload
// is retried like a network error.
func (c *Client) Do(ctx context.Context, url string, opts Options, handle func(*http.Response, []byte) error) ([]byte, error) {
	o := c.resolve(opts)
	retries := *o.Retries

	var last *Error
	for attempt := 0; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, c.finalError(url, attempt, last, err)
		}

		start := time.Now()
		raw, statusErr := c.attempt(ctx, url, o, handle)
		elapsed := time.Since(start)

		if statusErr == nil {
			c.record(o.MetricName, elapsed, true, false)
			return raw, nil
		}

		statusErr.URL = url
		statusErr.Attempts = attempt + 1
		last = statusErr
		c.record(o.MetricName, elapsed, false, statusErr.Timeout)

		if attempt == retries {
			break
		}

		delay := o.Backoff * time.Duration(1<<uint(attempt))
		logging.CtxWarn(ctx).
			Err(statusErr).
			Str("url", url).
			Int("attempt", attempt+1).
			Int("max_attempts", retries+1).
			Dur("delay", delay).
			Msg("Retry attempt")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, c.finalError(url, attempt+1, last, ctx.Err())
		}
	}
	return nil, last
}

// attempt issues one request under its own timeout.
func (c *Client) attempt(ctx context.Context, url string, o Options, handle func(*http.Response, []byte) error) ([]byte, *Error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	var reqBody io.Reader = http.NoBody
	if len(o.Body) > 0 {
		reqBody = bytes.NewReader(o.Body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, o.Method, url, reqBody)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("create request failed: %w", err)}
	}
	for k, vs := range o.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Err: err, Timeout: isTimeout(ctx, attemptCtx, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("read body failed: %w", err), Timeout: isTimeout(ctx, attemptCtx, err)}
	}
	if handle != nil {
		if err := handle(resp, raw); err != nil {
			return nil, &Error{Err: err}
		}
	}
	return raw, nil
}

func (c *Client) resolve(o Options) Options {
	if o.Timeout <= 0 {
		o.Timeout = c.defaults.Timeout
	}
	if o.Retries == nil {
		o.Retries = c.defaults.Retries
	}
	if *o.Retries < 0 {
		o.Retries = Retries(0)
	}
	if o.Backoff <= 0 {
		o.Backoff = c.defaults.Backoff
	}
	if o.Method == "" {
		o.Method = http.MethodGet
	}
	return o
}

func (c *Client) record(name string, d time.Duration, success, timeout bool) {
	if name == "" {
		return
	}
	c.recorder.RecordFetchMetric(name, d, success, timeout)
}

// finalError reports a caller cancellation, keeping the last attempt's
// status if there was one.
func (c *Client) finalError(url string, attempts int, last *Error, cause error) *Error {
	e := &Error{URL: url, Attempts: attempts, Err: cause}
	if last != nil {
		e.StatusCode = last.StatusCode
		e.Body = last.Body
	}
	e.Timeout = errors.Is(cause, context.DeadlineExceeded)
	return e
}

// isTimeout is true when the attempt's own deadline fired, or the caller's
// deadline did.
func isTimeout(parent, attemptCtx context.Context, err error) bool {
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || errors.Is(parent.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

// decode treats every 2xx body as JSON unless T is string or []byte.
// Upstreams that label JSON as text/plain are accepted.
func decode[T any](raw []byte, out *T) error {
	switch p := any(out).(type) {
	case *string:
		*p = string(raw)
		return nil
	case *[]byte:
		*p = raw
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
