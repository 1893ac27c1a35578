// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newCapturingSlog(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { Init(DefaultConfig()) })
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	return NewSlogLogger(), &buf
}

func TestSlogHandler_Levels(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		want  string
	}{
		{"debug", slog.LevelDebug, `"level":"debug"`},
		{"info", slog.LevelInfo, `"level":"info"`},
		{"warn", slog.LevelWarn, `"level":"warn"`},
		{"error", slog.LevelError, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newCapturingSlog(t)
			logger.Log(context.Background(), tt.level, "service event")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected %s in output: %s", tt.want, buf.String())
			}
		})
	}
}

func TestSlogHandler_Attrs(t *testing.T) {
	logger, buf := newCapturingSlog(t)

	logger.With("supervisor", "api").Info("service restarted",
		"service", "http-server",
		"restarts", 3,
		"backoff", 2*time.Second,
		"failed", true,
	)

	out := buf.String()
	for _, want := range []string{
		`"supervisor":"api"`,
		`"service":"http-server"`,
		`"restarts":3`,
		`"failed":true`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output: %s", want, out)
		}
	}
}

func TestSlogHandler_Groups(t *testing.T) {
	logger, buf := newCapturingSlog(t)

	logger.WithGroup("tree").WithGroup("refresh").Info("event", "name", "warmer")
	if !strings.Contains(buf.String(), `"tree.refresh.name":"warmer"`) {
		t.Errorf("expected grouped key, got: %s", buf.String())
	}

	buf.Reset()
	logger.Info("event", slog.Group("http", slog.Int("status", 502)))
	if !strings.Contains(buf.String(), `"http.status":502`) {
		t.Errorf("expected inline group key, got: %s", buf.String())
	}
}

func TestSlogHandler_WithGroupEmpty(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler()
	if h.WithGroup("") != h {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.DebugLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
