// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/spacedeck/internal/cache"
	"github.com/tomtom215/spacedeck/internal/logging"
	"github.com/tomtom215/spacedeck/internal/metrics"
	"github.com/tomtom215/spacedeck/internal/validation"
)

// AdminSecretHeader carries the admin secret.
const AdminSecretHeader = "X-Admin-Secret"

// AdminResponse is the body of every admin endpoint: {"ok":true} or
// {"ok":false} plus optional detail.
type AdminResponse struct {
	OK      bool                        `json:"ok"`
	Error   string                      `json:"error,omitempty"`
	Cleared *int                        `json:"cleared,omitempty"`
	Metrics map[string]metrics.Snapshot `json:"metrics,omitempty"`
	Cache   *cache.Stats                `json:"cache,omitempty"`
}

// AdminAuth checks the admin secret header.
type AdminAuth struct {
	secret [sha256.Size]byte
	hasKey bool
	hash   []byte
}

// NewAdminAuth creates an AdminAuth. hash, a bcrypt hash, takes precedence
// over secret. With both empty every check fails.
func NewAdminAuth(secret, hash string) *AdminAuth {
	a := &AdminAuth{}
	if hash != "" {
		a.hash = []byte(hash)
		return a
	}
	if secret != "" {
		a.secret = sha256.Sum256([]byte(secret))
		a.hasKey = true
	}
	return a
}

// Enabled reports whether any secret is configured.
func (a *AdminAuth) Enabled() bool {
	return a.hasKey || len(a.hash) > 0
}

// Authorized reports whether provided matches the configured secret.
// Both sides are hashed before the constant-time compare so that the
// secret's length does not affect timing.
func (a *AdminAuth) Authorized(provided string) bool {
	if provided == "" {
		return false
	}
	if len(a.hash) > 0 {
		return bcrypt.CompareHashAndPassword(a.hash, []byte(provided)) == nil
	}
	if !a.hasKey {
		return false
	}
	sum := sha256.Sum256([]byte(provided))
	return subtle.ConstantTimeCompare(sum[:], a.secret[:]) == 1
}

// RequireAdmin rejects requests without a valid X-Admin-Secret with 401.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.admin.Authorized(r.Header.Get(AdminSecretHeader)) {
			logging.CtxWarn(r.Context()).Str("path", r.URL.Path).Bool("admin_enabled", h.admin.Enabled()).Msg("Rejected admin request")
			writeJSON(w, http.StatusUnauthorized, AdminResponse{OK: false, Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// adminAction runs fn and writes its response. A panic in fn becomes
// {"ok":false} with 500.
func adminAction(w http.ResponseWriter, r *http.Request, action string, fn func() AdminResponse) {
	resp, err := runAdmin(fn)
	if err != nil {
		logging.CtxErr(r.Context(), err).Str("action", action).Msg("Admin action failed")
		writeJSON(w, http.StatusInternalServerError, AdminResponse{OK: false, Error: action + " failed"})
		return
	}
	logging.Ctx(r.Context()).Info().Str("action", action).Msg("Admin action completed")
	writeJSON(w, http.StatusOK, resp)
}

func runAdmin(fn func() AdminResponse) (resp AdminResponse, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn(), nil
}

// AdminMetrics returns the recorder snapshot and cache statistics.
func (h *Handler) AdminMetrics(w http.ResponseWriter, r *http.Request) {
	adminAction(w, r, "read metrics", func() AdminResponse {
		stats := h.cache.Stats()
		return AdminResponse{OK: true, Metrics: h.recorder.GetMetrics(), Cache: &stats}
	})
}

// ResetMetrics clears the in-process fetch and cache metrics.
func (h *Handler) ResetMetrics(w http.ResponseWriter, r *http.Request) {
	adminAction(w, r, "reset metrics", func() AdminResponse {
		h.recorder.ResetMetrics()
		return AdminResponse{OK: true}
	})
}

// ClearCache removes one key (?key=) or every entry from the TTL cache.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	req := ClearCacheRequest{Key: r.URL.Query().Get("key")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeJSON(w, http.StatusBadRequest, AdminResponse{OK: false, Error: verr.Error()})
		return
	}

	adminAction(w, r, "clear cache", func() AdminResponse {
		var n int
		if req.Key == "" {
			n = h.cache.Clear()
		} else {
			n = h.cache.Clear(req.Key)
		}
		return AdminResponse{OK: true, Cleared: &n}
	})
}
