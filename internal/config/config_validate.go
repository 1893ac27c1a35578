// Spacedeck - Space Data Aggregation with Resilient Caching
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/spacedeck

package config

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/spacedeck/internal/validation"
)

// minAdminSecretLength applies in production only.
const minAdminSecretLength = 16

// Validate checks struct tags first, then cross-field rules.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}
	if err := c.validateSummary(); err != nil {
		return err
	}
	return c.validateSecurity()
}

func (c *Config) validateSummary() error {
	if c.Summary.Backend != "memory" && c.Summary.Path == "" {
		return fmt.Errorf("SUMMARY_PATH is required when SUMMARY_BACKEND=%s", c.Summary.Backend)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if h := c.Security.AdminSecretHash; h != "" {
		if _, err := bcrypt.Cost([]byte(h)); err != nil {
			return fmt.Errorf("ADMIN_SECRET_HASH is not a bcrypt hash: %w", err)
		}
	}
	if !c.IsProduction() {
		return nil
	}
	if c.Security.AdminSecretHash == "" && len(c.Security.AdminSecret) < minAdminSecretLength {
		return fmt.Errorf("ADMIN_SECRET must be at least %d characters in production (or set ADMIN_SECRET_HASH)", minAdminSecretLength)
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must not contain '*' in production")
		}
	}
	return nil
}
