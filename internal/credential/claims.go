// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credential

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the displayable subset of an access token. The signature is not
// checked; the backend remains the authority on validity.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Expired reports whether the token carries an expiry in the past.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Inspect decodes the claims of a JWT without verifying it. Tokens that are
// not JWTs return an error.
func Inspect(token string) (Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, &jwt.RegisteredClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("token is not a JWT: %w", err)
	}
	rc, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return Claims{}, fmt.Errorf("unexpected claims type %T", parsed.Claims)
	}

	var c Claims
	c.Subject = rc.Subject
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	return c, nil
}

// UserID returns the subject of token, or fallback when the token has none.
func UserID(token, fallback string) string {
	if c, err := Inspect(token); err == nil && c.Subject != "" {
		return c.Subject
	}
	return fallback
}
