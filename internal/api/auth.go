// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
)

// =============================================================================
// VERIFICATION
// =============================================================================

// VerifyToken asks the backend whether token is still valid.
func (c *Client) VerifyToken(ctx context.Context, token string) error {
	return c.do(ctx, call{
		method:  http.MethodGet,
		base:    c.config.BaseURL,
		route:   "verify-token",
		path:    pathf("/verify-token", token),
		timeout: c.config.Timeout,
	}, nil)
}

// VerifyChat asks the backend whether the chat identifier refers to a
// resource that exists.
func (c *Client) VerifyChat(ctx context.Context, id string) error {
	return c.do(ctx, call{
		method:  http.MethodGet,
		base:    c.config.BaseURL,
		route:   "verify-chat",
		path:    pathf("/verify-chat", id),
		timeout: c.config.Timeout,
	}, nil)
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// Login exchanges a username and password for an access token.
// Rejected credentials return an ErrTypeUnauthorized error.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var out tokenResponse
	err := c.do(ctx, call{
		method:  http.MethodPost,
		base:    c.config.BaseURL,
		route:   "token",
		path:    "/token",
		body:    creds,
		timeout: c.config.Timeout,
	}, &out)
	if err != nil {
		var ce *ClientError
		if errors.As(err, &ce) && ce.Status >= 400 && ce.Status < 500 {
			return "", &ClientError{Type: ErrTypeUnauthorized, Status: ce.Status, Message: "Invalid username or password"}
		}
		return "", err
	}
	if out.AccessToken == "" {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "token: response has no access_token"}
	}
	return out.AccessToken, nil
}

// Register creates an account. The backend's detail message is returned
// as the error message on failure.
func (c *Client) Register(ctx context.Context, creds Credentials) error {
	return c.do(ctx, call{
		method:  http.MethodPost,
		base:    c.config.BaseURL,
		route:   "register",
		path:    "/register",
		body:    registerRequest{Credentials: creds},
		timeout: c.config.Timeout,
	}, nil)
}
