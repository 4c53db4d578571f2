// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries a per-call identifier for backend log correlation.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody caps how much of an error response is read for its detail.
const maxErrorBody = 4 << 10

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the tutoring client.
type ClientConfig struct {
	// BaseURL is the tutoring backend (default: http://127.0.0.1:8000)
	BaseURL string

	// PreferencesURL is the preference creation service (default: http://localhost:5000)
	PreferencesURL string

	// Timeout bounds verification and fetch calls (default: 15s)
	Timeout time.Duration

	// TurnTimeout bounds advance calls. Zero means no timeout.
	TurnTimeout time.Duration

	// RatePerSec and Burst shape outgoing requests. RatePerSec <= 0 disables
	// limiting.
	RatePerSec float64
	Burst      int

	// HTTPClient is used for every request (default: a new http.Client)
	HTTPClient *http.Client

	// Logger receives debug lines per request (default: no-op)
	Logger *zap.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        "http://127.0.0.1:8000",
		PreferencesURL: "http://localhost:5000",
		Timeout:        15 * time.Second,
		RatePerSec:     5,
		Burst:          10,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the tutoring backend and the preferences service.
//
// The Client is thread-safe for concurrent use.
//
// Example:
//
//	client := api.NewClient()
//	pref, err := client.GetPreference(ctx, id)
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with custom configuration. Zero
// values fall back to DefaultConfig.
func NewClientWithConfig(cfg *ClientConfig) *Client {
	defaults := DefaultConfig()
	if cfg == nil {
		cfg = defaults
	}
	c := *cfg

	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.PreferencesURL == "" {
		c.PreferencesURL = defaults.PreferencesURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	c.PreferencesURL = strings.TrimRight(c.PreferencesURL, "/")
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	if c.Burst <= 0 {
		c.Burst = defaults.Burst
	}

	limit := rate.Inf
	if c.RatePerSec > 0 {
		limit = rate.Limit(c.RatePerSec)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config:     c,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, c.Burst),
		logger:     logger.Named("api"),
	}
}

// BaseURL returns the tutoring backend URL in use.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// call describes one HTTP exchange.
type call struct {
	method string
	base   string
	// route is the logged name; paths can carry tokens so they are not logged.
	route   string
	path    string
	body    any
	timeout time.Duration
}

// pathf joins escaped segments onto a fixed prefix.
func pathf(prefix string, segments ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// do performs the call and decodes a 2xx JSON body into out when out is
// non-nil.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	if cl.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cl.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return classifyTransport(cl.route, err)
	}

	var body io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return &ClientError{Type: ErrTypeInvalidRequest, Message: "failed to marshal request", Cause: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, cl.base+cl.path, body)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidRequest, Message: "failed to create request", Cause: err}
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("route", cl.route),
			zap.String("request_id", requestID),
			zap.Error(err))
		return classifyTransport(cl.route, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request done",
		zap.String("route", cl.route),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(cl.route, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Status:  resp.StatusCode,
			Message: cl.route + ": failed to decode response",
			Cause:   err,
		}
	}
	return nil
}

// classifyTransport maps a failed round trip to a ClientError.
func classifyTransport(route string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: route + ": request timed out", Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: route + ": backend unreachable", Cause: err}
}

// statusError builds a ClientError from a non-2xx response, using the
// backend's {"detail": ...} message when present.
func statusError(route string, resp *http.Response) error {
	t := ErrTypeStatus
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		t = ErrTypeUnauthorized
	case http.StatusNotFound:
		t = ErrTypeNotFound
	}

	msg := route + ": " + http.StatusText(resp.StatusCode)
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var detail struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(raw, &detail) == nil && len(detail.Detail) > 0 {
		var s string
		if json.Unmarshal(detail.Detail, &s) == nil {
			msg = s
		} else {
			msg = route + ": " + string(detail.Detail)
		}
	}

	return &ClientError{Type: t, Status: resp.StatusCode, Message: msg}
}
