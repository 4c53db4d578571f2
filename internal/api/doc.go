// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the tutoring backend and the
// learning preferences service.
//
// # Key Types
//
//   - Client: thread-safe REST client covering every backend route
//   - ClientConfig: endpoints, timeouts and rate limits
//   - ClientError: typed error with ErrorType and HTTP status
//   - TurnRequest / TurnResponse: the advance call payloads
//
// # Errors
//
// Every method returns *ClientError on failure. Match categories with
// errors.Is against the sentinel values:
//
//	if errors.Is(err, api.ErrUnauthorized) {
//	    // token rejected
//	}
//
// # Usage
//
//	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: cfg.Backend.BaseURL})
//	if err := client.VerifyToken(ctx, token); err != nil {
//	    return err
//	}
package api
