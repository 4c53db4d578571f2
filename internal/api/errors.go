// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "fmt"

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeUnauthorized
	ErrTypeNotFound
	ErrTypeStatus
	ErrTypeInvalidResponse
	ErrTypeInvalidRequest
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeUnauthorized:
		return "unauthorized"
	case ErrTypeNotFound:
		return "not_found"
	case ErrTypeStatus:
		return "status"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	case ErrTypeInvalidRequest:
		return "invalid_request"
	default:
		return "unknown"
	}
}

// ClientError represents an error from the tutoring client.
type ClientError struct {
	Type ErrorType
	// Status is the HTTP status code, or 0 when no response was received.
	Status  int
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches any ClientError of the same Type, so the sentinels below work
// with errors.Is regardless of message or status.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	return ok && t.Type == e.Type
}

// Sentinel errors for easy checking.
var (
	ErrConnection      = &ClientError{Type: ErrTypeConnection, Message: sentinelMessage(ErrTypeConnection)}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: sentinelMessage(ErrTypeTimeout)}
	ErrUnauthorized    = &ClientError{Type: ErrTypeUnauthorized, Message: sentinelMessage(ErrTypeUnauthorized)}
	ErrNotFound        = &ClientError{Type: ErrTypeNotFound, Message: sentinelMessage(ErrTypeNotFound)}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: sentinelMessage(ErrTypeInvalidResponse)}
)

func sentinelMessage(t ErrorType) string {
	switch t {
	case ErrTypeConnection:
		return "backend unreachable"
	case ErrTypeTimeout:
		return "request timed out"
	case ErrTypeUnauthorized:
		return "not authorized"
	case ErrTypeNotFound:
		return "not found"
	case ErrTypeInvalidResponse:
		return "invalid response"
	default:
		return ""
	}
}
