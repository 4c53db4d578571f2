// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

// =============================================================================
// STATES
// =============================================================================

// State is a gate state for one run.
type State int

const (
	StateInit State = iota
	StateTokenChecking
	StateTokenValid
	StateResourceChecking
	StateResourceValid
	StateTokenInvalid
	StateResourceInvalid
	StateNoResource
)

var stateNames = [...]string{
	StateInit:             "Init",
	StateTokenChecking:    "TokenChecking",
	StateTokenValid:       "TokenValid",
	StateResourceChecking: "ResourceChecking",
	StateResourceValid:    "ResourceValid",
	StateTokenInvalid:     "TokenInvalid",
	StateResourceInvalid:  "ResourceInvalid",
	StateNoResource:       "NoResource",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Terminal reports whether no further event is accepted in s.
func (s State) Terminal() bool {
	switch s {
	case StateResourceValid, StateTokenInvalid, StateResourceInvalid, StateNoResource:
		return true
	default:
		return false
	}
}

// =============================================================================
// EVENTS AND EFFECTS
// =============================================================================

// Event is an input to the gate.
type Event int

const (
	EventCredentialAbsent Event = iota
	EventCredentialPresent
	EventTokenAccepted
	EventTokenRejected
	EventNoRouteID
	EventRouteID
	EventResourceAccepted
	EventResourceRejected
)

var eventNames = [...]string{
	EventCredentialAbsent:  "CredentialAbsent",
	EventCredentialPresent: "CredentialPresent",
	EventTokenAccepted:     "TokenAccepted",
	EventTokenRejected:     "TokenRejected",
	EventNoRouteID:         "NoRouteID",
	EventRouteID:           "RouteID",
	EventResourceAccepted:  "ResourceAccepted",
	EventResourceRejected:  "ResourceRejected",
}

func (e Event) String() string {
	if e >= 0 && int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "Unknown"
}

// Effect is the action the driver performs after a transition.
type Effect int

const (
	EffectNone Effect = iota
	EffectVerifyToken
	EffectCheckRoute
	EffectVerifyResource
	EffectPass
	EffectRedirectAuth
	EffectClearAndRedirectAuth
	EffectRedirectHome
)

// Route names a screen the gate may send the user to.
type Route string

const (
	RouteAuth Route = "auth"
	RouteHome Route = "home"
)

// =============================================================================
// TRANSITIONS
// =============================================================================

type transition struct {
	from  State
	event Event
}

type result struct {
	to     State
	effect Effect
}

var table = map[transition]result{
	{StateInit, EventCredentialAbsent}:             {StateTokenInvalid, EffectRedirectAuth},
	{StateInit, EventCredentialPresent}:            {StateTokenChecking, EffectVerifyToken},
	{StateTokenChecking, EventTokenAccepted}:       {StateTokenValid, EffectCheckRoute},
	{StateTokenChecking, EventTokenRejected}:       {StateTokenInvalid, EffectClearAndRedirectAuth},
	{StateTokenValid, EventNoRouteID}:              {StateNoResource, EffectRedirectHome},
	{StateTokenValid, EventRouteID}:                {StateResourceChecking, EffectVerifyResource},
	{StateResourceChecking, EventResourceAccepted}: {StateResourceValid, EffectPass},
	{StateResourceChecking, EventResourceRejected}: {StateResourceInvalid, EffectClearAndRedirectAuth},
}

// Next returns the state after applying e in s and the effect the driver
// must perform. Events that do not apply in s leave it unchanged with
// EffectNone.
func Next(s State, e Event) (State, Effect) {
	if r, ok := table[transition{s, e}]; ok {
		return r.to, r.effect
	}
	return s, EffectNone
}
