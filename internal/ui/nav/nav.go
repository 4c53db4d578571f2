// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package nav defines the routes of the TUI and the messages screens use to
// move between them.
package nav

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Route is a screen of the application.
type Route int

const (
	RouteAuth Route = iota
	RouteWizard
	RouteHistory
	RouteChat
)

func (r Route) String() string {
	switch r {
	case RouteAuth:
		return "auth"
	case RouteWizard:
		return "wizard"
	case RouteHistory:
		return "history"
	case RouteChat:
		return "chat"
	default:
		return "unknown"
	}
}

// GoMsg asks the router to show a route. ID is the route-scoped
// preference identifier and is only used by RouteChat.
type GoMsg struct {
	To Route
	ID string
}

// LogoutMsg asks the router to clear the credential and show RouteAuth.
type LogoutMsg struct{}

// Go returns a command that navigates to a route.
func Go(to Route, id string) tea.Cmd {
	return func() tea.Msg { return GoMsg{To: to, ID: id} }
}

// Logout returns a command that logs the user out.
func Logout() tea.Cmd {
	return func() tea.Msg { return LogoutMsg{} }
}
