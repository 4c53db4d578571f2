// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the dsatutor command line.
//
// Running dsatutor with no subcommand starts the terminal UI. The
// subcommands cover the same flows without it:
//
//	dsatutor login | register | logout | status
//	dsatutor new --topic Stack --subtopic "Basic Operations"
//	dsatutor history [delete ID]
//	dsatutor chat ID            interactive line-mode chat
//	dsatutor ask ID "question"  one turn, reply on stdout
//	dsatutor export ID          write the transcript to a file
//
// Global flags: --config, --verbose, --json, --no-color.
package cli
