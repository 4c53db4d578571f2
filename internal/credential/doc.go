// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package credential manages the locally stored access token.
//
// The token lives in a small key/value Store shared by every dsatutor process
// on the machine. An Accessor reads, writes and clears it under a single
// application key, optionally sealing it with a passphrase-derived key.
//
// # Key Types
//
//   - Store: key/value persistence (SQLiteStore on disk, MemoryStore in tests)
//   - Accessor: the token view over a Store
//   - Sealer: AES-256-GCM with a PBKDF2-SHA-256 derived key
//   - Claims: unverified JWT claims used for display and the user identifier
//
// # Watching
//
// Watch reports changes to the store file so a running UI notices a logout
// performed by another process.
package credential
