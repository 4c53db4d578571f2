// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Accessor reads and writes the access token. It holds no copy of the
// token; every call goes to the Store so changes made by other processes are
// seen immediately.
type Accessor struct {
	store  Store
	sealer *Sealer
}

// NewAccessor wraps store. A nil sealer stores the token as plain text.
func NewAccessor(store Store, sealer *Sealer) *Accessor {
	return &Accessor{store: store, sealer: sealer}
}

// Token returns the stored token, or ErrNoCredential.
func (a *Accessor) Token(ctx context.Context) (string, error) {
	value, err := a.store.Get(ctx, Key)
	if errors.Is(err, ErrNotFound) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", err
	}

	if IsSealed(value) {
		if a.sealer == nil {
			return "", fmt.Errorf("credential is sealed and no passphrase is configured: %w", ErrWrongPassphrase)
		}
		value, err = a.sealer.Open(value)
		if err != nil {
			return "", err
		}
	}

	if strings.TrimSpace(value) == "" {
		return "", ErrNoCredential
	}
	return value, nil
}

// Save stores token, sealing it when a Sealer is configured.
func (a *Accessor) Save(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("refusing to store an empty token")
	}
	value := token
	if a.sealer != nil {
		sealed, err := a.sealer.Seal(token)
		if err != nil {
			return err
		}
		value = sealed
	}
	return a.store.Set(ctx, Key, value)
}

// Clear removes the stored token. Clearing an absent token succeeds.
func (a *Accessor) Clear(ctx context.Context) error {
	return a.store.Delete(ctx, Key)
}

// Present reports whether any token is stored, without unsealing it.
func (a *Accessor) Present(ctx context.Context) bool {
	value, err := a.store.Get(ctx, Key)
	return err == nil && strings.TrimSpace(value) != ""
}
