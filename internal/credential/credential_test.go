// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credential

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// STORE TESTS
// =============================================================================

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "credential.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStores(t *testing.T) {
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": openTestStore(t),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx, "k", "v1"))
			require.NoError(t, store.Set(ctx, "k", "v2"))
			got, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v2", got)

			require.NoError(t, store.Delete(ctx, "k"))
			require.NoError(t, store.Delete(ctx, "k"), "deleting an absent key succeeds")
			_, err = store.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLiteStore_SharedBetweenHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.db")
	ctx := context.Background()

	a, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer a.Close()
	b, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Set(ctx, Key, "tok"))
	got, err := b.Get(ctx, Key)
	require.NoError(t, err)
	assert.Equal(t, "tok", got)

	require.NoError(t, b.Delete(ctx, Key))
	_, err = a.Get(ctx, Key)
	assert.ErrorIs(t, err, ErrNotFound)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

// =============================================================================
// ACCESSOR TESTS
// =============================================================================

func TestAccessor_Plain(t *testing.T) {
	ctx := context.Background()
	acc := NewAccessor(NewMemoryStore(), nil)

	_, err := acc.Token(ctx)
	assert.ErrorIs(t, err, ErrNoCredential)
	assert.False(t, acc.Present(ctx))

	require.NoError(t, acc.Save(ctx, "abc"))
	tok, err := acc.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)
	assert.True(t, acc.Present(ctx))

	require.NoError(t, acc.Clear(ctx))
	_, err = acc.Token(ctx)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestAccessor_RejectsEmpty(t *testing.T) {
	acc := NewAccessor(NewMemoryStore(), nil)
	assert.Error(t, acc.Save(context.Background(), "  "))
}

func TestAccessor_BlankStoredValueIsAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, Key, ""))

	_, err := NewAccessor(store, nil).Token(ctx)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestAccessor_Sealed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sealer := fastSealer(t, "correct horse")
	acc := NewAccessor(store, sealer)
	require.NoError(t, acc.Save(ctx, "secret-token"))

	raw, err := store.Get(ctx, Key)
	require.NoError(t, err)
	assert.True(t, IsSealed(raw))
	assert.NotContains(t, raw, "secret-token")

	tok, err := acc.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", tok)

	_, err = NewAccessor(store, fastSealer(t, "wrong")).Token(ctx)
	assert.ErrorIs(t, err, ErrWrongPassphrase)

	_, err = NewAccessor(store, nil).Token(ctx)
	assert.ErrorIs(t, err, ErrWrongPassphrase)
}

// =============================================================================
// SEALER TESTS
// =============================================================================

// fastSealer lowers the PBKDF2 cost so tests stay quick.
func fastSealer(t *testing.T, passphrase string) *Sealer {
	t.Helper()
	s, err := NewSealer(passphrase)
	require.NoError(t, err)
	s.iterations = 1000
	return s
}

func TestSealer_FreshSaltPerSeal(t *testing.T) {
	s := fastSealer(t, "pw")
	a, err := s.Seal("same")
	require.NoError(t, err)
	b, err := s.Seal("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSealer_OpenInvalid(t *testing.T) {
	s := fastSealer(t, "pw")
	for _, in := range []string{"plain", "ENC:!!!", "ENC:AAAA"} {
		_, err := s.Open(in)
		assert.ErrorIs(t, err, ErrInvalidSealed, in)
	}
}

func TestNewSealer_EmptyPassphrase(t *testing.T) {
	_, err := NewSealer("")
	assert.Error(t, err)
}

// =============================================================================
// CLAIMS TESTS
// =============================================================================

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signedToken(t, jwt.RegisteredClaims{
		Subject:   "ada",
		ExpiresAt: jwt.NewNumericDate(exp),
	})

	c, err := Inspect(tok)
	require.NoError(t, err)
	assert.Equal(t, "ada", c.Subject)
	assert.True(t, c.ExpiresAt.Equal(exp))
	assert.False(t, c.Expired(time.Now()))
	assert.True(t, c.Expired(exp.Add(time.Minute)))
}

func TestInspect_NotJWT(t *testing.T) {
	_, err := Inspect("opaque-token")
	assert.Error(t, err)
}

func TestUserID(t *testing.T) {
	assert.Equal(t, "ada", UserID(signedToken(t, jwt.RegisteredClaims{Subject: "ada"}), "fallback"))
	assert.Equal(t, "fallback", UserID(signedToken(t, jwt.RegisteredClaims{}), "fallback"))
	assert.Equal(t, "fallback", UserID("opaque", "fallback"))
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcher_ReportsExternalChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credential.db")

	writer, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer writer.Close()

	w, err := NewWatcher(path, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))

	require.NoError(t, writer.Set(context.Background(), Key, "tok"))

	select {
	case <-w.Changes():
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_CloseClosesChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.db")
	w, err := NewWatcher(path, 10*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	_, ok := <-w.Changes()
	assert.False(t, ok)
	assert.NoError(t, w.Close(), "second close is a no-op")
}
