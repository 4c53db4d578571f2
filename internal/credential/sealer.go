// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credential

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// SEALER
// =============================================================================

const (
	// SealedPrefix marks a sealed value in the store.
	SealedPrefix = "ENC:"

	saltSize   = 16
	keySize    = 32
	iterations = 600000
)

var (
	// ErrInvalidSealed means a stored value is not in the sealed format.
	ErrInvalidSealed = errors.New("invalid sealed value")

	// ErrWrongPassphrase means authentication of a sealed value failed.
	ErrWrongPassphrase = errors.New("credential could not be unsealed: wrong passphrase")
)

// Sealer encrypts tokens with AES-256-GCM. Each sealed value carries its own
// random salt, so the key is derived per value.
type Sealer struct {
	passphrase []byte
	iterations int
}

// NewSealer returns a Sealer for passphrase.
func NewSealer(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, errors.New("empty passphrase")
	}
	return &Sealer{passphrase: []byte(passphrase), iterations: iterations}, nil
}

func (s *Sealer) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(s.passphrase, salt, s.iterations, keySize, sha256.New)
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext into "ENC:" + base64(salt || nonce || ciphertext).
func (s *Sealer) Seal(plaintext string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	gcm, err := s.aead(salt)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := append(salt, nonce...)
	out = gcm.Seal(out, nonce, []byte(plaintext), nil)
	return SealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	encoded, ok := strings.CutPrefix(sealed, SealedPrefix)
	if !ok {
		return "", ErrInvalidSealed
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSealed, err)
	}
	if len(data) < saltSize {
		return "", ErrInvalidSealed
	}

	gcm, err := s.aead(data[:saltSize])
	if err != nil {
		return "", err
	}
	rest := data[saltSize:]
	if len(rest) < gcm.NonceSize()+gcm.Overhead() {
		return "", ErrInvalidSealed
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrWrongPassphrase
	}
	return string(plaintext), nil
}

// IsSealed reports whether a stored value was produced by Seal.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, SealedPrefix)
}
