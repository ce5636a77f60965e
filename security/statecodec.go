package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Decode failure modes. Callers must distinguish "no state arrived" from
// "state arrived but failed verification": the former is a malformed callback,
// the latter a possible forgery.
var (
	// ErrEmptyState is returned when there is no state to decode.
	ErrEmptyState = errors.New("no state")

	// ErrInvalidState is returned when a state value fails to decode or
	// verify. Modified input never yields corrupted data, only this error.
	ErrInvalidState = errors.New("invalid state")
)

// StateCodec seals the property bag carried through the provider as the OAuth
// state parameter. It uses AES-256-GCM, so any modification of the encoded
// string fails authentication on decode. The key is derived per purpose
// (provider name) from the master key material with HKDF-SHA256, so two
// providers sharing key material cannot decode each other's state.
type StateCodec struct {
	aead cipher.AEAD
}

// NewStateCodec creates a codec from 32-byte master key material, bound to a
// purpose string (typically the provider name).
func NewStateCodec(key []byte, purpose string) (*StateCodec, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("state key must be exactly 32 bytes for AES-256, got %d", len(key))
	}
	if purpose == "" {
		return nil, fmt.Errorf("codec purpose must not be empty")
	}

	derived := make([]byte, 32)
	kdf := hkdf.New(sha256.New, key, nil, []byte("extlogin/"+purpose+"/v1"))
	if _, err := io.ReadFull(kdf, derived); err != nil {
		return nil, fmt.Errorf("failed to derive codec key: %w", err)
	}

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &StateCodec{aead: gcm}, nil
}

// Encode seals plaintext into a URL-safe string. The output uses unpadded
// base64url so it survives a query-string round trip unchanged.
func (c *StateCodec) Encode(plaintext []byte) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal encrypts plaintext and prepends the nonce by using the nonce
	// slice as destination: [nonce][ciphertext].
	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode is the exact left inverse of Encode for anything Encode produced.
// Empty input returns ErrEmptyState; anything that fails base64 decoding or
// GCM authentication returns ErrInvalidState.
func (c *StateCodec) Decode(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, ErrEmptyState
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidState
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return nil, ErrInvalidState
	}

	plaintext, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return nil, ErrInvalidState
	}

	return plaintext, nil
}

// GenerateStateKey generates new 32-byte master key material for a StateCodec.
func GenerateStateKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// StateKeyFromBase64 decodes base64-encoded state key material.
func StateKeyFromBase64(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// StateKeyToBase64 encodes state key material to base64.
func StateKeyToBase64(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}
