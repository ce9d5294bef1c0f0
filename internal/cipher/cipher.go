// Package cipher provides reversible symmetric encryption for stored
// secret passwords.
package cipher

import (
	gocipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"drivenpass/internal/apperr"
)

var (
	errMissingKey = errors.New("missing cipher secret")
	errShortInput = errors.New("ciphertext too short")
)

// Cipher seals values with XChaCha20-Poly1305 under a key derived from a
// configured secret. Output is base64(nonce || sealed).
type Cipher struct {
	aead gocipher.AEAD
}

func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, apperr.Cipher(errMissingKey)
	}
	key := sha256.Sum256([]byte(secret))
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, apperr.Cipher(fmt.Errorf("init aead: %w", err))
	}
	return &Cipher{aead: aead}, nil
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", apperr.Cipher(fmt.Errorf("read nonce: %w", err))
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", apperr.Cipher(fmt.Errorf("decode: %w", err))
	}
	if len(raw) < c.aead.NonceSize()+c.aead.Overhead() {
		return "", apperr.Cipher(errShortInput)
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", apperr.Cipher(fmt.Errorf("open: %w", err))
	}
	return string(plain), nil
}
