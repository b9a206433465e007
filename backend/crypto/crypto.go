package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

// Stored ciphertexts are prefixed so rows written before encryption was
// enabled stay readable.
const prefix = "enc:"

var ErrMalformed = errors.New("malformed ciphertext")

// Box encrypts and decrypts log message bodies with AES-256-GCM.
// The key is derived from the configured secret via SHA-256.
type Box struct {
	aead cipher.AEAD
}

func New(secret string) (*Box, error) {
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Box{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh nonce and returns the prefixed
// base64 form stored at rest.
func (b *Box) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return prefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt undoes Encrypt. Values without the ciphertext prefix are
// returned unchanged.
func (b *Box) Decrypt(stored string) (string, error) {
	if !strings.HasPrefix(stored, prefix) {
		return stored, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, prefix))
	if err != nil {
		return "", ErrMalformed
	}
	ns := b.aead.NonceSize()
	if len(raw) < ns {
		return "", ErrMalformed
	}
	plaintext, err := b.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
