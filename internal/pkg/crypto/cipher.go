package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

var ErrDecrypt = errors.New("failed to decrypt value")

// Cipher encrypts PII columns and QR payloads, and hashes values that must stay searchable.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
	Hash(text string) string
}

type aesCipher struct {
	aead    cipher.AEAD
	hashKey []byte
}

// NewCipher builds an AES-256-GCM cipher from the configured secret.
// Ciphertexts are base64url(nonce || sealed) so each value carries its own nonce.
func NewCipher(secret string) (Cipher, error) {
	if secret == "" {
		return nil, fmt.Errorf("crypto key is empty")
	}

	key := NormalizeKey([]byte(secret), KeySize)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create block cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}

	hashKey := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte("lookup-hash")), hashKey); err != nil {
		return nil, fmt.Errorf("failed to derive lookup key: %w", err)
	}

	return &aesCipher{aead: aead, hashKey: hashKey}, nil
}

// NormalizeKey returns a key of exactly size bytes.
// Shorter input is stretched through SHA-256, longer input is truncated.
func NormalizeKey(raw []byte, size int) []byte {
	switch {
	case len(raw) == size:
		out := make([]byte, size)
		copy(out, raw)
		return out
	case len(raw) > size:
		out := make([]byte, size)
		copy(out, raw[:size])
		return out
	default:
		sum := sha256.Sum256(raw)
		out := make([]byte, size)
		copy(out, sum[:])
		return out
	}
}

func (c *aesCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *aesCipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecrypt
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize+c.aead.Overhead() {
		return "", ErrDecrypt
	}

	plain, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", ErrDecrypt
	}

	return string(plain), nil
}

// Hash returns a hex HMAC-SHA256 digest used for equality lookups on encrypted columns.
func (c *aesCipher) Hash(text string) string {
	mac := hmac.New(sha256.New, c.hashKey)
	mac.Write([]byte(text))
	return hex.EncodeToString(mac.Sum(nil))
}

// TryDecrypt is for best-effort call sites: a failed decrypt is reported as "no result".
func TryDecrypt(c Cipher, ciphertext string) (string, bool) {
	plain, err := c.Decrypt(ciphertext)
	if err != nil || plain == "" {
		return "", false
	}
	return plain, true
}
