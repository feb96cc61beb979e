package qrtoken

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/pkg/crypto"
)

// DefaultTTL is how long an issued QR token is accepted.
const DefaultTTL = 24 * time.Hour

const separator = "|"

var (
	ErrInvalidToken   = errors.New("invalid QR code")
	ErrMalformedToken = errors.New("malformed QR code")
	ErrExpiredToken   = errors.New("QR code has expired")
)

// Payload is the decrypted content of a QR identity token.
type Payload struct {
	Identifier     string
	IssuedAtMillis int64
}

func (p Payload) IssuedAt() time.Time {
	return time.UnixMilli(p.IssuedAtMillis)
}

// Codec turns a worker identifier into an opaque, time-limited QR string and back.
// Tokens are stateless: there is no server-side revocation.
type Codec struct {
	cipher crypto.Cipher
	ttl    time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

func NewCodec(cipher crypto.Cipher, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{
		cipher: cipher,
		ttl:    ttl,
		Now:    time.Now,
	}
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode produces the encrypted form of "identifier|issuedAtMillis".
func (c *Codec) Encode(identifier string, issuedAt time.Time) (string, error) {
	if identifier == "" {
		return "", fmt.Errorf("identifier is required")
	}

	raw := identifier + separator + strconv.FormatInt(issuedAt.UnixMilli(), 10)
	content, err := c.cipher.Encrypt(raw)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt QR payload: %w", err)
	}
	return content, nil
}

// Decode validates content and returns its payload.
func (c *Codec) Decode(content string) (Payload, error) {
	raw, ok := crypto.TryDecrypt(c.cipher, content)
	if !ok {
		return Payload{}, ErrInvalidToken
	}

	parts := strings.Split(raw, separator)
	if len(parts) < 2 {
		return Payload{}, ErrMalformedToken
	}

	// identifiers never contain the separator, but only the last segment is the timestamp
	identifier := strings.Join(parts[:len(parts)-1], separator)
	if identifier == "" {
		return Payload{}, ErrMalformedToken
	}

	issuedAt, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return Payload{}, ErrMalformedToken
	}

	if c.Now().UnixMilli()-issuedAt > c.ttl.Milliseconds() {
		return Payload{}, ErrExpiredToken
	}

	return Payload{Identifier: identifier, IssuedAtMillis: issuedAt}, nil
}
