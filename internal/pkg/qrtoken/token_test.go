package qrtoken

import (
	"testing"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T, now time.Time) (*Codec, crypto.Cipher) {
	c, err := crypto.NewCipher("qr-token-test-key")
	require.NoError(t, err)

	codec := NewCodec(c, DefaultTTL)
	codec.Now = func() time.Time { return now }
	return codec, c
}

func TestCodec_RoundTrip(t *testing.T) {
	issued := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	codec, _ := newTestCodec(t, issued.Add(time.Minute))

	content, err := codec.Encode("0190a1b2-7c3d-7e4f-8a9b-0c1d2e3f4a5b", issued)
	require.NoError(t, err)

	payload, err := codec.Decode(content)
	require.NoError(t, err)
	assert.Equal(t, "0190a1b2-7c3d-7e4f-8a9b-0c1d2e3f4a5b", payload.Identifier)
	assert.Equal(t, issued.UnixMilli(), payload.IssuedAtMillis)
	assert.True(t, payload.IssuedAt().Equal(issued))
}

func TestCodec_Expiry(t *testing.T) {
	issued := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	t.Run("valid just before 24h", func(t *testing.T) {
		codec, _ := newTestCodec(t, issued.Add(23*time.Hour+59*time.Minute))
		content, err := codec.Encode("U1", issued)
		require.NoError(t, err)

		_, err = codec.Decode(content)
		assert.NoError(t, err)
	})

	t.Run("valid at exactly 24h", func(t *testing.T) {
		codec, _ := newTestCodec(t, issued.Add(24*time.Hour))
		content, err := codec.Encode("U1", issued)
		require.NoError(t, err)

		_, err = codec.Decode(content)
		assert.NoError(t, err)
	})

	t.Run("expired 1ms after 24h", func(t *testing.T) {
		codec, _ := newTestCodec(t, issued.Add(24*time.Hour+time.Millisecond))
		content, err := codec.Encode("U1", issued)
		require.NoError(t, err)

		_, err = codec.Decode(content)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestCodec_Invalid(t *testing.T) {
	codec, _ := newTestCodec(t, time.Now())

	_, err := codec.Decode("definitely-not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = codec.Decode("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_Malformed(t *testing.T) {
	now := time.Now()
	codec, c := newTestCodec(t, now)

	cases := map[string]string{
		"no separator":     "U1",
		"non numeric":      "U1|yesterday",
		"empty identifier": "|1717200000000",
		"empty timestamp":  "U1|",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			content, err := c.Encrypt(raw)
			require.NoError(t, err)

			_, err = codec.Decode(content)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestCodec_EncodeRequiresIdentifier(t *testing.T) {
	codec, _ := newTestCodec(t, time.Now())

	_, err := codec.Encode("", time.Now())
	assert.Error(t, err)
}

func TestNewCodec_DefaultTTL(t *testing.T) {
	c, err := crypto.NewCipher("k")
	require.NoError(t, err)

	assert.Equal(t, DefaultTTL, NewCodec(c, 0).TTL())
	assert.Equal(t, time.Hour, NewCodec(c, time.Hour).TTL())
}
