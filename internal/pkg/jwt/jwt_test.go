package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	workerID := "w-1"
	tokenString, exp, err := svc.GenerateAccessToken(AccessClaims{
		UserID:   "u-1",
		Role:     user.RoleStaff,
		WorkerID: &workerID,
		BaseIDs:  []string{"b-1", "b-2"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokenString)
	assert.Greater(t, exp, int64(0))

	token, err := svc.JWTAuth().Decode(tokenString)
	require.NoError(t, err)

	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access", claims["type"])

	id, err := user.IdentityFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.UserID)
	assert.Equal(t, user.RoleStaff, id.Role)
	require.NotNil(t, id.WorkerID)
	assert.Equal(t, "w-1", *id.WorkerID)
	assert.Equal(t, []string{"b-1", "b-2"}, id.BaseIDs)
}

func TestGenerateAccessToken_BadExpiry(t *testing.T) {
	svc := NewJWTService("test-secret", "soon")
	_, _, err := svc.GenerateAccessToken(AccessClaims{UserID: "u", Role: user.RoleAdmin})
	assert.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")
	assert.False(t, svc.IsTokenRevoked("abc"))
	svc.RevokeToken("abc")
	assert.True(t, svc.IsTokenRevoked("abc"))
}

func TestRevokeToken_PrunesExpiredEntries(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	svc.RevokeToken("old")
	now = now.Add(2 * time.Hour)
	svc.RevokeToken("new")

	assert.False(t, svc.IsTokenRevoked("old"))
	assert.True(t, svc.IsTokenRevoked("new"))
	assert.Len(t, svc.revokedTokens, 1)
}
