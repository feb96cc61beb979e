package user

import (
	"context"
	"errors"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/harvestlink/harvest-backend-go/internal/domain/base"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBaseRepo struct {
	base.BaseRepository
	owned map[string][]string
	err   error
}

func (f *fakeBaseRepo) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.owned[ownerID], nil
}

func ctxWithClaims(t *testing.T, claims map[string]interface{}) context.Context {
	t.Helper()
	token := jwt.New()
	for k, v := range claims {
		require.NoError(t, token.Set(k, v))
	}
	return jwtauth.NewContext(context.Background(), token, nil)
}

func TestResolve_Roles(t *testing.T) {
	repo := &fakeBaseRepo{owned: map[string][]string{"mgr-1": {"b-1", "b-2"}}}
	resolver := NewScopeResolver(repo)

	tests := []struct {
		name   string
		claims map[string]interface{}
		want   user.Scope
	}{
		{
			name:   "admin is global",
			claims: map[string]interface{}{"user_id": "adm", "role": "admin"},
			want:   user.GlobalScope(),
		},
		{
			name:   "base manager sees owned bases",
			claims: map[string]interface{}{"user_id": "mgr-1", "role": "base_manager"},
			want:   user.Scope{BaseIDs: []string{"b-1", "b-2"}},
		},
		{
			name:   "base manager without bases",
			claims: map[string]interface{}{"user_id": "mgr-2", "role": "base_manager"},
			want:   user.Scope{},
		},
		{
			name:   "staff uses token bases",
			claims: map[string]interface{}{"user_id": "st", "role": "staff", "base_ids": []string{"b-9"}},
			want:   user.Scope{BaseIDs: []string{"b-9"}},
		},
		{
			name:   "worker has no scope",
			claims: map[string]interface{}{"user_id": "w", "role": "worker"},
			want:   user.Scope{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(ctxWithClaims(t, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.want.Global, got.Global)
			assert.ElementsMatch(t, tt.want.BaseIDs, got.BaseIDs)
		})
	}
}

func TestResolve_MissingClaims(t *testing.T) {
	resolver := NewScopeResolver(&fakeBaseRepo{})

	_, err := resolver.Resolve(context.Background())
	assert.Error(t, err)
}

func TestResolve_RepositoryError(t *testing.T) {
	resolver := NewScopeResolver(&fakeBaseRepo{err: errors.New("db down")})

	_, err := resolver.Resolve(ctxWithClaims(t, map[string]interface{}{"user_id": "mgr", "role": "base_manager"}))
	assert.Error(t, err)
}
