package user

import (
	"context"
	"fmt"

	"github.com/go-chi/jwtauth/v5"
)

type Role string

const (
	RoleAdmin       Role = "admin"        // Platform operator - unrestricted
	RoleBaseManager Role = "base_manager" // Owns one or more bases
	RoleStaff       Role = "staff"        // On-site scanner, assigned bases via token
	RoleWorker      Role = "worker"       // Seasonal worker
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleBaseManager, RoleStaff, RoleWorker:
		return true
	}
	return false
}

// Identity is the authenticated caller as carried by the access token.
type Identity struct {
	UserID   string
	Role     Role
	WorkerID *string
	BaseIDs  []string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// IdentityFromContext reads the verified JWT claims placed on ctx by jwtauth.Verifier.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	return IdentityFromClaims(claims)
}

func IdentityFromClaims(claims map[string]interface{}) (Identity, error) {
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return Identity{}, ErrMissingClaims
	}

	roleStr, ok := claims["role"].(string)
	if !ok || !Role(roleStr).IsValid() {
		return Identity{}, ErrMissingClaims
	}

	id := Identity{
		UserID: userID,
		Role:   Role(roleStr),
	}

	if workerID, ok := claims["worker_id"].(string); ok && workerID != "" {
		id.WorkerID = &workerID
	}

	// base_ids arrives as []interface{} after a JSON round trip and as []string when set in-process
	switch v := claims["base_ids"].(type) {
	case []string:
		id.BaseIDs = append(id.BaseIDs, v...)
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				id.BaseIDs = append(id.BaseIDs, s)
			}
		}
	}

	return id, nil
}
