package jwt

import (
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// AccessClaims are the claims an operator token carries.
type AccessClaims struct {
	UserID   string
	Role     user.Role
	WorkerID *string
	BaseIDs  []string
}

type Service interface {
	GenerateAccessToken(claims AccessClaims) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	revokedTokens             map[string]int64
	mu                        sync.RWMutex
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) *JWTService {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:             make(map[string]int64),
		now:                       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(c AccessClaims) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = j.now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id": c.UserID,
		"role":    string(c.Role),
		"type":    "access",
		"exp":     expiresAt,
	}
	if c.WorkerID != nil {
		claims["worker_id"] = *c.WorkerID
	}
	if len(c.BaseIDs) > 0 {
		claims["base_ids"] = c.BaseIDs
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// RevokeToken blocks token until it would have expired anyway. Entries older
// than the access lifetime are pruned on each call.
func (j *JWTService) RevokeToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now().Unix()
	if ttl, err := time.ParseDuration(j.accessTokenExpirationTime); err == nil {
		for t, revokedAt := range j.revokedTokens {
			if revokedAt+int64(ttl.Seconds()) < now {
				delete(j.revokedTokens, t)
			}
		}
	}
	j.revokedTokens[token] = now
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}
