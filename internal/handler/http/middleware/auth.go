package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/harvestlink/harvest-backend-go/internal/handler/http/response"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/jwt"
)

// AuthRequired rejects requests without a verified, unrevoked access token.
// It must run after jwtauth.Verifier.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, user.ErrMissingClaims)
				return
			}

			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.HandleError(w, user.ErrMissingClaims)
				return
			}

			if jwtService.IsTokenRevoked(TokenFromRequest(r)) {
				response.Unauthorized(w, "Token revoked")
				return
			}

			if _, err := user.IdentityFromClaims(claims); err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// TokenFromRequest finds the raw token in the Authorization header or, for
// EventSource clients that cannot set headers, the "jwt" query parameter.
func TokenFromRequest(r *http.Request) string {
	if t := jwtauth.TokenFromHeader(r); t != "" {
		return t
	}
	return jwtauth.TokenFromQuery(r)
}
