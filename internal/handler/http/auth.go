package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/harvestlink/harvest-backend-go/internal/handler/http/middleware"
	"github.com/harvestlink/harvest-backend-go/internal/handler/http/response"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/jwt"
)

type AuthHandler interface {
	Logout(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	jwtService jwt.Service
}

func NewAuthHandler(jwtService jwt.Service) AuthHandler {
	return &AuthHandlerImpl{jwtService: jwtService}
}

// Logout implements AuthHandler.
// The presented access token is rejected by AuthRequired from now until it expires.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	if token == "" {
		response.Unauthorized(w, "Missing access token")
		return
	}

	a.jwtService.RevokeToken(token)

	if _, claims, err := jwtauth.FromContext(r.Context()); err == nil {
		slog.Info("access token revoked", "user_id", claims["user_id"])
	}

	response.SuccessWithMessage(w, "Logged out", nil)
}
