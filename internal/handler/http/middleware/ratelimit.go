package middleware

import (
	"net"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/harvestlink/harvest-backend-go/internal/handler/http/response"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/ratelimit"
)

// RateLimit counts requests per operator (or per client address without a token) under scope.
func RateLimit(limiter *ratelimit.Limiter, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(r.Context(), scope+":"+clientKey(r)) {
				response.TooManyRequests(w, "Too many requests, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if _, claims, err := jwtauth.FromContext(r.Context()); err == nil {
		if id, ok := claims["user_id"].(string); ok && id != "" {
			return "user:" + id
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
