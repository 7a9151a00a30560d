package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Ishan-Karpe/ShelfSense/internal/domain"
	"github.com/Ishan-Karpe/ShelfSense/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyIdentity contextKey = "identity"

// requireAuth is middleware that verifies the bearer token against the
// auth backend and attaches the resolved identity to the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Missing authorization header", s.logger)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format", s.logger)
			return
		}

		identity, err := s.admin.VerifyToken(r.Context(), parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token", s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyIdentity, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getIdentity extracts the verified identity from request context.
// Returns nil outside requireAuth.
func getIdentity(ctx context.Context) *domain.Identity {
	if identity, ok := ctx.Value(contextKeyIdentity).(*domain.Identity); ok {
		return identity
	}
	return nil
}
