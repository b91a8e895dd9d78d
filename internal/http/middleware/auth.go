package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/aTrapDeer/portfolio-backend/internal/apierr"
	"github.com/aTrapDeer/portfolio-backend/internal/auth"
	"github.com/aTrapDeer/portfolio-backend/internal/http/response"
	"github.com/aTrapDeer/portfolio-backend/internal/models"
)

type Authenticator interface {
	Authenticate(raw string) (*auth.Claims, error)
}

type claimsKey struct{}

// ClaimsFrom returns the verified token claims, or nil on public routes.
func ClaimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return c
}

// WithClaims stores verified claims on ctx. Used by RequireAuth and tests.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// RequireAuth rejects requests without a valid Bearer token.
func RequireAuth(a Authenticator, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Error(w, r, nil, apierr.Unauthorized("Authorization header is required"))
			return
		}
		bearerToken := strings.SplitN(authHeader, " ", 2)
		if len(bearerToken) != 2 || !strings.EqualFold(bearerToken[0], "Bearer") || bearerToken[1] == "" {
			response.Error(w, r, nil, apierr.Unauthorized("Invalid authorization header format"))
			return
		}
		claims, err := a.Authenticate(strings.TrimSpace(bearerToken[1]))
		if err != nil {
			response.Error(w, r, nil, apierr.Unauthorized("Invalid token"))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireAdmin is RequireAuth plus an admin role check.
func RequireAdmin(a Authenticator, next http.Handler) http.Handler {
	return RequireAuth(a, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := ClaimsFrom(r.Context()); c == nil || c.Role != models.RoleAdmin {
			response.Error(w, r, nil, apierr.Forbidden("Admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	}))
}
