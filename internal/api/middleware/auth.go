package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/fxdesk/internal/api/apierr"
	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/services/auth"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// AccountChecker re-reads the account a token was issued to
type AccountChecker interface {
	AccountActive(ctx context.Context, username string) bool
	HasRole(ctx context.Context, username string, roles ...model.Role) bool
}

// Auth creates authentication middleware that accepts a bearer access token
// whose account is still active
func Auth(tokens *auth.TokenService, accounts AccountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}
			if !accounts.AccountActive(r.Context(), claims.Username()) {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects tokens whose account does not currently hold the
// admin role, whatever the token's admin claim says. It must run after Auth.
func RequireAdmin(accounts AccountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims == nil || !accounts.HasRole(r.Context(), claims.Username(), model.RoleAdmin) {
				apierr.WriteError(w, apierr.NewForbiddenError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken extracts the access token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// GetClaims returns the verified token claims from the request context
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims
}

// MustGetClaims returns the verified token claims or panics
func MustGetClaims(ctx context.Context) *auth.Claims {
	claims := GetClaims(ctx)
	if claims == nil {
		panic("no claims in context - auth middleware not applied?")
	}
	return claims
}
