package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/CobrasOrg/auth-service/internal/http/response"
	"github.com/CobrasOrg/auth-service/internal/observability"
	"github.com/CobrasOrg/auth-service/internal/security"
	"github.com/CobrasOrg/auth-service/internal/service"
)

type contextKey string

const claimsContextKey contextKey = "authClaims"

// RequireAuth validates the bearer token on every request before the
// handler runs. Revoked, expired and malformed tokens all produce the
// same 401 body.
func RequireAuth(tokens *service.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				observability.RecordTokenValidation(r.Context(), string(security.TokenTypeAccess), "missing")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or malformed authorization header")
				return
			}

			claims, err := tokens.Validate(r.Context(), raw, security.TokenTypeAccess)
			if err != nil {
				observability.RecordTokenValidation(r.Context(), string(security.TokenTypeAccess), "rejected")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}

			observability.RecordTokenValidation(r.Context(), string(security.TokenTypeAccess), "accepted")
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from the Authorization header. The
// scheme comparison is case-insensitive per RFC 9110.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// ClaimsFromContext returns the validated claims placed by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*security.Claims)
	return claims, ok
}
