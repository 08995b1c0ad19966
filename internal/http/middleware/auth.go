package middleware

import (
	"context"
	"net/http"
	"strings"

	"evolt/internal/service"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenValidator verifies a bearer token string into claims.
type TokenValidator interface {
	Validate(token string) (*service.Claims, error)
}

// RequireAuth validates the Authorization header and stores claims in the
// request context. Requests without a valid token get 401.
func RequireAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, errMsg := claimsFromRequest(tokens, r)
			if claims == nil {
				writeUnauthorized(w, errMsg)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches claims when a valid bearer token is present and lets
// the request through either way. Used on public read endpoints so responses
// can be enriched for authenticated viewers.
func OptionalAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, _ := claimsFromRequest(tokens, r); claims != nil {
				r = r.WithContext(withClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func claimsFromRequest(tokens TokenValidator, r *http.Request) (*service.Claims, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, "missing authorization header"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, "invalid authorization header"
	}
	claims, err := tokens.Validate(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, "invalid token"
	}
	return claims, ""
}

func withClaims(ctx context.Context, claims *service.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext retrieves validated claims from request context.
func ClaimsFromContext(ctx context.Context) (*service.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*service.Claims)
	return claims, ok
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"` + message + `"}`))
}
