package httpserver

import (
	"net/http"

	"evolt/internal/http/handlers"
	"evolt/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Auth     *handlers.AuthHandlers
	Stations *handlers.StationHandlers
	Health   http.HandlerFunc
	Tokens   middleware.TokenValidator
}

// NewRouter wires HTTP routes. Listing and single-station reads are public
// with optional auth for enrichment; everything mutating requires a bearer
// token.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(deps.Tokens)
	optionalAuth := middleware.OptionalAuth(deps.Tokens)

	mux.Handle("GET /health", deps.Health)

	mux.Handle("POST /api/auth/register", http.HandlerFunc(deps.Auth.Register))
	mux.Handle("POST /api/auth/login", http.HandlerFunc(deps.Auth.Login))
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(deps.Auth.Me)))
	mux.Handle("POST /api/auth/logout", requireAuth(http.HandlerFunc(deps.Auth.Logout)))

	mux.Handle("POST /api/stations", requireAuth(http.HandlerFunc(deps.Stations.Create)))
	mux.Handle("GET /api/stations", optionalAuth(http.HandlerFunc(deps.Stations.List)))
	mux.Handle("GET /api/stations/{id}", optionalAuth(http.HandlerFunc(deps.Stations.Get)))
	mux.Handle("PUT /api/stations/{id}", requireAuth(http.HandlerFunc(deps.Stations.Update)))
	mux.Handle("DELETE /api/stations/{id}", requireAuth(http.HandlerFunc(deps.Stations.Delete)))

	return mux
}
