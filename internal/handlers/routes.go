package handlers

import (
	"net/http"

	"github.com/ravalmohit390-eng/vidlink/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Accounts       AccountStore
	Tokens         TokenIssuer
	Verifier       middleware.TokenVerifier
	Registry       VideoRegistry
	Blobs          BlobStore
	AuthLimiter    RateLimiter
	VerifyLimiter  RateLimiter
	MaxUploadBytes int64

	// Uploads serves stored binaries for the disk-backed deployment; nil
	// when binaries live in object storage.
	Uploads http.Handler
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Accounts: deps.Accounts, Tokens: deps.Tokens, Limiter: deps.AuthLimiter}
	videos := VideoHandler{
		Registry:       deps.Registry,
		Blobs:          deps.Blobs,
		VerifyLimiter:  deps.VerifyLimiter,
		MaxUploadBytes: deps.MaxUploadBytes,
	}

	authenticated := middleware.Authenticate(deps.Verifier)

	mux.HandleFunc("/api/health", health.Handle)
	mux.HandleFunc("POST /api/auth/register", auth.Register)
	mux.HandleFunc("POST /api/auth/login", auth.Login)

	mux.Handle("POST /api/upload", authenticated(http.HandlerFunc(videos.Upload)))
	mux.Handle("GET /api/videos", authenticated(http.HandlerFunc(videos.List)))
	mux.HandleFunc("GET /api/videos/{id}", videos.View)
	mux.HandleFunc("POST /api/videos/{id}/verify", videos.VerifyPassword)
	mux.Handle("PATCH /api/videos/{id}", authenticated(http.HandlerFunc(videos.Rename)))
	mux.Handle("DELETE /api/videos/{id}", authenticated(http.HandlerFunc(videos.Remove)))

	if deps.Uploads != nil {
		mux.Handle("GET /uploads/", deps.Uploads)
	}
}
