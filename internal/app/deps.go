package app

import (
	"net/http"
	"time"

	"github.com/ravalmohit390-eng/vidlink/internal/auth"
	"github.com/ravalmohit390-eng/vidlink/internal/config"
	"github.com/ravalmohit390-eng/vidlink/internal/db"
	"github.com/ravalmohit390-eng/vidlink/internal/handlers"
	"github.com/ravalmohit390-eng/vidlink/internal/middleware"
	"github.com/ravalmohit390-eng/vidlink/internal/repositories"
	"github.com/ravalmohit390-eng/vidlink/internal/storage"
	"github.com/ravalmohit390-eng/vidlink/internal/videos"
)

// rateLimiterTTL controls how long idle per-IP buckets are retained.
const rateLimiterTTL = 10 * time.Minute

func buildDependencies(pool db.Pool, blobs storage.BlobStore, uploads http.Handler, cfg config.Config) handlers.Dependencies {
	accountRepo := repositories.NewPostgresAccountRepository(pool)
	videoRepo := repositories.NewPostgresVideoRepository(pool)

	tokens := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)
	registry := videos.NewRegistry(videoRepo, blobs)

	authLimiter := middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow, cfg.AuthRateLimit, rateLimiterTTL)
	verifyLimiter := middleware.NewIPRateLimiter(cfg.VerifyRateLimit, cfg.VerifyWindow, cfg.VerifyRateLimit, rateLimiterTTL)

	return handlers.Dependencies{
		Accounts:       accountRepo,
		Tokens:         tokens,
		Verifier:       tokens,
		Registry:       registry,
		Blobs:          blobs,
		AuthLimiter:    authLimiter,
		VerifyLimiter:  verifyLimiter,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Uploads:        uploads,
	}
}
