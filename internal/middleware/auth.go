package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ravalmohit390-eng/vidlink/internal/auth"
	"github.com/ravalmohit390-eng/vidlink/internal/logging"
)

// Identity describes the authenticated account attached to a request.
type Identity struct {
	AccountID string
	Username  string
}

// TokenVerifier validates bearer tokens and returns their claims.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

type identityKey struct{}

// WithIdentity stores the authenticated identity on the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext retrieves the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

// Authenticate rejects requests without a valid bearer token and attaches the
// account identity to the request context for downstream handlers.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "authorization required")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				logging.FromContext(r.Context()).Warn("rejected bearer token", "error", err)
				unauthorized(w, "invalid token")
				return
			}

			ctx := WithIdentity(r.Context(), Identity{AccountID: claims.Subject, Username: claims.Username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
