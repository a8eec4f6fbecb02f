package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ravalmohit390-eng/vidlink/internal/models"
)

// ErrInvalidToken indicates a bearer token that is malformed, forged, or expired.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the account identity inside issued tokens.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies the HS256 bearer tokens handed to
// authenticated accounts.
type TokenManager struct {
	secret []byte
	ttl    time.Duration

	// NowFunc overrides the time source in tests.
	NowFunc func() time.Time
}

// NewTokenManager constructs a TokenManager signing with the provided secret.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if secret == "" {
		panic("auth: token secret must not be empty")
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue mints a signed token for the account.
func (m *TokenManager) Issue(accountID, username string) (models.AuthToken, error) {
	if accountID == "" {
		return models.AuthToken{}, errors.New("account id must be provided")
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return models.AuthToken{}, fmt.Errorf("sign token: %w", err)
	}

	return models.AuthToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// Verify parses and validates a bearer token, returning its claims.
func (m *TokenManager) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

func (m *TokenManager) now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc()
	}
	return time.Now().UTC()
}
