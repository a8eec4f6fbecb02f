package videos

import "errors"

var (
	// ErrNotFound indicates no video matches the requested identifier (or the
	// identifier/owner pair for ownership-scoped operations).
	ErrNotFound = errors.New("video not found")
	// ErrExpired indicates the share link outlived its expiry timestamp.
	ErrExpired = errors.New("video link expired")
	// ErrUnauthorized indicates the submitted gate password did not match.
	ErrUnauthorized = errors.New("incorrect password")
	// ErrValidation indicates a required field was missing or malformed.
	ErrValidation = errors.New("invalid video parameters")
)
