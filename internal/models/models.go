package models

import "time"

// Account represents a registered uploader within the VidLink service.
type Account struct {
	ID        string
	Username  string
	Password  string
	CreatedAt time.Time
}

// Video is the persisted representation of one uploaded video and its
// sharing rules. FileName names the stored binary and must never be
// serialized to a caller who has not passed the access gate. Password is the
// optional plaintext gate secret; nil means unprotected.
type Video struct {
	ID           string
	OwnerID      string
	FileName     string
	OriginalName string
	Title        string
	UploadedAt   time.Time
	Views        int64
	SizeBytes    int64
	Password     *string
	ExpiresAt    *time.Time
}

// Protected reports whether the video requires a password before its file
// reference may be disclosed.
func (v Video) Protected() bool {
	return v.Password != nil && *v.Password != ""
}

// Expired reports whether the share link has outlived its expiry at the
// given instant. Videos without an expiry never expire.
func (v Video) Expired(now time.Time) bool {
	return v.ExpiresAt != nil && !v.ExpiresAt.After(now)
}

// AuthToken is the bearer credential issued to an authenticated account.
type AuthToken struct {
	Token     string
	ExpiresAt time.Time
}
