package videos

import (
	"crypto/subtle"
	"time"

	"github.com/ravalmohit390-eng/vidlink/internal/models"
)

// Decision is the outcome of consulting the access gate for a video read.
type Decision int

const (
	// DecisionNotFound means no record exists for the requested identifier.
	DecisionNotFound Decision = iota
	// DecisionExpired means the link outlived its expiry. Expiry takes
	// precedence over the password requirement: an expired protected video
	// reports expired, not password-required.
	DecisionExpired
	// DecisionPasswordRequired means the file reference stays hidden until a
	// matching password is submitted. Also returned when a submitted
	// password does not match.
	DecisionPasswordRequired
	// DecisionVisible grants disclosure of the file reference.
	DecisionVisible
)

// Decide applies the access-gate precedence to a single video: existence,
// then expiry, then the password requirement. A nil submitted password means
// the caller offered no credential. Passwords compare exact and
// case-sensitive, in constant time; a credential offered against an
// unprotected record is a mismatch, since there is no password to match.
func Decide(video *models.Video, now time.Time, submitted *string) Decision {
	if video == nil {
		return DecisionNotFound
	}
	if video.Expired(now) {
		return DecisionExpired
	}
	if !video.Protected() {
		if submitted == nil {
			return DecisionVisible
		}
		return DecisionPasswordRequired
	}
	if submitted == nil {
		return DecisionPasswordRequired
	}
	if subtle.ConstantTimeCompare([]byte(*video.Password), []byte(*submitted)) != 1 {
		return DecisionPasswordRequired
	}
	return DecisionVisible
}
