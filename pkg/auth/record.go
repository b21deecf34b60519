package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// sessionTTL is how long a freshly saved session is considered valid.
const sessionTTL = 7 * 24 * time.Hour

// SessionRecord is the metadata document stored next to a session's
// cookie blob. At most one active record exists per identity; saving a
// new session archives the previous cookie blob first.
type SessionRecord struct {
	Identity  string    `json:"identity"`
	DerivedID string    `json:"derived_session_id"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the record's validity horizon has passed.
func (r SessionRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// DeriveSessionID returns the stable short id for an identity: the first
// 12 hex characters of its SHA-256 digest. It is an identifier, not a
// secret.
func DeriveSessionID(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(sum[:])[:12]
}
