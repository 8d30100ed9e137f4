package domain

import "time"

// Session is an officer's authenticated session. Only the SHA-256 hash of the opaque token is stored.
type Session struct {
	ID        string
	OfficerID string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	Valid     bool // false once logged out or invalidated
	IPAddress string
	UserAgent string
}

// Expired reports whether the session is past its expiry at now. A session expiring exactly at now is still live.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
