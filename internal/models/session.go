package models

import "time"

// Session represents an authenticated user session. Sessions are
// soft-revoked: IsActive is flipped off on logout or expiry and the
// row is kept as an audit trail. A deactivated token is never
// reactivated; login always issues a fresh session.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Token     string    `json:"-"` // Never expose in JSON
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
}

// Usable reports whether the session can still authenticate requests
// at the given instant.
func (s *Session) Usable(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}
