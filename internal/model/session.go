package model

import "time"

// Session is one row of `user_sessions`.  Every issued access or refresh
// token owns exactly one session, keyed by the token's jti.  A token is
// revoked by deleting its row.
type Session struct {
	ID        uint64    // user_sessions.id
	UserID    uint64    // user_sessions.user_id
	JTI       string    // user_sessions.jti (unique)
	ExpiresAt time.Time // user_sessions.expires_at
	CreatedAt time.Time // user_sessions.created_at
}

// OneTimeToken is a single-use, time-boxed token bound to a user.  The same
// shape backs both `verification_tokens` and `password_reset_tokens`.
type OneTimeToken struct {
	ID        uint64
	UserID    uint64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t OneTimeToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
