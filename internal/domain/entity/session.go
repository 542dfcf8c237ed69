package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is a live authentication bound to exactly one Identity
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Identity     Identity  `json:"user"`
}

// Expired reports whether the access token is past its expiry
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// SessionEventType names a session transition broadcast by the auth service
type SessionEventType string

const (
	SessionEventSignedIn       SessionEventType = "SIGNED_IN"
	SessionEventSignedOut      SessionEventType = "SIGNED_OUT"
	SessionEventTokenRefreshed SessionEventType = "TOKEN_REFRESHED"
	SessionEventUserUpdated    SessionEventType = "USER_UPDATED"
)

// SessionEvent is a session change notification.
// Origin is the client that caused the change, empty for server-side changes.
type SessionEvent struct {
	Type       SessionEventType `json:"type"`
	IdentityID uuid.UUID        `json:"identity_id"`
	Origin     string           `json:"origin,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}
