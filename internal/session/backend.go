package session

import (
	"context"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// ChangeEvent is an out-of-band session transition reported by the backend.
// Session is nil when the transition ended the session.
type ChangeEvent struct {
	Type    entity.SessionEventType
	Session *entity.Session
}

// Backend is the hosted auth and row storage service as seen by the Manager
type Backend interface {
	VerifyCredentials(ctx context.Context, email, password string) (*entity.Session, error)
	// CreateIdentity returns a nil session when the account still needs email confirmation
	CreateIdentity(ctx context.Context, email, password string, metadata entity.JSON) (*entity.Session, error)
	InvalidateSession(ctx context.Context) error
	// GetCurrentSession returns (nil, nil) when no valid session exists
	GetCurrentSession(ctx context.Context) (*entity.Session, error)
	OnSessionChange(fn func(ChangeEvent)) (unsubscribe func())
	// QueryProfileByIdentity returns (nil, nil) when the profile row does not exist
	QueryProfileByIdentity(ctx context.Context, role entity.Role, identityID uuid.UUID) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, role entity.Role, identityID uuid.UUID, fields entity.ProfileFields) (*entity.Profile, error)
}
