package converter

import (
	"time"

	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
)

// IdentityToResponse converts an Identity entity to IdentityResponse DTO
func IdentityToResponse(identity *entity.Identity) *dto.IdentityResponse {
	if identity == nil {
		return nil
	}

	return &dto.IdentityResponse{
		ID:               identity.ID,
		Email:            identity.Email,
		UserMetadata:     identity.Metadata,
		EmailConfirmedAt: identity.EmailConfirmedAt,
		CreatedAt:        identity.CreatedAt,
		UpdatedAt:        identity.UpdatedAt,
	}
}

// SessionToResponse converts a Session to the token grant payload
func SessionToResponse(session *entity.Session) *dto.TokenResponse {
	if session == nil {
		return nil
	}

	expiresIn := int64(time.Until(session.ExpiresAt).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}

	return &dto.TokenResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    expiresIn,
		ExpiresAt:    session.ExpiresAt,
		User:         *IdentityToResponse(&session.Identity),
	}
}
