package dto

import (
	"time"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

type SignUpRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	FullName       string `json:"full_name" validate:"required,min=2"`
	Role           string `json:"role" validate:"required,oneof=patient doctor admin"`
	Specialization string `json:"specialization" validate:"omitempty,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// Response DTOs

type IdentityResponse struct {
	ID               uuid.UUID   `json:"id"`
	Email            string      `json:"email"`
	UserMetadata     entity.JSON `json:"user_metadata"`
	EmailConfirmedAt *time.Time  `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

type TokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int64            `json:"expires_in"`
	ExpiresAt    time.Time        `json:"expires_at"`
	User         IdentityResponse `json:"user"`
}

type SignUpResponse struct {
	User                 IdentityResponse `json:"user"`
	Session              *TokenResponse   `json:"session,omitempty"`
	ConfirmationRequired bool             `json:"confirmation_required"`
}
