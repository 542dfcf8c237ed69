package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// UpdateProfileRequest carries the editable columns; omitted fields are left unchanged
type UpdateProfileRequest struct {
	FullName        *string          `json:"full_name" validate:"omitempty,min=2,max=255"`
	ProfileImageURL *string          `json:"profile_image_url" validate:"omitempty,url"`
	Specialization  *string          `json:"specialization" validate:"omitempty,max=255"`
	ConsultationFee *decimal.Decimal `json:"consultation_fee"`
}

// Response DTOs

type ProfileResponse struct {
	UserID          uuid.UUID        `json:"user_id"`
	Role            string           `json:"role"`
	FullName        string           `json:"full_name"`
	Email           string           `json:"email"`
	ProfileImageURL string           `json:"profile_image_url,omitempty"`
	Specialization  *string          `json:"specialization,omitempty"`
	IsApproved      *bool            `json:"is_approved,omitempty"`
	ConsultationFee *decimal.Decimal `json:"consultation_fee,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type DoctorResponse struct {
	UserID          uuid.UUID       `json:"user_id"`
	FullName        string          `json:"full_name"`
	Email           string          `json:"email"`
	Specialization  string          `json:"specialization"`
	Biography       string          `json:"biography,omitempty"`
	IsApproved      bool            `json:"is_approved"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
	CreatedAt       time.Time       `json:"created_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
