package dto

import (
	"time"

	"go-medical-booking/internal/domain/entity"
)

// Request DTOs

type RegisterRequest struct {
	FullName       string `json:"full_name" validate:"required,min=2"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	Role           string `json:"role" validate:"required,oneof=patient doctor admin"`
	Specialization string `json:"specialization" validate:"omitempty,max=255"`
}

// Response DTOs

type NotificationResponse struct {
	Seq         uint64    `json:"seq"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     string    `json:"variant"`
	CreatedAt   time.Time `json:"created_at"`
}

// PortalResponse is the envelope of every portal call: the resulting session
// state plus the notifications the call produced
type PortalResponse struct {
	State         string                 `json:"state"`
	User          *entity.UserView       `json:"user"`
	RedirectTo    string                 `json:"redirect_to,omitempty"`
	Notifications []NotificationResponse `json:"notifications"`
	Data          interface{}            `json:"data,omitempty"`
}

type LoginPageResponse struct {
	PendingApproval bool   `json:"pending_approval"`
	Message         string `json:"message,omitempty"`
}
