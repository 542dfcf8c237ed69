package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProfileBase holds the columns shared by every role-specific profile table
type ProfileBase struct {
	UserID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	FullName        string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Email           string    `gorm:"type:varchar(255);index" json:"email"`
	ProfileImageURL string    `gorm:"type:text" json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Profile is the role-independent read model of a profile row.
// Doctor-only attributes are nil for other roles.
type Profile struct {
	UserID          uuid.UUID        `json:"user_id"`
	FullName        string           `json:"full_name"`
	Email           string           `json:"email"`
	ProfileImageURL string           `json:"profile_image_url,omitempty"`
	Specialization  *string          `json:"specialization,omitempty"`
	IsApproved      *bool            `json:"is_approved,omitempty"`
	ConsultationFee *decimal.Decimal `json:"consultation_fee,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// PendingApproval reports an explicit unapproved flag.
// A profile without the flag (non-doctor, or unknown) is never pending.
func (p *Profile) PendingApproval() bool {
	return p != nil && p.IsApproved != nil && !*p.IsApproved
}

// ProfileFields carries the editable profile columns; nil means unchanged
type ProfileFields struct {
	FullName        *string
	ProfileImageURL *string
	Specialization  *string
	ConsultationFee *decimal.Decimal
}

// Empty reports whether no field is set
func (f ProfileFields) Empty() bool {
	return f.FullName == nil && f.ProfileImageURL == nil && f.Specialization == nil && f.ConsultationFee == nil
}
