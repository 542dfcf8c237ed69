package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Metadata keys written at registration time
const (
	MetadataRole           = "role"
	MetadataFullName       = "full_name"
	MetadataSpecialization = "specialization"
)

// Identity represents the centralized authentication table.
// Role and display name live in Metadata, never in dedicated columns.
type Identity struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password         string     `gorm:"type:text;not null" json:"-"`
	Metadata         JSON       `gorm:"type:jsonb" json:"user_metadata,omitempty"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Identity) TableName() string {
	return "identities"
}

func (i *Identity) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Role parses the role out of the metadata bag
func (i *Identity) Role() (Role, bool) {
	if i == nil || i.Metadata == nil {
		return RoleNone, false
	}
	return ParseRole(i.Metadata[MetadataRole])
}

// IsEmailConfirmed checks if the identity has confirmed its email address
func (i *Identity) IsEmailConfirmed() bool {
	return i.EmailConfirmedAt != nil
}
