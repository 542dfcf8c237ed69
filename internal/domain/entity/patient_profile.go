package entity

import "time"

// PatientProfile represents patient-specific profile data
type PatientProfile struct {
	ProfileBase `gorm:"embedded"`
	PhoneNumber string     `gorm:"type:varchar(20)" json:"phone_number,omitempty"`
	DateOfBirth *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	Gender      string     `gorm:"type:char(1)" json:"gender,omitempty"`
	Address     string     `gorm:"type:text" json:"address,omitempty"`
}

func (PatientProfile) TableName() string {
	return TablePatients
}

// Gender constants
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// ToProfile converts the row into the role-independent read model
func (p *PatientProfile) ToProfile() *Profile {
	return &Profile{
		UserID:          p.UserID,
		FullName:        p.FullName,
		Email:           p.Email,
		ProfileImageURL: p.ProfileImageURL,
		UpdatedAt:       p.UpdatedAt,
	}
}
