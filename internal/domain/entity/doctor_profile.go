package entity

import "github.com/shopspring/decimal"

// DoctorProfile represents doctor-specific profile data.
// New doctors start unapproved until an admin approves them.
type DoctorProfile struct {
	ProfileBase     `gorm:"embedded"`
	Specialization  string          `gorm:"type:varchar(100);index" json:"specialization"`
	Biography       string          `gorm:"type:text" json:"biography,omitempty"`
	IsApproved      bool            `gorm:"not null;default:false;index" json:"is_approved"`
	ConsultationFee decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"consultation_fee"`
}

func (DoctorProfile) TableName() string {
	return TableDoctors
}

// ToProfile converts the row into the role-independent read model
func (p *DoctorProfile) ToProfile() *Profile {
	specialization := p.Specialization
	approved := p.IsApproved
	fee := p.ConsultationFee
	return &Profile{
		UserID:          p.UserID,
		FullName:        p.FullName,
		Email:           p.Email,
		ProfileImageURL: p.ProfileImageURL,
		Specialization:  &specialization,
		IsApproved:      &approved,
		ConsultationFee: &fee,
		UpdatedAt:       p.UpdatedAt,
	}
}
