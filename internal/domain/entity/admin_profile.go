package entity

// AdminProfile represents admin profile data
type AdminProfile struct {
	ProfileBase `gorm:"embedded"`
}

func (AdminProfile) TableName() string {
	return TableAdmins
}

// ToProfile converts the row into the role-independent read model
func (p *AdminProfile) ToProfile() *Profile {
	return &Profile{
		UserID:          p.UserID,
		FullName:        p.FullName,
		Email:           p.Email,
		ProfileImageURL: p.ProfileImageURL,
		UpdatedAt:       p.UpdatedAt,
	}
}
