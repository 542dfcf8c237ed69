package entity

import "github.com/google/uuid"

// UserView is the composite read model of {Identity, Role, Profile}.
// Role is RoleNone when the identity metadata had no parseable role;
// Profile is nil when the profile row is missing or could not be fetched.
type UserView struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Metadata JSON      `json:"user_metadata,omitempty"`
	AppRole  Role      `json:"app_role,omitempty"`
	Profile  *Profile  `json:"profile"`
}

// NewUserView merges an identity with its resolved role and profile
func NewUserView(identity Identity, role Role, profile *Profile) *UserView {
	return &UserView{
		ID:       identity.ID,
		Email:    identity.Email,
		Metadata: identity.Metadata,
		AppRole:  role,
		Profile:  profile,
	}
}

// HasRole reports whether a role was resolved
func (v *UserView) HasRole() bool {
	return v != nil && v.AppRole.Valid()
}

// DisplayName prefers the profile name and falls back to the email
func (v *UserView) DisplayName() string {
	if v == nil {
		return ""
	}
	if v.Profile != nil && v.Profile.FullName != "" {
		return v.Profile.FullName
	}
	return v.Email
}

// AuthorizedRole returns the role used for route authorization.
// An explicitly unapproved doctor holds no authorizing role.
func (v *UserView) AuthorizedRole() Role {
	if !v.HasRole() {
		return RoleNone
	}
	if v.AppRole == RoleDoctor && v.Profile.PendingApproval() {
		return RoleNone
	}
	return v.AppRole
}
