package entity

import "strings"

// Role is the application role stored in an identity's metadata.
// RoleNone is the absent variant produced when metadata carries no usable role.
type Role string

const (
	RoleNone    Role = ""
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Profile table names, one per role
const (
	TablePatients = "patients"
	TableDoctors  = "doctors"
	TableAdmins   = "admins"
)

// ParseRole converts a raw metadata value into a Role.
// Unknown values, non-strings and nil all yield (RoleNone, false).
func ParseRole(v interface{}) (Role, bool) {
	s, ok := v.(string)
	if !ok {
		return RoleNone, false
	}

	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RolePatient:
		return RolePatient, true
	case RoleDoctor:
		return RoleDoctor, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return RoleNone, false
	}
}

func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the three known roles
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// ProfileTable returns the table holding profiles for this role
func (r Role) ProfileTable() string {
	switch r {
	case RolePatient:
		return TablePatients
	case RoleDoctor:
		return TableDoctors
	case RoleAdmin:
		return TableAdmins
	default:
		return ""
	}
}

// HomePath returns the dashboard route owned by this role
func (r Role) HomePath() string {
	if !r.Valid() {
		return ""
	}
	return "/" + string(r)
}
