// Package gate decides whether a protected route may render for the current user.
package gate

import "go-medical-booking/internal/domain/entity"

type Outcome int

const (
	Loading Outcome = iota
	Render
	RedirectLogin
	RedirectPendingApproval
	RedirectHome
)

const (
	LoginPath           = "/login"
	PendingApprovalPath = "/login?pending_approval=true"
)

var outcomeNames = map[Outcome]string{
	Loading:                 "loading",
	Render:                  "render",
	RedirectLogin:           "redirect_login",
	RedirectPendingApproval: "redirect_pending_approval",
	RedirectHome:            "redirect_home",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Decision is the routing result. Location is set for redirects only.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Decide is a pure function of its inputs, evaluated in order:
// loading, no user, no role, role outside required, render.
//
// Authorization uses the effective role, so a doctor whose profile is explicitly
// unapproved is sent to the pending-approval login even on doctor routes.
func Decide(user *entity.UserView, loading bool, required ...entity.Role) Decision {
	if loading {
		return Decision{Outcome: Loading}
	}
	if user == nil || !user.HasRole() {
		return Decision{Outcome: RedirectLogin, Location: LoginPath}
	}

	role := user.AuthorizedRole()
	if role == entity.RoleNone || !contains(required, role) {
		if user.AppRole == entity.RoleDoctor && user.Profile.PendingApproval() {
			return Decision{Outcome: RedirectPendingApproval, Location: PendingApprovalPath}
		}
		return Decision{Outcome: RedirectHome, Location: user.AppRole.HomePath()}
	}

	return Decision{Outcome: Render}
}

func contains(roles []entity.Role, role entity.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
