package session

import "go-medical-booking/internal/domain/entity"

type State int

const (
	StateBootstrapping State = iota
	StateUnauthenticated
	StateAuthenticating
	StateAuthenticatedNoRole
	StateAuthenticated
)

var stateNames = map[State]string{
	StateBootstrapping:       "bootstrapping",
	StateUnauthenticated:     "unauthenticated",
	StateAuthenticating:      "authenticating",
	StateAuthenticatedNoRole: "authenticated_no_role",
	StateAuthenticated:       "authenticated",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a consistent copy of the Manager state.
// User stays populated while an operation is in flight.
type Snapshot struct {
	State   State            `json:"state"`
	User    *entity.UserView `json:"user"`
	Loading bool             `json:"loading"`
}
