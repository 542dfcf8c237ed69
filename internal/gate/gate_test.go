package gate

import (
	"testing"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
)

func boolPtr(b bool) *bool { return &b }

func viewWith(role entity.Role, profile *entity.Profile) *entity.UserView {
	return entity.NewUserView(entity.Identity{ID: uuid.New(), Email: "user@example.com"}, role, profile)
}

func TestDecide(t *testing.T) {
	approvedDoctor := viewWith(entity.RoleDoctor, &entity.Profile{FullName: "Dr. Sarah Smith", IsApproved: boolPtr(true)})
	pendingDoctor := viewWith(entity.RoleDoctor, &entity.Profile{FullName: "Dr. New", IsApproved: boolPtr(false)})
	doctorWithoutProfile := viewWith(entity.RoleDoctor, nil)
	patient := viewWith(entity.RolePatient, &entity.Profile{FullName: "John Patient"})
	admin := viewWith(entity.RoleAdmin, &entity.Profile{FullName: "Admin"})
	noRole := viewWith(entity.RoleNone, nil)

	tests := []struct {
		name     string
		user     *entity.UserView
		loading  bool
		required []entity.Role
		want     Decision
	}{
		{"loading wins over everything", patient, true, []entity.Role{entity.RoleDoctor}, Decision{Outcome: Loading}},
		{"loading with no user", nil, true, []entity.Role{entity.RolePatient}, Decision{Outcome: Loading}},
		{"no user", nil, false, []entity.Role{entity.RolePatient}, Decision{Outcome: RedirectLogin, Location: LoginPath}},
		{"no role", noRole, false, []entity.Role{entity.RolePatient}, Decision{Outcome: RedirectLogin, Location: LoginPath}},
		{"patient on patient route", patient, false, []entity.Role{entity.RolePatient}, Decision{Outcome: Render}},
		{"patient on doctor route", patient, false, []entity.Role{entity.RoleDoctor}, Decision{Outcome: RedirectHome, Location: "/patient"}},
		{"admin on doctor route", admin, false, []entity.Role{entity.RoleDoctor}, Decision{Outcome: RedirectHome, Location: "/admin"}},
		{"approved doctor on doctor route", approvedDoctor, false, []entity.Role{entity.RoleDoctor}, Decision{Outcome: Render}},
		{"approved doctor on admin route", approvedDoctor, false, []entity.Role{entity.RoleAdmin}, Decision{Outcome: RedirectHome, Location: "/doctor"}},
		{"pending doctor on doctor route", pendingDoctor, false, []entity.Role{entity.RoleDoctor}, Decision{Outcome: RedirectPendingApproval, Location: PendingApprovalPath}},
		{"pending doctor on patient route", pendingDoctor, false, []entity.Role{entity.RolePatient}, Decision{Outcome: RedirectPendingApproval, Location: PendingApprovalPath}},
		{"doctor without profile is not pending", doctorWithoutProfile, false, []entity.Role{entity.RoleDoctor}, Decision{Outcome: Render}},
		{"any of several roles", admin, false, []entity.Role{entity.RolePatient, entity.RoleAdmin}, Decision{Outcome: Render}},
		{"no required roles", patient, false, nil, Decision{Outcome: RedirectHome, Location: "/patient"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.user, tt.loading, tt.required...)
			if got != tt.want {
				t.Errorf("Decide() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	user := viewWith(entity.RoleDoctor, &entity.Profile{IsApproved: boolPtr(false)})

	first := Decide(user, false, entity.RoleDoctor)
	for i := 0; i < 10; i++ {
		if got := Decide(user, false, entity.RoleDoctor); got != first {
			t.Fatalf("call %d: got %+v, want %+v", i, got, first)
		}
	}
	if user.AppRole != entity.RoleDoctor || !user.Profile.PendingApproval() {
		t.Fatal("Decide must not modify the user")
	}
}

func TestOutcomeString(t *testing.T) {
	if Render.String() != "render" {
		t.Errorf("Render.String() = %q", Render.String())
	}
	if Outcome(99).String() != "unknown" {
		t.Errorf("Outcome(99).String() = %q", Outcome(99).String())
	}
}
