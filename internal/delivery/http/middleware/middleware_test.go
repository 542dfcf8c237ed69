package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/gate"
	"go-medical-booking/internal/session"
	"go-medical-booking/internal/usecase"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type staticSnapshot struct {
	snapshot session.Snapshot
}

func (s staticSnapshot) Snapshot() session.Snapshot {
	return s.snapshot
}

type recordedDecision struct {
	route   string
	outcome string
}

type recorder struct {
	decisions   []recordedDecision
	rateLimited []string
}

func (r *recorder) ObserveGateDecision(route, outcome string) {
	r.decisions = append(r.decisions, recordedDecision{route: route, outcome: outcome})
}

func (r *recorder) ObserveRateLimited(route string) {
	r.rateLimited = append(r.rateLimited, route)
}

func newLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

func boolPtr(b bool) *bool { return &b }

func userView(role entity.Role, profile *entity.Profile) *entity.UserView {
	return entity.NewUserView(entity.Identity{ID: uuid.New(), Email: "user@example.com"}, role, profile)
}

func gatedRouter(snapshot session.Snapshot, rec *recorder, role entity.Role) *mux.Router {
	routeGate := NewRouteGate(staticSnapshot{snapshot: snapshot}, newLogger(), rec)

	router := mux.NewRouter()
	sub := router.PathPrefix(role.HomePath()).Subrouter()
	sub.Use(routeGate.Require(role))
	sub.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		view, ok := GetUserViewFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(view.AppRole.String()))
	}).Methods(http.MethodGet)
	return router
}

func TestRouteGate(t *testing.T) {
	patient := userView(entity.RolePatient, &entity.Profile{FullName: "John Patient"})
	pendingDoctor := userView(entity.RoleDoctor, &entity.Profile{FullName: "Dr. New", IsApproved: boolPtr(false)})
	approvedDoctor := userView(entity.RoleDoctor, &entity.Profile{FullName: "Dr. Smith", IsApproved: boolPtr(true)})

	tests := []struct {
		name         string
		snapshot     session.Snapshot
		role         entity.Role
		path         string
		wantStatus   int
		wantLocation string
		wantOutcome  string
	}{
		{
			name:        "loading",
			snapshot:    session.Snapshot{State: session.StateBootstrapping, Loading: true},
			role:        entity.RolePatient,
			path:        "/patient/profile",
			wantStatus:  http.StatusServiceUnavailable,
			wantOutcome: gate.Loading.String(),
		},
		{
			name:         "signed out",
			snapshot:     session.Snapshot{State: session.StateUnauthenticated},
			role:         entity.RolePatient,
			path:         "/patient/profile",
			wantStatus:   http.StatusFound,
			wantLocation: gate.LoginPath,
			wantOutcome:  gate.RedirectLogin.String(),
		},
		{
			name:         "patient on doctor route",
			snapshot:     session.Snapshot{State: session.StateAuthenticated, User: patient},
			role:         entity.RoleDoctor,
			path:         "/doctor/profile",
			wantStatus:   http.StatusFound,
			wantLocation: "/patient",
			wantOutcome:  gate.RedirectHome.String(),
		},
		{
			name:         "pending doctor",
			snapshot:     session.Snapshot{State: session.StateAuthenticated, User: pendingDoctor},
			role:         entity.RoleDoctor,
			path:         "/doctor/profile",
			wantStatus:   http.StatusFound,
			wantLocation: gate.PendingApprovalPath,
			wantOutcome:  gate.RedirectPendingApproval.String(),
		},
		{
			name:        "approved doctor",
			snapshot:    session.Snapshot{State: session.StateAuthenticated, User: approvedDoctor},
			role:        entity.RoleDoctor,
			path:        "/doctor/profile",
			wantStatus:  http.StatusOK,
			wantOutcome: gate.Render.String(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			router := gatedRouter(tt.snapshot, rec, tt.role)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
			if len(rec.decisions) != 1 {
				t.Fatalf("recorded %d decisions, want 1", len(rec.decisions))
			}
			if rec.decisions[0].outcome != tt.wantOutcome {
				t.Errorf("outcome = %q, want %q", rec.decisions[0].outcome, tt.wantOutcome)
			}
			if rec.decisions[0].route != tt.role.HomePath()+"/profile" {
				t.Errorf("route = %q, want the path template", rec.decisions[0].route)
			}
		})
	}
}

func TestRouteGateLoadingSetsRetryAfter(t *testing.T) {
	router := gatedRouter(session.Snapshot{Loading: true}, &recorder{}, entity.RoleAdmin)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/profile", nil))

	if w.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q, want 1", w.Header().Get("Retry-After"))
	}
}

func TestRateLimiter(t *testing.T) {
	rec := &recorder{}
	rl := NewRateLimiter(1, 2, newLogger(), rec)
	defer rl.Stop()

	handler := rl.Limit("/api/v1/auth/token")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := call("10.0.0.1:1234"); w.Code != http.StatusNoContent {
			t.Fatalf("call %d: status = %d, want %d", i, w.Code, http.StatusNoContent)
		}
	}

	w := call("10.0.0.1:5678")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", w.Header().Get("Retry-After"))
	}
	if len(rec.rateLimited) != 1 || rec.rateLimited[0] != "/api/v1/auth/token" {
		t.Errorf("rate limited routes = %v", rec.rateLimited)
	}

	// Another client has its own bucket
	if w := call("10.0.0.2:1234"); w.Code != http.StatusNoContent {
		t.Errorf("other client status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(60, 1, newLogger(), nil)
	defer rl.Stop()

	rl.limiter("10.0.0.1")
	rl.mu.Lock()
	rl.limiters["10.0.0.1"].lastAccess = rl.limiters["10.0.0.1"].lastAccess.Add(-3 * rl.cleanupInterval)
	rl.mu.Unlock()

	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.limiters) != 0 {
		t.Errorf("limiters = %d, want 0", len(rl.limiters))
	}
}

type fakeAuth struct {
	usecase.AuthUsecase
	identity *entity.Identity
	err      error
}

func (f *fakeAuth) GetSession(ctx context.Context, accessToken string) (*entity.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func TestAuthenticate(t *testing.T) {
	identity := &entity.Identity{
		ID:       uuid.New(),
		Email:    "admin@example.com",
		Metadata: entity.JSON{entity.MetadataRole: "admin"},
	}

	tests := []struct {
		name       string
		header     string
		auth       *fakeAuth
		wantStatus int
	}{
		{"missing header", "", &fakeAuth{identity: identity}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", &fakeAuth{identity: identity}, http.StatusUnauthorized},
		{"revoked", "Bearer abc", &fakeAuth{err: usecase.ErrTokenRevoked}, http.StatusUnauthorized},
		{"invalid", "Bearer abc", &fakeAuth{err: usecase.ErrInvalidToken}, http.StatusUnauthorized},
		{"store failure", "Bearer abc", &fakeAuth{err: context.DeadlineExceeded}, http.StatusInternalServerError},
		{"valid admin", "Bearer abc", &fakeAuth{identity: identity}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotToken string
			handler := NewAuthMiddleware(tt.auth).Authenticate(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotToken, _ = GetAccessTokenFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/doctors", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && gotToken != "abc" {
				t.Errorf("access token = %q, want abc", gotToken)
			}
		})
	}
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	patient := &entity.Identity{ID: uuid.New(), Metadata: entity.JSON{entity.MetadataRole: "patient"}}

	handler := RequireRole(entity.RoleAdmin, entity.RoleDoctor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), IdentityKey, patient))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		opts        CORSOptions
		method      string
		wantStatus  int
		wantMethods string
		wantHeaders string
	}{
		{"api preflight", APICORSOptions, http.MethodOptions, http.StatusNoContent, "GET, POST, PUT, OPTIONS", "Content-Type, Authorization"},
		{"portal preflight", PortalCORSOptions, http.MethodOptions, http.StatusNoContent, "GET, POST, PUT, OPTIONS", "Content-Type"},
		{"portal request", PortalCORSOptions, http.MethodPost, http.StatusOK, "GET, POST, PUT, OPTIONS", "Content-Type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := NewCORSMiddleware(tt.opts).Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, "/login", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if called == (tt.method == http.MethodOptions) {
				t.Errorf("next called = %v for %s", called, tt.method)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("origin = %q", got)
			}
			if got := w.Header().Get("Access-Control-Allow-Methods"); got != tt.wantMethods {
				t.Errorf("methods = %q, want %q", got, tt.wantMethods)
			}
			if got := w.Header().Get("Access-Control-Allow-Headers"); got != tt.wantHeaders {
				t.Errorf("headers = %q, want %q", got, tt.wantHeaders)
			}
		})
	}
}
