package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go-medical-booking/internal/converter"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/delivery/http/middleware"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/gate"
	"go-medical-booking/internal/session"
	"go-medical-booking/internal/usecase"
	"go-medical-booking/pkg/response"
	"go-medical-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const pendingApprovalMessage = "Your doctor account is pending approval by an administrator. You will be able to sign in once it has been approved."

// PortalSession is the session manager as used by the portal
type PortalSession interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, in session.RegisterInput) error
	Logout(ctx context.Context) error
	RefreshProfile(ctx context.Context) error
	UpdateProfile(ctx context.Context, fields entity.ProfileFields) error
	Snapshot() session.Snapshot
}

// NotificationSource is a sequence-numbered notification feed
type NotificationSource interface {
	Last() uint64
	Since(after uint64) []session.FeedEntry
}

// DoctorApprovals is the admin approval workflow acting as the signed-in user
type DoctorApprovals interface {
	ListDoctors(ctx context.Context, approved *bool) ([]entity.DoctorProfile, error)
	ApproveDoctor(ctx context.Context, doctorID uuid.UUID) (*entity.Profile, error)
	RejectDoctor(ctx context.Context, doctorID uuid.UUID) (*entity.Profile, error)
}

type PortalHandler struct {
	manager   PortalSession
	feed      NotificationSource
	approvals DoctorApprovals
	validator *validator.CustomValidator
}

func NewPortalHandler(manager PortalSession, feed NotificationSource, approvals DoctorApprovals, validator *validator.CustomValidator) *PortalHandler {
	return &PortalHandler{
		manager:   manager,
		feed:      feed,
		approvals: approvals,
		validator: validator,
	}
}

// LoginPage reports whether the login page should show the pending approval message
func (h *PortalHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	pending, _ := strconv.ParseBool(r.URL.Query().Get("pending_approval"))

	page := dto.LoginPageResponse{PendingApproval: pending}
	if pending {
		page.Message = pendingApprovalMessage
	}
	h.respond(w, http.StatusOK, h.feed.Last(), "", page)
}

// Login signs in; the role comes from the account, never from the request
func (h *PortalHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	before := h.feed.Last()
	err := h.manager.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		h.respond(w, http.StatusOK, before, landingPath(h.manager.Snapshot().User), nil)
	case errors.Is(err, session.ErrRoleMissing):
		h.respond(w, http.StatusOK, before, gate.LoginPath, nil)
	case usecase.IsAuthError(err):
		h.respond(w, http.StatusUnauthorized, before, "", nil)
	default:
		h.respond(w, http.StatusInternalServerError, before, "", nil)
	}
}

// Register creates an account and always sends the user to the login page
func (h *PortalHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	role, _ := entity.ParseRole(req.Role)

	before := h.feed.Last()
	err := h.manager.Register(r.Context(), session.RegisterInput{
		FullName:       req.FullName,
		Email:          req.Email,
		Password:       req.Password,
		Role:           role,
		Specialization: req.Specialization,
	})
	switch {
	case err == nil:
		h.respond(w, http.StatusCreated, before, gate.LoginPath, nil)
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		h.respond(w, http.StatusConflict, before, "", nil)
	case errors.Is(err, usecase.ErrRoleNotAllowed), errors.Is(err, session.ErrInvalidRole):
		h.respond(w, http.StatusBadRequest, before, "", nil)
	default:
		h.respond(w, http.StatusInternalServerError, before, "", nil)
	}
}

// Logout always lands on the login page; a server-side failure only adds a notification
func (h *PortalHandler) Logout(w http.ResponseWriter, r *http.Request) {
	before := h.feed.Last()
	_ = h.manager.Logout(r.Context())
	h.respond(w, http.StatusOK, before, gate.LoginPath, nil)
}

func (h *PortalHandler) Session(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.feed.Last(), "", nil)
}

// Notifications returns feed entries newer than ?after=N
func (h *PortalHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	var after uint64
	if raw := r.URL.Query().Get("after"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid after parameter", nil)
			return
		}
		after = parsed
	}

	h.respond(w, http.StatusOK, after, "", nil)
}

// RefreshProfile re-fetches the current user's profile, e.g. after a doctor approval
func (h *PortalHandler) RefreshProfile(w http.ResponseWriter, r *http.Request) {
	before := h.feed.Last()
	err := h.manager.RefreshProfile(r.Context())
	switch {
	case err == nil:
		h.respond(w, http.StatusOK, before, landingPath(h.manager.Snapshot().User), nil)
	case errors.Is(err, session.ErrNotAuthenticated):
		h.respond(w, http.StatusUnauthorized, before, gate.LoginPath, nil)
	default:
		h.respond(w, http.StatusBadGateway, before, "", nil)
	}
}

// Dashboard renders the role home; the route gate has already authorized the user
func (h *PortalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	view, ok := middleware.GetUserViewFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	h.respond(w, http.StatusOK, h.feed.Last(), "", map[string]string{
		"dashboard": view.AppRole.String(),
		"welcome":   view.DisplayName(),
	})
}

func (h *PortalHandler) Profile(w http.ResponseWriter, r *http.Request) {
	view, ok := middleware.GetUserViewFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	h.respond(w, http.StatusOK, h.feed.Last(), "", converter.ProfileToResponse(view.AppRole, view.Profile))
}

func (h *PortalHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	before := h.feed.Last()
	err := h.manager.UpdateProfile(r.Context(), converter.UpdateProfileRequestToFields(&req))
	switch {
	case err == nil:
		h.respond(w, http.StatusOK, before, "", nil)
	case errors.Is(err, usecase.ErrNoProfileChanges):
		h.respond(w, http.StatusBadRequest, before, "", nil)
	case errors.Is(err, usecase.ErrProfileNotFound):
		h.respond(w, http.StatusNotFound, before, "", nil)
	case errors.Is(err, session.ErrNotAuthenticated), errors.Is(err, session.ErrRoleMissing):
		h.respond(w, http.StatusUnauthorized, before, gate.LoginPath, nil)
	default:
		h.respond(w, http.StatusInternalServerError, before, "", nil)
	}
}

// DoctorApprovals lists doctors waiting for approval
func (h *PortalHandler) DoctorApprovals(w http.ResponseWriter, r *http.Request) {
	pending := false
	doctors, err := h.approvals.ListDoctors(r.Context(), &pending)
	if err != nil {
		response.InternalServerError(w, "Failed to get doctors")
		return
	}

	h.respond(w, http.StatusOK, h.feed.Last(), "", dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	})
}

func (h *PortalHandler) ApproveDoctor(w http.ResponseWriter, r *http.Request) {
	h.decideDoctor(w, r, true)
}

func (h *PortalHandler) RejectDoctor(w http.ResponseWriter, r *http.Request) {
	h.decideDoctor(w, r, false)
}

func (h *PortalHandler) decideDoctor(w http.ResponseWriter, r *http.Request, approve bool) {
	doctorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	var profile *entity.Profile
	if approve {
		profile, err = h.approvals.ApproveDoctor(r.Context(), doctorID)
	} else {
		profile, err = h.approvals.RejectDoctor(r.Context(), doctorID)
	}
	if err != nil {
		if errors.Is(err, usecase.ErrDoctorNotFound) {
			response.NotFound(w, "Doctor not found")
			return
		}
		response.InternalServerError(w, "Failed to update doctor approval")
		return
	}

	h.respond(w, http.StatusOK, h.feed.Last(), "", converter.ProfileToResponse(entity.RoleDoctor, profile))
}

func (h *PortalHandler) respond(w http.ResponseWriter, status int, after uint64, redirectTo string, data interface{}) {
	snapshot := h.manager.Snapshot()
	response.JSON(w, status, converter.SnapshotToPortalResponse(snapshot, h.feed.Since(after), redirectTo, data))
}

// landingPath is where a signed-in user goes after login
func landingPath(user *entity.UserView) string {
	if user == nil || !user.HasRole() {
		return gate.LoginPath
	}
	decision := gate.Decide(user, false, user.AppRole)
	if decision.Outcome == gate.Render {
		return user.AppRole.HomePath()
	}
	return decision.Location
}
