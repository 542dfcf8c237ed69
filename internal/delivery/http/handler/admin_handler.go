package handler

import (
	"errors"
	"net/http"
	"strconv"

	"go-medical-booking/internal/converter"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/delivery/http/middleware"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/usecase"
	"go-medical-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// AdminHandler serves the doctor approval workflow
type AdminHandler struct {
	profileUsecase usecase.ProfileUsecase
}

func NewAdminHandler(profileUsecase usecase.ProfileUsecase) *AdminHandler {
	return &AdminHandler{
		profileUsecase: profileUsecase,
	}
}

// ListDoctors lists doctors, optionally filtered with ?approved=true|false
func (h *AdminHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	approved, err := parseApprovedFilter(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid approved filter", nil)
		return
	}

	doctors, err := h.profileUsecase.ListDoctors(r.Context(), approved)
	if err != nil {
		response.InternalServerError(w, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	})
}

func (h *AdminHandler) ApproveDoctor(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, true)
}

func (h *AdminHandler) RejectDoctor(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, false)
}

func (h *AdminHandler) setApproval(w http.ResponseWriter, r *http.Request, approved bool) {
	adminID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	doctorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	var profile *entity.Profile
	if approved {
		profile, err = h.profileUsecase.ApproveDoctor(r.Context(), adminID, doctorID)
	} else {
		profile, err = h.profileUsecase.RejectDoctor(r.Context(), adminID, doctorID)
	}
	if err != nil {
		if errors.Is(err, usecase.ErrDoctorNotFound) {
			response.NotFound(w, "Doctor not found")
			return
		}
		response.InternalServerError(w, "Failed to update doctor approval")
		return
	}

	message := "Doctor approved successfully"
	if !approved {
		message = "Doctor rejected successfully"
	}
	response.Success(w, http.StatusOK, message, converter.ProfileToResponse(entity.RoleDoctor, profile))
}

func parseApprovedFilter(r *http.Request) (*bool, error) {
	raw := r.URL.Query().Get("approved")
	if raw == "" {
		return nil, nil
	}
	approved, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &approved, nil
}
