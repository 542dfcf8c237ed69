package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go-medical-booking/internal/converter"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/delivery/http/middleware"
	"go-medical-booking/internal/usecase"
	"go-medical-booking/pkg/response"
	"go-medical-booking/pkg/validator"
)

type ProfileHandler struct {
	profileUsecase usecase.ProfileUsecase
	validator      *validator.CustomValidator
}

func NewProfileHandler(profileUsecase usecase.ProfileUsecase, validator *validator.CustomValidator) *ProfileHandler {
	return &ProfileHandler{
		profileUsecase: profileUsecase,
		validator:      validator,
	}
}

// GetMyProfile returns the profile row of the caller's role table
func (h *ProfileHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	role, ok := identity.Role()
	if !ok {
		response.Forbidden(w, "Account has no role assigned")
		return
	}

	profile, err := h.profileUsecase.GetProfile(r.Context(), role, identity.ID)
	if err != nil {
		if errors.Is(err, usecase.ErrProfileNotFound) {
			response.NotFound(w, "Profile not found")
			return
		}
		response.InternalServerError(w, "Failed to get profile")
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved successfully", converter.ProfileToResponse(role, profile))
}

func (h *ProfileHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	role, ok := identity.Role()
	if !ok {
		response.Forbidden(w, "Account has no role assigned")
		return
	}

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.profileUsecase.UpdateProfile(r.Context(), role, identity.ID, converter.UpdateProfileRequestToFields(&req))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrNoProfileChanges):
			response.Error(w, http.StatusBadRequest, "No profile fields to update", nil)
		case errors.Is(err, usecase.ErrProfileNotFound):
			response.NotFound(w, "Profile not found")
		default:
			response.InternalServerError(w, "Failed to update profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", converter.ProfileToResponse(role, profile))
}
