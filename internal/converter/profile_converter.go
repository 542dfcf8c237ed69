package converter

import (
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
)

// ProfileToResponse converts a Profile read model to ProfileResponse DTO
func ProfileToResponse(role entity.Role, profile *entity.Profile) *dto.ProfileResponse {
	if profile == nil {
		return nil
	}

	return &dto.ProfileResponse{
		UserID:          profile.UserID,
		Role:            role.String(),
		FullName:        profile.FullName,
		Email:           profile.Email,
		ProfileImageURL: profile.ProfileImageURL,
		Specialization:  profile.Specialization,
		IsApproved:      profile.IsApproved,
		ConsultationFee: profile.ConsultationFee,
		UpdatedAt:       profile.UpdatedAt,
	}
}

// UpdateProfileRequestToFields maps the request onto the editable profile columns
func UpdateProfileRequestToFields(req *dto.UpdateProfileRequest) entity.ProfileFields {
	return entity.ProfileFields{
		FullName:        req.FullName,
		ProfileImageURL: req.ProfileImageURL,
		Specialization:  req.Specialization,
		ConsultationFee: req.ConsultationFee,
	}
}

// DoctorsToResponses converts a slice of DoctorProfile rows to DoctorResponse DTOs
func DoctorsToResponses(doctors []entity.DoctorProfile) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i, doctor := range doctors {
		responses[i] = dto.DoctorResponse{
			UserID:          doctor.UserID,
			FullName:        doctor.FullName,
			Email:           doctor.Email,
			Specialization:  doctor.Specialization,
			Biography:       doctor.Biography,
			IsApproved:      doctor.IsApproved,
			ConsultationFee: doctor.ConsultationFee,
			CreatedAt:       doctor.CreatedAt,
		}
	}
	return responses
}
