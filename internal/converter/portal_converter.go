package converter

import (
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/session"
)

// FeedEntriesToResponses converts notification feed entries to NotificationResponse DTOs
func FeedEntriesToResponses(entries []session.FeedEntry) []dto.NotificationResponse {
	responses := make([]dto.NotificationResponse, len(entries))
	for i, entry := range entries {
		responses[i] = dto.NotificationResponse{
			Seq:         entry.Seq,
			Kind:        string(entry.Notification.Kind),
			Title:       entry.Notification.Title,
			Description: entry.Notification.Description,
			Variant:     entry.Notification.Variant,
			CreatedAt:   entry.CreatedAt,
		}
	}
	return responses
}

// SnapshotToPortalResponse wraps a session snapshot with the notifications of a call
func SnapshotToPortalResponse(snapshot session.Snapshot, entries []session.FeedEntry, redirectTo string, data interface{}) dto.PortalResponse {
	return dto.PortalResponse{
		State:         snapshot.State.String(),
		User:          snapshot.User,
		RedirectTo:    redirectTo,
		Notifications: FeedEntriesToResponses(entries),
		Data:          data,
	}
}
