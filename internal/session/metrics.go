package session

import (
	"time"

	"go-medical-booking/internal/domain/entity"
)

// Login outcomes
const (
	LoginSucceeded   = "success"
	LoginFailed      = "failure"
	LoginRoleMissing = "role_missing"
)

// Profile fetch outcomes
const (
	ProfileFound    = "found"
	ProfileNotFound = "not_found"
	ProfileError    = "error"
)

// Recorder receives Manager measurements
type Recorder interface {
	ObserveLogin(outcome string)
	ObserveProfileFetch(outcome string, elapsed time.Duration)
	ObserveDiscardedPublication(trigger string)
	ObserveSessionEvent(eventType entity.SessionEventType)
}

type noopRecorder struct{}

func (noopRecorder) ObserveLogin(string) {}
func (noopRecorder) ObserveProfileFetch(string, time.Duration) {}
func (noopRecorder) ObserveDiscardedPublication(string) {}
func (noopRecorder) ObserveSessionEvent(entity.SessionEventType) {}
