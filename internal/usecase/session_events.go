package usecase

import (
	"context"
	"time"

	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// publishSessionEvent broadcasts a session change. Delivery failures are logged,
// the triggering operation has already committed.
func publishSessionEvent(ctx context.Context, bus service.SessionEventBus, log *logrus.Logger, eventType entity.SessionEventType, identityID uuid.UUID, origin string) {
	event := entity.SessionEvent{
		Type:       eventType,
		IdentityID: identityID,
		Origin:     origin,
		OccurredAt: time.Now().UTC(),
	}

	if err := bus.Publish(ctx, event); err != nil {
		log.WithFields(logrus.Fields{
			"event":       eventType,
			"identity_id": identityID,
		}).Warnf("Failed to publish session event: %+v", err)
	}
}
