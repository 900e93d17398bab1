package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"docsign-backend-go/internal/events"
)

// eventEmitter publishes lifecycle events without ever failing the calling request.
type eventEmitter struct {
	publisher events.Publisher
	users     UserService
	logger    *zap.Logger
	now       func() time.Time
}

func newEventEmitter(publisher events.Publisher, users UserService, logger *zap.Logger, now func() time.Time) *eventEmitter {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &eventEmitter{publisher: publisher, users: users, logger: logger, now: now}
}

func (e *eventEmitter) emit(ctx context.Context, event events.Event) {
	if len(event.Recipients) == 0 {
		return
	}
	if event.ActorName == "" && e.users != nil {
		if actor, err := e.users.GetByID(ctx, event.ActorID); err == nil {
			event.ActorName = actor.DisplayName
			if event.ActorName == "" {
				event.ActorName = actor.Email
			}
		}
	}
	event.OccurredAt = e.now()
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Warn("Failed to publish event",
			zap.String("type", event.Type),
			zap.String("documentID", event.DocumentID),
			zap.Error(err))
	}
}
