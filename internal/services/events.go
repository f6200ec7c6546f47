package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event types published on the user events channel.
const (
	EventUserCreated    = "user.created"
	EventUserUpdated    = "user.updated"
	EventUserDeleted    = "user.deleted"
	EventProfileImage   = "user.profile_image.updated"
	EventAddressCreated = "user.address.created"
	EventAddressUpdated = "user.address.updated"
	EventAddressDeleted = "user.address.deleted"
)

// Publisher is satisfied by *mq.MQ.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// UserEvent is the payload of every lifecycle event.
type UserEvent struct {
	EventType  string     `json:"event_type"`
	UserID     uuid.UUID  `json:"user_id"`
	AddressID  *uuid.UUID `json:"address_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// Events publishes lifecycle events. Publishing is best effort: a failed
// publish is logged and never fails the request that caused it.
type Events struct {
	publisher Publisher
	channel   string
	logger    *zap.Logger
	now       func() time.Time
}

// NewEvents returns an Events that drops everything when publisher is nil.
func NewEvents(publisher Publisher, channel string, logger *zap.Logger) *Events {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Events{
		publisher: publisher,
		channel:   channel,
		logger:    logger,
		now:       time.Now,
	}
}

func (e *Events) userEvent(ctx context.Context, eventType string, userID uuid.UUID) {
	e.publish(ctx, UserEvent{EventType: eventType, UserID: userID})
}

func (e *Events) addressEvent(ctx context.Context, eventType string, userID, addressID uuid.UUID) {
	e.publish(ctx, UserEvent{EventType: eventType, UserID: userID, AddressID: &addressID})
}

func (e *Events) publish(ctx context.Context, event UserEvent) {
	if e == nil || e.publisher == nil {
		return
	}
	event.OccurredAt = e.now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		e.logger.Error("marshal user event", zap.Error(err), zap.String("event_type", event.EventType))
		return
	}

	id, err := e.publisher.Publish(ctx, e.channel, data, map[string]string{
		"event_type": event.EventType,
		"user_id":    event.UserID.String(),
	})
	if err != nil {
		e.logger.Warn("publish user event",
			zap.Error(err),
			zap.String("event_type", event.EventType),
			zap.String("user_id", event.UserID.String()),
		)
		return
	}
	e.logger.Debug("published user event",
		zap.String("event_type", event.EventType),
		zap.String("message_id", id),
	)
}
