package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	RequestCreated     = "request.created"
	RequestApproved    = "request.approved"
	RequestRejected    = "request.rejected"
	RequestDeleted     = "request.deleted"
	UserAssigned       = "user.assigned"
	UserBanned         = "user.banned"
	RoomRosterReplaced = "room.roster_replaced"
	RoomDeleted        = "room.deleted"
)

// Event is the payload consumed by the notification mailer.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	UserID     uint      `json:"userId,omitempty"`
	RoomID     string    `json:"roomId,omitempty"`
	RequestID  uint      `json:"requestId,omitempty"`
	ActorID    uint      `json:"actorId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func New(eventType string) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher is implemented by every event transport.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}
