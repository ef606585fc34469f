package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names a capacity or waitlist change that downstream consumers
// (delivery, analytics) may act on.
type EventType string

const (
	EventHoldCreated   EventType = "HOLD_CREATED"
	EventHoldConfirmed EventType = "HOLD_CONFIRMED"
	EventHoldReleased  EventType = "HOLD_RELEASED"

	EventCapacityReleased EventType = "CAPACITY_RELEASED"

	EventWaitlistJoined              EventType = "WAITLIST_JOINED"
	EventWaitlistSpotAvailable       EventType = "WAITLIST_SPOT_AVAILABLE"
	EventWaitlistConverted           EventType = "WAITLIST_CONVERTED"
	EventWaitlistNotificationExpired EventType = "WAITLIST_NOTIFICATION_EXPIRED"
	EventWaitlistRequeued            EventType = "WAITLIST_REQUEUED"
)

// CapacityEvent is the message published for every event type. Fields that
// do not apply to a type are left empty.
type CapacityEvent struct {
	ID         uuid.UUID  `json:"id"`
	Type       EventType  `json:"type"`
	ResourceID uuid.UUID  `json:"resource_id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	PartySize  int        `json:"party_size,omitempty"`

	HoldID          *uuid.UUID `json:"hold_id,omitempty"`
	WaitlistEntryID *uuid.UUID `json:"waitlist_entry_id,omitempty"`
	Reason          string     `json:"reason,omitempty"`

	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

func NewEvent(eventType EventType, resourceID uuid.UUID, occurredAt time.Time) *CapacityEvent {
	return &CapacityEvent{
		ID:         uuid.New(),
		Type:       eventType,
		ResourceID: resourceID,
		OccurredAt: occurredAt,
	}
}

func (e *CapacityEvent) WithUser(userID uuid.UUID, partySize int) *CapacityEvent {
	e.UserID = &userID
	e.PartySize = partySize
	return e
}

func (e *CapacityEvent) WithHold(holdID uuid.UUID) *CapacityEvent {
	e.HoldID = &holdID
	return e
}

func (e *CapacityEvent) WithWaitlistEntry(entryID uuid.UUID) *CapacityEvent {
	e.WaitlistEntryID = &entryID
	return e
}

func (e *CapacityEvent) WithReason(reason string) *CapacityEvent {
	e.Reason = reason
	return e
}

func (e *CapacityEvent) WithExpiry(t time.Time) *CapacityEvent {
	e.ExpiresAt = &t
	return e
}

// PartitionKey keeps all events of one resource on one partition, in order
func (e *CapacityEvent) PartitionKey() string {
	return e.ResourceID.String()
}

func (e *CapacityEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
