package waitlist

import "github.com/google/uuid"

type JoinWaitlistRequest struct {
	ResourceID            uuid.UUID `json:"resource_id" binding:"required"`
	PartySize             int       `json:"party_size" binding:"required,min=1"`
	RequiresAccessibility bool      `json:"requires_accessibility"`
}

type NotifyRequest struct {
	WindowMinutes int `json:"window_minutes" binding:"omitempty,min=1,max=1440"`
}

type ConvertRequest struct {
	ReservationID uuid.UUID `json:"reservation_id" binding:"required"`
}
