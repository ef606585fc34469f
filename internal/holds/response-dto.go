package holds

import (
	"time"

	"github.com/google/uuid"
)

type HoldResponse struct {
	ID               uuid.UUID `json:"id"`
	ResourceID       uuid.UUID `json:"resource_id"`
	OwnerID          uuid.UUID `json:"owner_id"`
	PartySize        int       `json:"party_size"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	ExpiresInSeconds int       `json:"expires_in_seconds"`
}

func (h *Hold) ToResponse(now time.Time) HoldResponse {
	remaining := int(h.ExpiresAt.Sub(now).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return HoldResponse{
		ID:               h.ID,
		ResourceID:       h.ResourceID,
		OwnerID:          h.OwnerID,
		PartySize:        h.PartySize,
		CreatedAt:        h.CreatedAt,
		ExpiresAt:        h.ExpiresAt,
		ExpiresInSeconds: remaining,
	}
}

type UserHoldsResponse struct {
	Holds []HoldResponse `json:"holds"`
	Count int            `json:"count"`
}
