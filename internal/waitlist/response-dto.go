package waitlist

import "github.com/google/uuid"

type QueueResponse struct {
	ResourceID uuid.UUID         `json:"resource_id"`
	Entries    []PositionedEntry `json:"entries"`
	Count      int               `json:"count"`
}

type PartySizeResponse struct {
	ResourceID       uuid.UUID `json:"resource_id"`
	WaitingPartySize int       `json:"waiting_party_size"`
}
