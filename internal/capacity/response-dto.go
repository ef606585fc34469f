package capacity

import "github.com/google/uuid"

type AvailabilityResponse struct {
	ResourceID uuid.UUID `json:"resource_id"`
	PartySize  int       `json:"party_size"`
	*AvailabilityResult
}

type AuditResponse struct {
	Unbalanced []CapacityRecord `json:"unbalanced"`
	Count      int              `json:"count"`
}
