package holds

import "github.com/google/uuid"

type CreateHoldRequest struct {
	ResourceID uuid.UUID `json:"resource_id" binding:"required"`
	PartySize  int       `json:"party_size" binding:"required,min=1"`
}
