package holds

import (
	"time"

	"github.com/google/uuid"
)

// Hold is a time-boxed claim on part of a resource's capacity. While the row
// exists its party size is counted in the resource's held counter.
type Hold struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID    uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;uniqueIndex:idx_capacity_holds_owner_resource,priority:1"`
	ResourceID uuid.UUID `json:"resource_id" gorm:"type:uuid;not null;uniqueIndex:idx_capacity_holds_owner_resource,priority:2;index:idx_capacity_holds_resource"`
	PartySize  int       `json:"party_size" gorm:"not null;check:chk_capacity_holds_party_size,party_size > 0"`
	CreatedAt  time.Time `json:"created_at" gorm:"not null"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"not null;index:idx_capacity_holds_expires_at"`
}

func (Hold) TableName() string {
	return "capacity_holds"
}

// IsExpired reports whether the hold's deadline has passed at now
func (h *Hold) IsExpired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

// Release reasons, used in logs and events
const (
	ReleaseCancelled = "cancelled"
	ReleaseExpired   = "expired"
)

// SweepResult summarizes one pass over expired holds
type SweepResult struct {
	Scanned  int `json:"scanned"`
	Released int `json:"released"`
	Failed   int `json:"failed"`
	Units    int `json:"units_released"`
}
