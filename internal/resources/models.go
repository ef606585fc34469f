package resources

import (
	"time"

	"venuecap/internal/capacity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResourceStatus string

const (
	ResourceStatusScheduled ResourceStatus = "scheduled"
	ResourceStatusCancelled ResourceStatus = "cancelled"
	ResourceStatusCompleted ResourceStatus = "completed"
)

// Resource is a scheduled occasion at a venue together with its capacity
// counters. The counters are owned by the capacity ledger; this package only
// initializes them.
type Resource struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string         `json:"name" gorm:"not null;size:255"`
	Venue       string         `json:"venue" gorm:"not null;size:255;index"`
	Description string         `json:"description" gorm:"type:text"`
	StartsAt    time.Time      `json:"starts_at" gorm:"not null;index"`
	Status      ResourceStatus `json:"status" gorm:"type:varchar(20);not null;default:'scheduled'"`

	TotalCapacity      int  `json:"total_capacity" gorm:"not null;check:chk_resources_total,total_capacity > 0"`
	Available          int  `json:"available" gorm:"not null;default:0;check:chk_resources_available,available >= 0"`
	Reserved           int  `json:"reserved" gorm:"not null;default:0;check:chk_resources_reserved,reserved >= 0"`
	Held               int  `json:"held" gorm:"not null;default:0;check:chk_resources_held,held >= 0"`
	Blocked            int  `json:"blocked" gorm:"not null;default:0;check:chk_resources_blocked,blocked >= 0"`
	AllowsReservations bool `json:"allows_reservations" gorm:"not null"`
	MaxGroupSize       int  `json:"max_group_size" gorm:"not null;default:0;check:chk_resources_max_group,max_group_size >= 0"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Resource) TableName() string {
	return "resources"
}

func (r *Resource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ResourceResponse pairs resource details with a capacity snapshot
type ResourceResponse struct {
	ID          uuid.UUID               `json:"id"`
	Name        string                  `json:"name"`
	Venue       string                  `json:"venue"`
	Description string                  `json:"description"`
	StartsAt    time.Time               `json:"starts_at"`
	Status      ResourceStatus          `json:"status"`
	Capacity    *capacity.CapacityStats `json:"capacity"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

type PaginatedResources struct {
	Resources  []ResourceResponse `json:"resources"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// ToResponse builds a response from the row's own counters
func (r *Resource) ToResponse() ResourceResponse {
	rec := capacity.CapacityRecord{
		ID:                 r.ID,
		TotalCapacity:      r.TotalCapacity,
		Available:          r.Available,
		Reserved:           r.Reserved,
		Held:               r.Held,
		Blocked:            r.Blocked,
		AllowsReservations: r.AllowsReservations,
		MaxGroupSize:       r.MaxGroupSize,
		UpdatedAt:          r.UpdatedAt,
	}
	return ResourceResponse{
		ID:          r.ID,
		Name:        r.Name,
		Venue:       r.Venue,
		Description: r.Description,
		StartsAt:    r.StartsAt,
		Status:      r.Status,
		Capacity:    rec.ToStats(),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
