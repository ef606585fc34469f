package capacity

import (
	"math"
	"time"

	"venuecap/internal/shared/failure"

	"github.com/google/uuid"
)

// CapacityRecord is the ledger view of a resource row. The counters always
// satisfy Available + Reserved + Held + Blocked == TotalCapacity.
type CapacityRecord struct {
	ID                 uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TotalCapacity      int       `json:"total" gorm:"column:total_capacity"`
	Available          int       `json:"available" gorm:"column:available"`
	Reserved           int       `json:"reserved" gorm:"column:reserved"`
	Held               int       `json:"held" gorm:"column:held"`
	Blocked            int       `json:"blocked" gorm:"column:blocked"`
	AllowsReservations bool      `json:"allows_reservations" gorm:"column:allows_reservations"`
	MaxGroupSize       int       `json:"max_group_size" gorm:"column:max_group_size"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName maps the ledger onto the resources table
func (CapacityRecord) TableName() string {
	return "resources"
}

// Balanced reports whether the counters add up to the total
func (r *CapacityRecord) Balanced() bool {
	return r.Available+r.Reserved+r.Held+r.Blocked == r.TotalCapacity &&
		r.Available >= 0 && r.Reserved >= 0 && r.Held >= 0 && r.Blocked >= 0
}

// CapacityStats is the cached, derived view of a CapacityRecord
type CapacityStats struct {
	ResourceID         uuid.UUID `json:"resource_id"`
	Total              int       `json:"total"`
	Available          int       `json:"available"`
	Reserved           int       `json:"reserved"`
	Held               int       `json:"held"`
	Blocked            int       `json:"blocked"`
	Occupied           int       `json:"occupied"`
	UtilizationPct     float64   `json:"utilization_pct"`
	AllowsReservations bool      `json:"allows_reservations"`
	MaxGroupSize       int       `json:"max_group_size"`
}

func (r *CapacityRecord) ToStats() *CapacityStats {
	occupied := r.Reserved + r.Held
	var pct float64
	if r.TotalCapacity > 0 {
		pct = math.Round(float64(occupied)/float64(r.TotalCapacity)*10000) / 100
	}
	return &CapacityStats{
		ResourceID:         r.ID,
		Total:              r.TotalCapacity,
		Available:          r.Available,
		Reserved:           r.Reserved,
		Held:               r.Held,
		Blocked:            r.Blocked,
		Occupied:           occupied,
		UtilizationPct:     pct,
		AllowsReservations: r.AllowsReservations,
		MaxGroupSize:       r.MaxGroupSize,
	}
}

// AvailabilityResult answers whether a party fits right now
type AvailabilityResult struct {
	OK           bool           `json:"ok"`
	Available    int            `json:"available"`
	MaxGroupSize int            `json:"max_group_size"`
	Reason       failure.Reason `json:"reason,omitempty"`
}

// Failure converts a negative result into the matching business failure
func (a *AvailabilityResult) Failure(partySize int) *failure.Failure {
	if a.OK {
		return nil
	}
	var f *failure.Failure
	switch a.Reason {
	case failure.ReservationsDisabled:
		f = failure.New(a.Reason, "reservations are disabled for this resource")
	case failure.PartyTooLarge:
		f = failure.New(a.Reason, "party of %d exceeds the maximum group size of %d", partySize, a.MaxGroupSize)
	case failure.InvalidPartySize:
		f = failure.New(a.Reason, "party size must be at least 1")
	default:
		f = failure.New(a.Reason, "requested %d but only %d available", partySize, a.Available)
	}
	return f.WithAvailable(a.Available).WithMaxGroupSize(a.MaxGroupSize)
}

// evaluate checks a party against a stats snapshot
func evaluate(stats *CapacityStats, partySize int) *AvailabilityResult {
	res := &AvailabilityResult{
		OK:           true,
		Available:    stats.Available,
		MaxGroupSize: stats.MaxGroupSize,
	}
	switch {
	case partySize < 1:
		res.OK, res.Reason = false, failure.InvalidPartySize
	case !stats.AllowsReservations:
		res.OK, res.Reason = false, failure.ReservationsDisabled
	case stats.MaxGroupSize > 0 && partySize > stats.MaxGroupSize:
		res.OK, res.Reason = false, failure.PartyTooLarge
	case partySize > stats.Available:
		res.OK, res.Reason = false, failure.InsufficientCapacity
	}
	return res
}

// ReleaseResult reports how much a release actually returned to available
type ReleaseResult struct {
	Requested int            `json:"requested"`
	Released  int            `json:"released"`
	Clamped   bool           `json:"clamped"`
	Stats     *CapacityStats `json:"stats,omitempty"`
}

// SettingsUpdate changes the reservation switches of a resource
type SettingsUpdate struct {
	AllowsReservations *bool
	MaxGroupSize       *int
}
