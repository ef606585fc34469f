package waitlist

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a waitlist entry
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusNotified  Status = "notified"
	StatusConverted Status = "converted"
	StatusExpired   Status = "expired"
	StatusRemoved   Status = "removed"
)

// Requeue policies for notifications that run out
const (
	RequeuePreserve = "preserve"
	RequeueBack     = "back"
)

// ErrAlreadyQueued is returned by the repository when the user already has an
// active entry for the resource.
var ErrAlreadyQueued = errors.New("user already has an active waitlist entry for this resource")

// ActivePairIndexSQL enforces one active entry per user and resource. GORM
// tags cannot express the partial predicate, so migrations run it directly.
const ActivePairIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_waitlist_entries_active_pair
	ON waitlist_entries (user_id, resource_id) WHERE status IN ('waiting', 'notified')`

// WaitlistEntry is a user's place in a resource's FIFO queue. Order is by
// QueuedAt, which equals CreatedAt unless the entry was sent to the back.
type WaitlistEntry struct {
	ID                    uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ResourceID            uuid.UUID  `json:"resource_id" gorm:"type:uuid;not null;index:idx_waitlist_entries_queue,priority:1"`
	UserID                uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	PartySize             int        `json:"party_size" gorm:"not null;check:chk_waitlist_entries_party_size,party_size > 0"`
	RequiresAccessibility bool       `json:"requires_accessibility" gorm:"not null"`
	Status                Status     `json:"status" gorm:"type:varchar(20);not null;index:idx_waitlist_entries_queue,priority:2"`
	QueuedAt              time.Time  `json:"queued_at" gorm:"not null;index:idx_waitlist_entries_queue,priority:3"`
	NotifiedAt            *time.Time `json:"notified_at,omitempty"`
	NotificationExpiresAt *time.Time `json:"notification_expires_at,omitempty" gorm:"index"`
	NotifyCount           int        `json:"notify_count" gorm:"not null"`
	ReservationID         *uuid.UUID `json:"reservation_id,omitempty" gorm:"type:uuid"`
	CreatedAt             time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist_entries"
}

// IsActive reports whether the entry still holds a place in the queue
func (e *WaitlistEntry) IsActive() bool {
	return e.Status == StatusWaiting || e.Status == StatusNotified
}

// NotificationLapsed reports whether a notified entry is past its deadline
func (e *WaitlistEntry) NotificationLapsed(now time.Time) bool {
	return e.Status == StatusNotified &&
		e.NotificationExpiresAt != nil &&
		!now.Before(*e.NotificationExpiresAt)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	validTransitions := map[Status][]Status{
		StatusWaiting:   {StatusNotified, StatusRemoved},
		StatusNotified:  {StatusConverted, StatusWaiting, StatusExpired, StatusRemoved},
		StatusConverted: {}, // Terminal state
		StatusExpired:   {}, // Terminal state
		StatusRemoved:   {}, // Terminal state
	}

	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Transition is a conditional status change. It applies only while the
// entry's status is one of From.
type Transition struct {
	From []Status
	To   Status
	At   time.Time

	// Set when moving to notified
	NotificationExpiresAt *time.Time

	// Clear notified_at and the deadline, used when requeueing
	ClearNotification bool

	// Move the entry to the back of the queue
	Requeue bool

	// Set when moving to converted
	ReservationID *uuid.UUID
}

// JoinResult is the outcome of AddToWaitlist
type JoinResult struct {
	Entry          *WaitlistEntry `json:"entry"`
	AlreadyInQueue bool           `json:"already_in_queue"`
	Position       int            `json:"position"`
}

// PositionResult reports where a waiting entry stands. Position is 1-based
// and counts the entry itself.
type PositionResult struct {
	EntryID     uuid.UUID `json:"entry_id"`
	Status      Status    `json:"status"`
	Position    int       `json:"position"`
	PeopleAhead int       `json:"people_ahead"`
}

// PositionedEntry is a waiting entry with its computed queue position
type PositionedEntry struct {
	WaitlistEntry
	Position int `json:"position"`
}

// CleanupResult summarizes one pass over lapsed notifications
type CleanupResult struct {
	Scanned  int `json:"scanned"`
	Requeued int `json:"requeued"`
	Expired  int `json:"expired"`
	Failed   int `json:"failed"`
}

// Stats are per-status counts for one resource
type Stats struct {
	ResourceID        uuid.UUID `json:"resource_id"`
	Waiting           int       `json:"waiting"`
	Notified          int       `json:"notified"`
	Converted         int       `json:"converted"`
	Expired           int       `json:"expired"`
	Removed           int       `json:"removed"`
	WaitingPartySize  int       `json:"waiting_party_size"`
	ConversionRatePct float64   `json:"conversion_rate_pct"`
}
