// Package failure holds the business failure taxonomy of the capacity engine.
// A *Failure is returned as an error value for expected conditions; anything
// else coming out of a service is an unexpected persistence fault.
package failure

import (
	"errors"
	"fmt"
)

type Reason string

const (
	ReservationsDisabled     Reason = "RESERVATIONS_DISABLED"
	PartyTooLarge            Reason = "PARTY_TOO_LARGE"
	InsufficientCapacity     Reason = "INSUFFICIENT_CAPACITY"
	DuplicateHold            Reason = "DUPLICATE_HOLD"
	HoldNotFoundOrExpired    Reason = "HOLD_NOT_FOUND_OR_EXPIRED"
	NotEnoughBlockedCapacity Reason = "NOT_ENOUGH_BLOCKED_CAPACITY"
	WouldGoNegative          Reason = "WOULD_GO_NEGATIVE"
	WaitlistEntryNotFound    Reason = "WAITLIST_ENTRY_NOT_FOUND"
	WaitlistAlreadyNotified  Reason = "WAITLIST_ALREADY_NOTIFIED"
	CannotNotifyNonWaiting   Reason = "CANNOT_NOTIFY_NON_WAITING"

	ResourceNotFound       Reason = "RESOURCE_NOT_FOUND"
	InvalidPartySize       Reason = "INVALID_PARTY_SIZE"
	InvalidAmount          Reason = "INVALID_AMOUNT"
	InvalidSchedule        Reason = "INVALID_SCHEDULE"
	InvalidTransition      Reason = "INVALID_TRANSITION"
	NotEnoughHeld          Reason = "NOT_ENOUGH_HELD_CAPACITY"
	HoldOwnedByAnotherUser Reason = "HOLD_OWNED_BY_ANOTHER_USER"
)

// Failure is an expected business failure with the counters a client needs
// to choose its next action.
type Failure struct {
	Reason       Reason `json:"reason"`
	Message      string `json:"message"`
	Available    *int   `json:"available,omitempty"`
	MaxGroupSize *int   `json:"max_group_size,omitempty"`
	MaxBlockable *int   `json:"max_blockable,omitempty"`
	Blocked      *int   `json:"blocked,omitempty"`
}

func New(reason Reason, format string, args ...interface{}) *Failure {
	return &Failure{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func (f *Failure) Error() string {
	return string(f.Reason) + ": " + f.Message
}

// Is matches any *Failure carrying the same reason, so sentinel values such
// as ErrDuplicateHold work with errors.Is.
func (f *Failure) Is(target error) bool {
	var other *Failure
	if errors.As(target, &other) {
		return other.Reason == f.Reason
	}
	return false
}

// WithAvailable attaches the current available count.
func (f *Failure) WithAvailable(n int) *Failure {
	f.Available = &n
	return f
}

func (f *Failure) WithMaxGroupSize(n int) *Failure {
	f.MaxGroupSize = &n
	return f
}

func (f *Failure) WithMaxBlockable(n int) *Failure {
	f.MaxBlockable = &n
	return f
}

func (f *Failure) WithBlocked(n int) *Failure {
	f.Blocked = &n
	return f
}

// As extracts a *Failure from err.
func As(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// ReasonOf returns the failure reason carried by err, or "".
func ReasonOf(err error) Reason {
	if f, ok := As(err); ok {
		return f.Reason
	}
	return ""
}

// Sentinels for errors.Is checks.
var (
	ErrReservationsDisabled     = &Failure{Reason: ReservationsDisabled}
	ErrPartyTooLarge            = &Failure{Reason: PartyTooLarge}
	ErrInsufficientCapacity     = &Failure{Reason: InsufficientCapacity}
	ErrDuplicateHold            = &Failure{Reason: DuplicateHold}
	ErrHoldNotFoundOrExpired    = &Failure{Reason: HoldNotFoundOrExpired}
	ErrNotEnoughBlockedCapacity = &Failure{Reason: NotEnoughBlockedCapacity}
	ErrWouldGoNegative          = &Failure{Reason: WouldGoNegative}
	ErrWaitlistEntryNotFound    = &Failure{Reason: WaitlistEntryNotFound}
	ErrWaitlistAlreadyNotified  = &Failure{Reason: WaitlistAlreadyNotified}
	ErrCannotNotifyNonWaiting   = &Failure{Reason: CannotNotifyNonWaiting}
	ErrResourceNotFound         = &Failure{Reason: ResourceNotFound}
)
