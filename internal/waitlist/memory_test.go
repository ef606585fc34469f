package waitlist_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"venuecap/internal/shared/failure"
	"venuecap/internal/waitlist"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*waitlist.WaitlistEntry
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{entries: make(map[uuid.UUID]*waitlist.WaitlistEntry)}
}

func (r *memoryRepository) Create(_ context.Context, entry *waitlist.WaitlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.UserID == entry.UserID && e.ResourceID == entry.ResourceID && e.IsActive() {
			return waitlist.ErrAlreadyQueued
		}
	}
	cp := *entry
	r.entries[entry.ID] = &cp
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*waitlist.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, failure.New(failure.WaitlistEntryNotFound, "waitlist entry %s not found", id)
	}
	cp := *e
	return &cp, nil
}

func (r *memoryRepository) FindActive(_ context.Context, userID, resourceID uuid.UUID) (*waitlist.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.UserID == userID && e.ResourceID == resourceID && e.IsActive() {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) Apply(_ context.Context, id uuid.UUID, t waitlist.Transition) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, s := range t.From {
		if e.Status == s {
			allowed = true
		}
	}
	if !allowed {
		return false, nil
	}

	e.Status = t.To
	e.UpdatedAt = t.At
	if t.To == waitlist.StatusNotified {
		at := t.At
		e.NotifiedAt = &at
		e.NotificationExpiresAt = t.NotificationExpiresAt
		e.NotifyCount++
	}
	if t.ClearNotification {
		e.NotifiedAt = nil
		e.NotificationExpiresAt = nil
	}
	if t.Requeue {
		e.QueuedAt = t.At
	}
	if t.ReservationID != nil {
		rid := *t.ReservationID
		e.ReservationID = &rid
	}
	return true, nil
}

func (r *memoryRepository) waiting(resourceID uuid.UUID) []waitlist.WaitlistEntry {
	var out []waitlist.WaitlistEntry
	for _, e := range r.entries {
		if e.ResourceID == resourceID && e.Status == waitlist.StatusWaiting {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return fifoLess(&out[i], &out[j]) })
	return out
}

// fifoLess mirrors the repository's queued_at, created_at, id ordering
func fifoLess(a, b *waitlist.WaitlistEntry) bool {
	if !a.QueuedAt.Equal(b.QueuedAt) {
		return a.QueuedAt.Before(b.QueuedAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

func (r *memoryRepository) CountWaitingUpTo(_ context.Context, entry *waitlist.WaitlistEntry) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.waiting(entry.ResourceID) {
		if !fifoLess(entry, &e) {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepository) NextWaiting(_ context.Context, resourceID uuid.UUID, maxPartySize *int, accessibleOnly bool) (*waitlist.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.waiting(resourceID) {
		if maxPartySize != nil && e.PartySize > *maxPartySize {
			continue
		}
		if accessibleOnly && !e.RequiresAccessibility {
			continue
		}
		return &e, nil
	}
	return nil, nil
}

func (r *memoryRepository) ListWaiting(_ context.Context, resourceID uuid.UUID) ([]waitlist.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.waiting(resourceID), nil
}

func (r *memoryRepository) SumWaitingPartySize(_ context.Context, resourceID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, e := range r.waiting(resourceID) {
		total += e.PartySize
	}
	return total, nil
}

func (r *memoryRepository) CountByStatus(_ context.Context, resourceID uuid.UUID) (map[waitlist.Status]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[waitlist.Status]int)
	for _, e := range r.entries {
		if e.ResourceID == resourceID {
			counts[e.Status]++
		}
	}
	return counts, nil
}

func (r *memoryRepository) ListLapsedNotifications(_ context.Context, now time.Time, limit int) ([]waitlist.WaitlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []waitlist.WaitlistEntry
	for _, e := range r.entries {
		if e.NotificationLapsed(now) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].NotificationExpiresAt.Before(*out[j].NotificationExpiresAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
