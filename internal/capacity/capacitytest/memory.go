// Package capacitytest provides an in-memory capacity ledger for tests.
package capacitytest

import (
	"context"
	"sync"

	"venuecap/internal/capacity"
	"venuecap/internal/shared/failure"

	"github.com/google/uuid"
)

// Repository is a mutex-guarded capacity.Repository with the same
// conditional semantics as the SQL ledger.
type Repository struct {
	mu      sync.Mutex
	records map[uuid.UUID]*capacity.CapacityRecord

	// Reads counts GetRecord calls, so tests can observe cache hits
	Reads int
}

func NewRepository() *Repository {
	return &Repository{records: make(map[uuid.UUID]*capacity.CapacityRecord)}
}

// Add registers a resource with all of its capacity available.
func (r *Repository) Add(total, maxGroupSize int, allowsReservations bool) uuid.UUID {
	id := uuid.New()
	r.Put(capacity.CapacityRecord{
		ID:                 id,
		TotalCapacity:      total,
		Available:          total,
		AllowsReservations: allowsReservations,
		MaxGroupSize:       maxGroupSize,
	})
	return id
}

// Put stores rec as is, drift included.
func (r *Repository) Put(rec capacity.CapacityRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := rec
	r.records[rec.ID] = &cp
}

// Snapshot returns a copy of the record without counting a read.
func (r *Repository) Snapshot(id uuid.UUID) capacity.CapacityRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[id]; ok {
		return *rec
	}
	return capacity.CapacityRecord{}
}

func (r *Repository) GetRecord(_ context.Context, id uuid.UUID) (*capacity.CapacityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reads++
	rec, ok := r.records[id]
	if !ok {
		return nil, failure.New(failure.ResourceNotFound, "resource %s not found", id)
	}
	cp := *rec
	return &cp, nil
}

func (r *Repository) FindUnbalanced(_ context.Context, limit int) ([]capacity.CapacityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []capacity.CapacityRecord
	for _, rec := range r.records {
		if !rec.Balanced() {
			out = append(out, *rec)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *Repository) TryHold(_ context.Context, id uuid.UUID, n int) (bool, error) {
	return r.apply(id, func(rec *capacity.CapacityRecord) bool {
		if !rec.AllowsReservations || rec.Available < n {
			return false
		}
		rec.Available -= n
		rec.Held += n
		return true
	})
}

func (r *Repository) ConfirmHeld(_ context.Context, id uuid.UUID, n int) (bool, error) {
	return r.apply(id, func(rec *capacity.CapacityRecord) bool {
		if rec.Held < n {
			return false
		}
		rec.Held -= n
		rec.Reserved += n
		return true
	})
}

func (r *Repository) ReleaseHeld(_ context.Context, id uuid.UUID, n int) (int, error) {
	var released int
	_, err := r.apply(id, func(rec *capacity.CapacityRecord) bool {
		released = min(max(rec.Held, 0), n)
		rec.Held -= released
		rec.Available += released
		return true
	})
	return released, err
}

func (r *Repository) ReleaseReserved(_ context.Context, id uuid.UUID, n int) (int, error) {
	var released int
	_, err := r.apply(id, func(rec *capacity.CapacityRecord) bool {
		released = min(max(rec.Reserved, 0), n)
		rec.Reserved -= released
		rec.Available += released
		return true
	})
	return released, err
}

func (r *Repository) Block(_ context.Context, id uuid.UUID, n int) (bool, error) {
	return r.apply(id, func(rec *capacity.CapacityRecord) bool {
		if rec.Available < n {
			return false
		}
		rec.Available -= n
		rec.Blocked += n
		return true
	})
}

func (r *Repository) Unblock(_ context.Context, id uuid.UUID, n int) (bool, error) {
	return r.apply(id, func(rec *capacity.CapacityRecord) bool {
		if rec.Blocked < n {
			return false
		}
		rec.Blocked -= n
		rec.Available += n
		return true
	})
}

func (r *Repository) SetBlocked(_ context.Context, id uuid.UUID, exact int) (bool, error) {
	return r.apply(id, func(rec *capacity.CapacityRecord) bool {
		avail := rec.TotalCapacity - rec.Reserved - rec.Held - exact
		if avail < 0 {
			return false
		}
		rec.Blocked = exact
		rec.Available = avail
		return true
	})
}

func (r *Repository) UpdateSettings(_ context.Context, id uuid.UUID, update capacity.SettingsUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return false, nil
	}
	if update.AllowsReservations != nil {
		rec.AllowsReservations = *update.AllowsReservations
	}
	if update.MaxGroupSize != nil {
		rec.MaxGroupSize = *update.MaxGroupSize
	}
	return true, nil
}

func (r *Repository) apply(id uuid.UUID, fn func(rec *capacity.CapacityRecord) bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return false, failure.New(failure.ResourceNotFound, "resource %s not found", id)
	}
	return fn(rec), nil
}
