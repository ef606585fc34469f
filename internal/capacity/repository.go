package capacity

import (
	"context"
	"errors"
	"fmt"

	"venuecap/internal/shared/dbtx"
	"venuecap/internal/shared/failure"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type counter string

const (
	colAvailable counter = "available"
	colReserved  counter = "reserved"
	colHeld      counter = "held"
	colBlocked   counter = "blocked"
)

// maxDrainAttempts bounds the compare-and-swap loop of a clamped release
const maxDrainAttempts = 5

// Repository is the capacity ledger. Every mutation is a single conditional
// UPDATE against the resource row; a false result means the condition did not
// hold when the statement ran and nothing changed.
type Repository interface {
	GetRecord(ctx context.Context, id uuid.UUID) (*CapacityRecord, error)
	FindUnbalanced(ctx context.Context, limit int) ([]CapacityRecord, error)

	TryHold(ctx context.Context, id uuid.UUID, n int) (bool, error)
	ConfirmHeld(ctx context.Context, id uuid.UUID, n int) (bool, error)
	ReleaseHeld(ctx context.Context, id uuid.UUID, n int) (int, error)
	ReleaseReserved(ctx context.Context, id uuid.UUID, n int) (int, error)
	Block(ctx context.Context, id uuid.UUID, n int) (bool, error)
	Unblock(ctx context.Context, id uuid.UUID, n int) (bool, error)
	SetBlocked(ctx context.Context, id uuid.UUID, exact int) (bool, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, update SettingsUpdate) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetRecord(ctx context.Context, id uuid.UUID) (*CapacityRecord, error) {
	var rec CapacityRecord
	err := dbtx.Conn(ctx, r.db).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, failure.New(failure.ResourceNotFound, "resource %s not found", id)
		}
		return nil, fmt.Errorf("get capacity record: %w", err)
	}
	return &rec, nil
}

func (r *repository) FindUnbalanced(ctx context.Context, limit int) ([]CapacityRecord, error) {
	var recs []CapacityRecord
	err := dbtx.Conn(ctx, r.db).
		Where("available + reserved + held + blocked <> total_capacity OR available < 0 OR reserved < 0 OR held < 0 OR blocked < 0").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("find unbalanced records: %w", err)
	}
	return recs, nil
}

// TryHold moves n from available to held if the resource still takes
// reservations and has room.
func (r *repository) TryHold(ctx context.Context, id uuid.UUID, n int) (bool, error) {
	return r.move(ctx, id, colAvailable, colHeld, n, true)
}

func (r *repository) ConfirmHeld(ctx context.Context, id uuid.UUID, n int) (bool, error) {
	return r.move(ctx, id, colHeld, colReserved, n, false)
}

func (r *repository) ReleaseHeld(ctx context.Context, id uuid.UUID, n int) (int, error) {
	return r.drain(ctx, id, colHeld, n)
}

func (r *repository) ReleaseReserved(ctx context.Context, id uuid.UUID, n int) (int, error) {
	return r.drain(ctx, id, colReserved, n)
}

func (r *repository) Block(ctx context.Context, id uuid.UUID, n int) (bool, error) {
	return r.move(ctx, id, colAvailable, colBlocked, n, false)
}

func (r *repository) Unblock(ctx context.Context, id uuid.UUID, n int) (bool, error) {
	return r.move(ctx, id, colBlocked, colAvailable, n, false)
}

// SetBlocked pins blocked to exact and recomputes available from the other
// counters, provided the result is not negative.
func (r *repository) SetBlocked(ctx context.Context, id uuid.UUID, exact int) (bool, error) {
	res := dbtx.Conn(ctx, r.db).Model(&CapacityRecord{}).
		Where("id = ?", id).
		Where("total_capacity - reserved - held - ? >= 0", exact).
		Updates(map[string]interface{}{
			"blocked":   exact,
			"available": gorm.Expr("total_capacity - reserved - held - ?", exact),
		})
	if res.Error != nil {
		return false, fmt.Errorf("set blocked capacity: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) UpdateSettings(ctx context.Context, id uuid.UUID, update SettingsUpdate) (bool, error) {
	updates := make(map[string]interface{})
	if update.AllowsReservations != nil {
		updates["allows_reservations"] = *update.AllowsReservations
	}
	if update.MaxGroupSize != nil {
		updates["max_group_size"] = *update.MaxGroupSize
	}
	if len(updates) == 0 {
		return true, nil
	}
	res := dbtx.Conn(ctx, r.db).Model(&CapacityRecord{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("update capacity settings: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// move shifts n units between two counters in one statement, guarded by the
// source counter holding at least n.
func (r *repository) move(ctx context.Context, id uuid.UUID, from, to counter, n int, requireReservations bool) (bool, error) {
	q := dbtx.Conn(ctx, r.db).Model(&CapacityRecord{}).
		Where("id = ?", id).
		Where(string(from)+" >= ?", n)
	if requireReservations {
		q = q.Where("allows_reservations = ?", true)
	}

	res := q.Updates(map[string]interface{}{
		string(from): gorm.Expr(string(from)+" - ?", n),
		string(to):   gorm.Expr(string(to)+" + ?", n),
	})
	if res.Error != nil {
		return false, fmt.Errorf("move %s to %s: %w", from, to, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// drain returns up to n units from a counter to available and reports how
// many it actually moved. Less than n means the counter had drifted below
// what callers believed it held.
func (r *repository) drain(ctx context.Context, id uuid.UUID, from counter, n int) (int, error) {
	ok, err := r.move(ctx, id, from, colAvailable, n, false)
	if err != nil {
		return 0, err
	}
	if ok {
		return n, nil
	}

	for attempt := 0; attempt < maxDrainAttempts; attempt++ {
		rec, err := r.GetRecord(ctx, id)
		if err != nil {
			return 0, err
		}
		have := rec.value(from)
		if have <= 0 {
			return 0, nil
		}
		amount := min(have, n)

		// Compare-and-swap on the observed value
		res := dbtx.Conn(ctx, r.db).Model(&CapacityRecord{}).
			Where("id = ?", id).
			Where(string(from)+" = ?", have).
			Updates(map[string]interface{}{
				string(from):         gorm.Expr(string(from)+" - ?", amount),
				string(colAvailable): gorm.Expr(string(colAvailable)+" + ?", amount),
			})
		if res.Error != nil {
			return 0, fmt.Errorf("clamped release of %s: %w", from, res.Error)
		}
		if res.RowsAffected == 1 {
			return amount, nil
		}
	}
	return 0, fmt.Errorf("clamped release of %s on %s: counter kept changing", from, id)
}

func (r *CapacityRecord) value(c counter) int {
	switch c {
	case colAvailable:
		return r.Available
	case colReserved:
		return r.Reserved
	case colHeld:
		return r.Held
	case colBlocked:
		return r.Blocked
	}
	return 0
}
