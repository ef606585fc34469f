package waitlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venuecap/internal/shared/dbtx"
	"venuecap/internal/shared/failure"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface defines the contract for waitlist data operations
type Repository interface {
	Create(ctx context.Context, entry *WaitlistEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error)
	FindActive(ctx context.Context, userID, resourceID uuid.UUID) (*WaitlistEntry, error)

	// Apply performs t as one conditional UPDATE and reports whether the row
	// was still in one of t.From.
	Apply(ctx context.Context, id uuid.UUID, t Transition) (bool, error)

	CountWaitingUpTo(ctx context.Context, entry *WaitlistEntry) (int, error)
	NextWaiting(ctx context.Context, resourceID uuid.UUID, maxPartySize *int, accessibleOnly bool) (*WaitlistEntry, error)
	ListWaiting(ctx context.Context, resourceID uuid.UUID) ([]WaitlistEntry, error)
	SumWaitingPartySize(ctx context.Context, resourceID uuid.UUID) (int, error)
	CountByStatus(ctx context.Context, resourceID uuid.UUID) (map[Status]int, error)
	ListLapsedNotifications(ctx context.Context, now time.Time, limit int) ([]WaitlistEntry, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// fifoOrder breaks queued_at ties by creation then id so the order is total
const fifoOrder = "queued_at ASC, created_at ASC, id ASC"

func (r *repository) Create(ctx context.Context, entry *WaitlistEntry) error {
	if err := dbtx.Conn(ctx, r.db).Create(entry).Error; err != nil {
		if dbtx.IsUniqueViolation(err) {
			return ErrAlreadyQueued
		}
		return fmt.Errorf("create waitlist entry: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*WaitlistEntry, error) {
	var entry WaitlistEntry
	err := dbtx.Conn(ctx, r.db).Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, failure.New(failure.WaitlistEntryNotFound, "waitlist entry %s not found", id)
		}
		return nil, fmt.Errorf("get waitlist entry: %w", err)
	}
	return &entry, nil
}

func (r *repository) FindActive(ctx context.Context, userID, resourceID uuid.UUID) (*WaitlistEntry, error) {
	var entry WaitlistEntry
	err := dbtx.Conn(ctx, r.db).
		Where("user_id = ? AND resource_id = ? AND status IN ?", userID, resourceID, []Status{StatusWaiting, StatusNotified}).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active waitlist entry: %w", err)
	}
	return &entry, nil
}

func (r *repository) Apply(ctx context.Context, id uuid.UUID, t Transition) (bool, error) {
	updates := map[string]interface{}{
		"status":     t.To,
		"updated_at": t.At,
	}
	if t.To == StatusNotified {
		updates["notified_at"] = t.At
		updates["notification_expires_at"] = t.NotificationExpiresAt
		updates["notify_count"] = gorm.Expr("notify_count + 1")
	}
	if t.ClearNotification {
		updates["notified_at"] = nil
		updates["notification_expires_at"] = nil
	}
	if t.Requeue {
		updates["queued_at"] = t.At
	}
	if t.ReservationID != nil {
		updates["reservation_id"] = *t.ReservationID
	}

	res := dbtx.Conn(ctx, r.db).Model(&WaitlistEntry{}).
		Where("id = ? AND status IN ?", id, t.From).
		Updates(updates)
	if res.Error != nil {
		if dbtx.IsUniqueViolation(res.Error) {
			return false, ErrAlreadyQueued
		}
		return false, fmt.Errorf("transition waitlist entry to %s: %w", t.To, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// CountWaitingUpTo counts the waiting entries of the entry's resource that
// sort at or before it in fifoOrder.
func (r *repository) CountWaitingUpTo(ctx context.Context, entry *WaitlistEntry) (int, error) {
	var count int64
	err := dbtx.Conn(ctx, r.db).Model(&WaitlistEntry{}).
		Where("resource_id = ? AND status = ?", entry.ResourceID, StatusWaiting).
		Where("(queued_at, created_at, id) <= (?, ?, ?)", entry.QueuedAt, entry.CreatedAt, entry.ID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count waiting entries: %w", err)
	}
	return int(count), nil
}

func (r *repository) NextWaiting(ctx context.Context, resourceID uuid.UUID, maxPartySize *int, accessibleOnly bool) (*WaitlistEntry, error) {
	query := dbtx.Conn(ctx, r.db).Where("resource_id = ? AND status = ?", resourceID, StatusWaiting)
	if maxPartySize != nil {
		query = query.Where("party_size <= ?", *maxPartySize)
	}
	if accessibleOnly {
		query = query.Where("requires_accessibility = ?", true)
	}

	var entry WaitlistEntry
	err := query.Order(fifoOrder).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get next waiting entry: %w", err)
	}
	return &entry, nil
}

func (r *repository) ListWaiting(ctx context.Context, resourceID uuid.UUID) ([]WaitlistEntry, error) {
	var entries []WaitlistEntry
	err := dbtx.Conn(ctx, r.db).
		Where("resource_id = ? AND status = ?", resourceID, StatusWaiting).
		Order(fifoOrder).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list waiting entries: %w", err)
	}
	return entries, nil
}

func (r *repository) SumWaitingPartySize(ctx context.Context, resourceID uuid.UUID) (int, error) {
	var total int64
	err := dbtx.Conn(ctx, r.db).Model(&WaitlistEntry{}).
		Where("resource_id = ? AND status = ?", resourceID, StatusWaiting).
		Select("COALESCE(SUM(party_size), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum waiting party size: %w", err)
	}
	return int(total), nil
}

func (r *repository) CountByStatus(ctx context.Context, resourceID uuid.UUID) (map[Status]int, error) {
	var rows []struct {
		Status Status
		Count  int
	}
	err := dbtx.Conn(ctx, r.db).Model(&WaitlistEntry{}).
		Select("status, COUNT(*) AS count").
		Where("resource_id = ?", resourceID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count waitlist entries by status: %w", err)
	}

	counts := make(map[Status]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *repository) ListLapsedNotifications(ctx context.Context, now time.Time, limit int) ([]WaitlistEntry, error) {
	var entries []WaitlistEntry
	err := dbtx.Conn(ctx, r.db).
		Where("status = ? AND notification_expires_at IS NOT NULL AND notification_expires_at <= ?", StatusNotified, now).
		Order("notification_expires_at ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list lapsed notifications: %w", err)
	}
	return entries, nil
}
