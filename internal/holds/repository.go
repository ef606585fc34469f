package holds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venuecap/internal/shared/dbtx"
	"venuecap/internal/shared/failure"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists holds in capacity_holds. Lookups return nil, nil when
// no row matches.
type Repository interface {
	Create(ctx context.Context, hold *Hold) error
	GetByID(ctx context.Context, id uuid.UUID) (*Hold, error)
	FindForOwner(ctx context.Context, ownerID, resourceID uuid.UUID) (*Hold, error)
	Delete(ctx context.Context, id uuid.UUID) (*Hold, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]Hold, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]Hold, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, hold *Hold) error {
	if err := dbtx.Conn(ctx, r.db).Create(hold).Error; err != nil {
		if dbtx.IsUniqueViolation(err) {
			return failure.New(failure.DuplicateHold, "an active hold already exists for this resource")
		}
		return fmt.Errorf("create hold: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Hold, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *repository) FindForOwner(ctx context.Context, ownerID, resourceID uuid.UUID) (*Hold, error) {
	return r.first(ctx, "owner_id = ? AND resource_id = ?", ownerID, resourceID)
}

func (r *repository) first(ctx context.Context, query string, args ...interface{}) (*Hold, error) {
	var hold Hold
	err := dbtx.Conn(ctx, r.db).Where(query, args...).First(&hold).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get hold: %w", err)
	}
	return &hold, nil
}

// Delete removes the hold and returns the removed row. Exactly one concurrent
// caller gets the row back; everyone else sees nil.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) (*Hold, error) {
	var deleted []Hold
	err := dbtx.Conn(ctx, r.db).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Delete(&deleted).Error
	if err != nil {
		return nil, fmt.Errorf("delete hold: %w", err)
	}
	if len(deleted) == 0 {
		return nil, nil
	}
	return &deleted[0], nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]Hold, error) {
	var holds []Hold
	err := dbtx.Conn(ctx, r.db).
		Where("owner_id = ? AND expires_at > ?", ownerID, now).
		Order("created_at ASC").
		Find(&holds).Error
	if err != nil {
		return nil, fmt.Errorf("list holds for owner: %w", err)
	}
	return holds, nil
}

func (r *repository) ListExpired(ctx context.Context, now time.Time, limit int) ([]Hold, error) {
	var holds []Hold
	err := dbtx.Conn(ctx, r.db).
		Where("expires_at <= ?", now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&holds).Error
	if err != nil {
		return nil, fmt.Errorf("list expired holds: %w", err)
	}
	return holds, nil
}
