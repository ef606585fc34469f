package resources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"venuecap/internal/shared/dbtx"
	"venuecap/internal/shared/failure"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, resource *Resource) error
	GetByID(ctx context.Context, id uuid.UUID) (*Resource, error)
	GetAll(ctx context.Context, query ResourceListQuery) ([]Resource, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, resource *Resource) error {
	if err := dbtx.Conn(ctx, r.db).Create(resource).Error; err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Resource, error) {
	var resource Resource
	err := dbtx.Conn(ctx, r.db).Where("id = ?", id).First(&resource).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, failure.New(failure.ResourceNotFound, "resource %s not found", id)
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return &resource, nil
}

func (r *repository) GetAll(ctx context.Context, query ResourceListQuery) ([]Resource, int64, error) {
	var resources []Resource
	var totalCount int64

	db := dbtx.Conn(ctx, r.db).Model(&Resource{})

	if query.Venue != "" {
		db = db.Where("LOWER(venue) LIKE ?", "%"+strings.ToLower(query.Venue)+"%")
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.DateFrom != "" {
		if from, err := time.Parse("2006-01-02", query.DateFrom); err == nil {
			db = db.Where("starts_at >= ?", from)
		}
	}
	if query.DateTo != "" {
		if to, err := time.Parse("2006-01-02", query.DateTo); err == nil {
			// Include the whole day
			db = db.Where("starts_at < ?", to.Add(24*time.Hour))
		}
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("count resources: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	err := db.Order("starts_at ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&resources).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list resources: %w", err)
	}

	return resources, totalCount, nil
}
