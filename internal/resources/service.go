package resources

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"venuecap/internal/capacity"
	"venuecap/internal/shared/constants"
	"venuecap/internal/shared/failure"
	"venuecap/pkg/cache"
	"venuecap/pkg/clock"
	"venuecap/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	SetCacheService(cacheService cache.Service)
	CreateResource(ctx context.Context, adminID uuid.UUID, req CreateResourceRequest) (*ResourceResponse, error)
	GetResource(ctx context.Context, id uuid.UUID) (*ResourceResponse, error)
	ListResources(ctx context.Context, query ResourceListQuery) (*PaginatedResources, error)
}

// CapacityReader supplies live counters for resource details
type CapacityReader interface {
	GetCapacityStats(ctx context.Context, resourceID uuid.UUID, skipCache bool) (*capacity.CapacityStats, error)
}

type service struct {
	repo         Repository
	capacity     CapacityReader
	cacheService cache.Service
	clock        clock.Clock
	log          *logger.Logger
}

func NewService(repo Repository, capacityReader CapacityReader, clk clock.Clock, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:     repo,
		capacity: capacityReader,
		clock:    clk,
		log:      log.WithComponent("resources"),
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// CreateResource schedules a resource and initializes its capacity row with
// everything available apart from the initial block.
func (s *service) CreateResource(ctx context.Context, adminID uuid.UUID, req CreateResourceRequest) (*ResourceResponse, error) {
	if !req.StartsAt.After(s.clock.Now()) {
		return nil, failure.New(failure.InvalidSchedule, "resource must start in the future")
	}
	if req.InitialBlocked > req.TotalCapacity {
		return nil, failure.New(failure.WouldGoNegative, "cannot block %d of %d", req.InitialBlocked, req.TotalCapacity).
			WithMaxBlockable(req.TotalCapacity)
	}

	allows := true
	if req.AllowsReservations != nil {
		allows = *req.AllowsReservations
	}

	resource := &Resource{
		Name:               req.Name,
		Venue:              req.Venue,
		Description:        req.Description,
		StartsAt:           req.StartsAt.UTC(),
		Status:             ResourceStatusScheduled,
		TotalCapacity:      req.TotalCapacity,
		Available:          req.TotalCapacity - req.InitialBlocked,
		Blocked:            req.InitialBlocked,
		AllowsReservations: allows,
		MaxGroupSize:       req.MaxGroupSize,
		CreatedBy:          adminID,
	}

	if err := s.repo.Create(ctx, resource); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "resource scheduled",
		slog.String("resource_id", resource.ID.String()),
		slog.Int("total_capacity", resource.TotalCapacity),
		slog.Int("blocked", resource.Blocked),
	)

	if s.cacheService != nil {
		if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_RESOURCES_LIST); err != nil {
			s.log.WarnContext(ctx, "failed to invalidate resource list cache", slog.String("error", err.Error()))
		}
	}

	response := resource.ToResponse()
	return &response, nil
}

func (s *service) GetResource(ctx context.Context, id uuid.UUID) (*ResourceResponse, error) {
	cacheKey := constants.BuildResourceDetailKey(id.String())

	var response ResourceResponse
	cached := false
	if s.cacheService != nil {
		cached = s.cacheService.Get(ctx, cacheKey, &response) == nil
	}

	if !cached {
		resource, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		response = resource.ToResponse()
		if s.cacheService != nil {
			if err := s.cacheService.Set(ctx, cacheKey, response, constants.TTL_RESOURCE_DETAIL); err != nil {
				s.log.WarnContext(ctx, "failed to cache resource", slog.String("error", err.Error()))
			}
		}
	}

	// Details are long-lived, counters are not
	if s.capacity != nil {
		stats, err := s.capacity.GetCapacityStats(ctx, id, false)
		if err != nil {
			return nil, err
		}
		response.Capacity = stats
	}

	return &response, nil
}

func (s *service) ListResources(ctx context.Context, query ResourceListQuery) (*PaginatedResources, error) {
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 10
	}

	filters := fmt.Sprintf("venue:%s:status:%s:from:%s:to:%s", query.Venue, query.Status, query.DateFrom, query.DateTo)
	cacheKey := constants.BuildResourceListKey(query.Page, query.Limit, filters)

	if s.cacheService != nil {
		var cached PaginatedResources
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	items, total, err := s.repo.GetAll(ctx, query)
	if err != nil {
		return nil, err
	}

	responses := make([]ResourceResponse, len(items))
	for i := range items {
		responses[i] = items[i].ToResponse()
	}

	result := &PaginatedResources{
		Resources:  responses,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(query.Limit))),
	}

	if s.cacheService != nil {
		if err := s.cacheService.Set(ctx, cacheKey, result, constants.TTL_RESOURCES_LIST); err != nil {
			s.log.WarnContext(ctx, "failed to cache resource list", slog.String("error", err.Error()))
		}
	}

	return result, nil
}
