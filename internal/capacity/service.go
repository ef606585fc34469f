package capacity

import (
	"context"
	"errors"
	"log/slog"

	"venuecap/internal/shared/config"
	"venuecap/internal/shared/failure"
	"venuecap/pkg/cache"
	"venuecap/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	SetCacheService(cacheService cache.Service)

	// Read path
	CheckAvailability(ctx context.Context, resourceID uuid.UUID, partySize int) (*AvailabilityResult, error)
	GetCapacityStats(ctx context.Context, resourceID uuid.UUID, skipCache bool) (*CapacityStats, error)
	AuditInvariant(ctx context.Context, limit int) ([]CapacityRecord, error)

	// Administrative mutations
	BlockCapacity(ctx context.Context, resourceID uuid.UUID, amount int) (*CapacityStats, error)
	UnblockCapacity(ctx context.Context, resourceID uuid.UUID, amount int) (*CapacityStats, error)
	SetBlockedCapacity(ctx context.Context, resourceID uuid.UUID, exact int) (*CapacityStats, error)
	ReleaseReservedCapacity(ctx context.Context, resourceID uuid.UUID, partySize int) (*ReleaseResult, error)
	UpdateSettings(ctx context.Context, resourceID uuid.UUID, update SettingsUpdate) (*CapacityStats, error)

	// Hold primitives. They join a transaction carried by ctx and do not touch
	// the cache; the caller invalidates once its transaction has committed.
	HoldCapacity(ctx context.Context, resourceID uuid.UUID, partySize int) error
	ConfirmHeldCapacity(ctx context.Context, resourceID uuid.UUID, partySize int) error
	ReleaseHeldCapacity(ctx context.Context, resourceID uuid.UUID, partySize int) (int, error)
	Invalidate(ctx context.Context, resourceID uuid.UUID)
}

type service struct {
	repo  Repository
	cfg   *config.Config
	stats *StatsCache
	log   *logger.Logger
}

func NewService(repo Repository, cfg *config.Config, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo: repo,
		cfg:  cfg,
		log:  log.WithComponent("capacity"),
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.stats = NewStatsCache(cacheService, s.cfg.Capacity.CacheTTL, s.log)
}

//  READ PATH

func (s *service) CheckAvailability(ctx context.Context, resourceID uuid.UUID, partySize int) (*AvailabilityResult, error) {
	stats, err := s.GetCapacityStats(ctx, resourceID, false)
	if err != nil {
		return nil, err
	}
	return evaluate(stats, partySize), nil
}

func (s *service) GetCapacityStats(ctx context.Context, resourceID uuid.UUID, skipCache bool) (*CapacityStats, error) {
	if !skipCache {
		if stats, ok := s.stats.Get(ctx, resourceID); ok {
			return stats, nil
		}
	}

	rec, err := s.repo.GetRecord(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	stats := rec.ToStats()
	s.stats.Set(ctx, stats)
	return stats, nil
}

func (s *service) AuditInvariant(ctx context.Context, limit int) ([]CapacityRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	recs, err := s.repo.FindUnbalanced(ctx, limit)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		s.log.ErrorContext(ctx, "capacity invariant violated",
			slog.String("resource_id", rec.ID.String()),
			slog.Int("total", rec.TotalCapacity),
			slog.Int("available", rec.Available),
			slog.Int("reserved", rec.Reserved),
			slog.Int("held", rec.Held),
			slog.Int("blocked", rec.Blocked),
		)
	}
	return recs, nil
}

//  ADMINISTRATIVE MUTATIONS

func (s *service) BlockCapacity(ctx context.Context, resourceID uuid.UUID, amount int) (*CapacityStats, error) {
	if amount <= 0 {
		return nil, failure.New(failure.InvalidAmount, "amount to block must be positive")
	}
	defer s.stats.Invalidate(ctx, resourceID)

	ok, err := s.repo.Block(ctx, resourceID, amount)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.GetRecord(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, failure.New(failure.InsufficientCapacity, "cannot block %d, only %d available", amount, rec.Available).
			WithAvailable(rec.Available)
	}
	return rec.ToStats(), nil
}

func (s *service) UnblockCapacity(ctx context.Context, resourceID uuid.UUID, amount int) (*CapacityStats, error) {
	if amount <= 0 {
		return nil, failure.New(failure.InvalidAmount, "amount to unblock must be positive")
	}
	defer s.stats.Invalidate(ctx, resourceID)

	ok, err := s.repo.Unblock(ctx, resourceID, amount)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.GetRecord(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, failure.New(failure.NotEnoughBlockedCapacity, "cannot unblock %d, only %d blocked", amount, rec.Blocked).
			WithBlocked(rec.Blocked).
			WithAvailable(rec.Available)
	}
	return rec.ToStats(), nil
}

func (s *service) SetBlockedCapacity(ctx context.Context, resourceID uuid.UUID, exact int) (*CapacityStats, error) {
	if exact < 0 {
		return nil, failure.New(failure.InvalidAmount, "blocked capacity cannot be negative")
	}
	defer s.stats.Invalidate(ctx, resourceID)

	ok, err := s.repo.SetBlocked(ctx, resourceID, exact)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.GetRecord(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		maxBlockable := rec.TotalCapacity - rec.Reserved - rec.Held
		return nil, failure.New(failure.WouldGoNegative, "blocking %d would leave negative availability, at most %d can be blocked", exact, maxBlockable).
			WithMaxBlockable(maxBlockable).
			WithAvailable(rec.Available)
	}
	return rec.ToStats(), nil
}

// ReleaseReservedCapacity returns confirmed capacity to available, e.g. after
// a reservation is cancelled.
func (s *service) ReleaseReservedCapacity(ctx context.Context, resourceID uuid.UUID, partySize int) (*ReleaseResult, error) {
	if partySize <= 0 {
		return nil, failure.New(failure.InvalidPartySize, "party size must be at least 1")
	}
	defer s.stats.Invalidate(ctx, resourceID)

	released, err := s.repo.ReleaseReserved(ctx, resourceID, partySize)
	if err != nil {
		return nil, err
	}
	result := &ReleaseResult{Requested: partySize, Released: released, Clamped: released < partySize}
	if result.Clamped {
		s.log.LogCapacityClamped(ctx, resourceID.String(), string(colReserved), partySize, released)
	}

	rec, err := s.repo.GetRecord(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	result.Stats = rec.ToStats()
	return result, nil
}

func (s *service) UpdateSettings(ctx context.Context, resourceID uuid.UUID, update SettingsUpdate) (*CapacityStats, error) {
	if update.MaxGroupSize != nil && *update.MaxGroupSize < 0 {
		return nil, failure.New(failure.InvalidAmount, "max group size cannot be negative")
	}
	defer s.stats.Invalidate(ctx, resourceID)

	ok, err := s.repo.UpdateSettings(ctx, resourceID, update)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, failure.New(failure.ResourceNotFound, "resource %s not found", resourceID)
	}
	rec, err := s.repo.GetRecord(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	return rec.ToStats(), nil
}

//  HOLD PRIMITIVES

func (s *service) HoldCapacity(ctx context.Context, resourceID uuid.UUID, partySize int) error {
	ok, err := s.repo.TryHold(ctx, resourceID, partySize)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	// Lost the conditional update: re-read to say why
	rec, err := s.repo.GetRecord(ctx, resourceID)
	if err != nil {
		return err
	}
	res := evaluate(rec.ToStats(), partySize)
	if res.OK {
		res.OK, res.Reason = false, failure.InsufficientCapacity
	}
	return res.Failure(partySize)
}

func (s *service) ConfirmHeldCapacity(ctx context.Context, resourceID uuid.UUID, partySize int) error {
	ok, err := s.repo.ConfirmHeld(ctx, resourceID, partySize)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	rec, err := s.repo.GetRecord(ctx, resourceID)
	if err != nil {
		return err
	}
	s.log.ErrorContext(ctx, "held capacity below confirmed hold",
		slog.String("resource_id", resourceID.String()),
		slog.Int("held", rec.Held),
		slog.Int("party_size", partySize),
	)
	return failure.New(failure.NotEnoughHeld, "resource holds %d but hold needs %d", rec.Held, partySize).
		WithAvailable(rec.Available)
}

func (s *service) ReleaseHeldCapacity(ctx context.Context, resourceID uuid.UUID, partySize int) (int, error) {
	released, err := s.repo.ReleaseHeld(ctx, resourceID, partySize)
	if err != nil {
		var f *failure.Failure
		if errors.As(err, &f) && f.Reason == failure.ResourceNotFound {
			// Resource gone, nothing left to return capacity to
			s.log.WarnContext(ctx, "releasing hold on missing resource", slog.String("resource_id", resourceID.String()))
			return 0, nil
		}
		return 0, err
	}
	if released < partySize {
		s.log.LogCapacityClamped(ctx, resourceID.String(), string(colHeld), partySize, released)
	}
	return released, nil
}

func (s *service) Invalidate(ctx context.Context, resourceID uuid.UUID) {
	s.stats.Invalidate(ctx, resourceID)
}
