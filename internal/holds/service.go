package holds

import (
	"context"
	"log/slog"

	"venuecap/internal/capacity"
	"venuecap/internal/notifications"
	"venuecap/internal/shared/config"
	"venuecap/internal/shared/dbtx"
	"venuecap/internal/shared/failure"
	"venuecap/pkg/clock"
	"venuecap/pkg/logger"

	"github.com/google/uuid"
)

// Ledger is the part of the capacity service a hold needs. The hold methods
// join the transaction in ctx; Invalidate runs after commit.
type Ledger interface {
	CheckAvailability(ctx context.Context, resourceID uuid.UUID, partySize int) (*capacity.AvailabilityResult, error)
	HoldCapacity(ctx context.Context, resourceID uuid.UUID, partySize int) error
	ConfirmHeldCapacity(ctx context.Context, resourceID uuid.UUID, partySize int) error
	ReleaseHeldCapacity(ctx context.Context, resourceID uuid.UUID, partySize int) (int, error)
	Invalidate(ctx context.Context, resourceID uuid.UUID)
}

type Service interface {
	SetGuard(guard *Guard)
	SetPublisher(publisher notifications.Publisher)

	CreateHold(ctx context.Context, resourceID, ownerID uuid.UUID, partySize int) (*Hold, error)
	GetHold(ctx context.Context, holdID uuid.UUID) (*Hold, error)
	ConfirmHold(ctx context.Context, holdID uuid.UUID) (*Hold, error)
	CancelHold(ctx context.Context, holdID uuid.UUID) (*Hold, error)
	GetUserHolds(ctx context.Context, ownerID uuid.UUID) ([]Hold, error)

	// ExpireHolds releases up to limit overdue holds, each in its own
	// transaction.
	ExpireHolds(ctx context.Context, limit int) (*SweepResult, error)
}

type service struct {
	repo      Repository
	ledger    Ledger
	tx        dbtx.Manager
	clock     clock.Clock
	cfg       *config.Config
	guard     *Guard
	publisher notifications.Publisher
	log       *logger.Logger
}

func NewService(repo Repository, ledger Ledger, tx dbtx.Manager, clk clock.Clock, cfg *config.Config, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &service{
		repo:      repo,
		ledger:    ledger,
		tx:        tx,
		clock:     clk,
		cfg:       cfg,
		publisher: notifications.NoopPublisher{},
		log:       log.WithComponent("holds"),
	}
}

func (s *service) SetGuard(guard *Guard) {
	s.guard = guard
}

func (s *service) SetPublisher(publisher notifications.Publisher) {
	s.publisher = publisher
}

func holdNotFound(holdID uuid.UUID) *failure.Failure {
	return failure.New(failure.HoldNotFoundOrExpired, "hold %s not found or expired", holdID)
}

func duplicateHold(existing *Hold) *failure.Failure {
	return failure.New(failure.DuplicateHold, "hold %s is still active for this resource", existing.ID)
}

func (s *service) CreateHold(ctx context.Context, resourceID, ownerID uuid.UUID, partySize int) (*Hold, error) {
	if partySize < 1 {
		return nil, failure.New(failure.InvalidPartySize, "party size must be at least 1")
	}

	now := s.clock.Now()

	// An owner's own hold counts against availability, so look for it before
	// the cached check can reject the request as full
	existing, err := s.repo.FindForOwner(ctx, ownerID, resourceID)
	if err != nil {
		return nil, err
	}
	if existing != nil && !existing.IsExpired(now) {
		return nil, duplicateHold(existing)
	}

	// Cheap rejection from the cache; the conditional update below decides.
	// An overdue hold of this owner is reclaimed inside the transaction, so
	// the cached count does not apply.
	if existing == nil {
		avail, err := s.ledger.CheckAvailability(ctx, resourceID, partySize)
		if err != nil {
			return nil, err
		}
		if !avail.OK {
			return nil, avail.Failure(partySize)
		}
	}

	acquired, release, err := s.guard.Acquire(ctx, ownerID, resourceID)
	if err != nil {
		s.log.WithError(err).WarnContext(ctx, "hold guard unavailable, continuing without it")
		acquired = true
	}
	defer release()
	if !acquired {
		return nil, failure.New(failure.DuplicateHold, "a hold request for this resource is already in progress")
	}

	hold := &Hold{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		ResourceID: resourceID,
		PartySize:  partySize,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.cfg.Capacity.HoldTTL),
	}

	var stale *Hold
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindForOwner(ctx, ownerID, resourceID)
		if err != nil {
			return err
		}
		if existing != nil {
			if !existing.IsExpired(now) {
				return duplicateHold(existing)
			}
			// Overdue but not yet swept: reclaim it here so the new hold fits
			// the unique index
			if stale, err = s.releaseInTx(ctx, existing.ID); err != nil {
				return err
			}
		}

		if err := s.ledger.HoldCapacity(ctx, resourceID, partySize); err != nil {
			return err
		}
		return s.repo.Create(ctx, hold)
	})
	if err != nil {
		if failure.ReasonOf(err) == failure.InsufficientCapacity {
			// The cached read was stale
			s.ledger.Invalidate(ctx, resourceID)
		}
		return nil, err
	}

	if stale != nil {
		s.afterRelease(ctx, stale, ReleaseExpired)
	}
	s.ledger.Invalidate(ctx, resourceID)
	s.log.LogHoldCreated(ctx, hold.ID.String(), resourceID.String(), ownerID.String(), partySize, hold.ExpiresAt)
	notifications.PublishBestEffort(ctx, s.publisher, s.log,
		notifications.NewEvent(notifications.EventHoldCreated, resourceID, now).
			WithUser(ownerID, partySize).
			WithHold(hold.ID).
			WithExpiry(hold.ExpiresAt))
	return hold, nil
}

// GetHold treats an overdue hold as absent and releases it on the spot
func (s *service) GetHold(ctx context.Context, holdID uuid.UUID) (*Hold, error) {
	hold, err := s.repo.GetByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if hold == nil {
		return nil, holdNotFound(holdID)
	}
	if hold.IsExpired(s.clock.Now()) {
		if _, err := s.release(ctx, holdID, ReleaseExpired); err != nil {
			s.log.WithError(err).ErrorContext(ctx, "failed to release expired hold on read",
				slog.String("hold_id", holdID.String()),
			)
		}
		return nil, holdNotFound(holdID)
	}
	return hold, nil
}

// ConfirmHold converts held capacity into reserved capacity. The hold row is
// deleted in the same transaction, so a second confirm finds nothing.
func (s *service) ConfirmHold(ctx context.Context, holdID uuid.UUID) (*Hold, error) {
	now := s.clock.Now()

	var confirmed, expired *Hold
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		hold, err := s.repo.Delete(ctx, holdID)
		if err != nil {
			return err
		}
		if hold == nil {
			return holdNotFound(holdID)
		}
		if hold.IsExpired(now) {
			if _, err := s.ledger.ReleaseHeldCapacity(ctx, hold.ResourceID, hold.PartySize); err != nil {
				return err
			}
			// Commit the release, then report the hold as gone
			expired = hold
			return nil
		}
		if err := s.ledger.ConfirmHeldCapacity(ctx, hold.ResourceID, hold.PartySize); err != nil {
			return err
		}
		confirmed = hold
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired != nil {
		s.afterRelease(ctx, expired, ReleaseExpired)
		return nil, holdNotFound(holdID)
	}

	s.ledger.Invalidate(ctx, confirmed.ResourceID)
	s.log.InfoContext(ctx, "hold confirmed",
		slog.String("hold_id", confirmed.ID.String()),
		slog.String("resource_id", confirmed.ResourceID.String()),
		slog.Int("party_size", confirmed.PartySize),
	)
	notifications.PublishBestEffort(ctx, s.publisher, s.log,
		notifications.NewEvent(notifications.EventHoldConfirmed, confirmed.ResourceID, now).
			WithUser(confirmed.OwnerID, confirmed.PartySize).
			WithHold(confirmed.ID))
	return confirmed, nil
}

func (s *service) CancelHold(ctx context.Context, holdID uuid.UUID) (*Hold, error) {
	hold, err := s.release(ctx, holdID, ReleaseCancelled)
	if err != nil {
		return nil, err
	}
	if hold == nil {
		return nil, holdNotFound(holdID)
	}
	return hold, nil
}

func (s *service) GetUserHolds(ctx context.Context, ownerID uuid.UUID) ([]Hold, error) {
	return s.repo.ListByOwner(ctx, ownerID, s.clock.Now())
}

func (s *service) ExpireHolds(ctx context.Context, limit int) (*SweepResult, error) {
	if limit <= 0 {
		limit = s.cfg.Capacity.SweepBatchSize
	}
	overdue, err := s.repo.ListExpired(ctx, s.clock.Now(), limit)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Scanned: len(overdue)}
	for _, h := range overdue {
		released, err := s.release(ctx, h.ID, ReleaseExpired)
		if err != nil {
			result.Failed++
			s.log.WithError(err).ErrorContext(ctx, "failed to release expired hold",
				slog.String("hold_id", h.ID.String()),
				slog.String("resource_id", h.ResourceID.String()),
			)
			continue
		}
		// nil: confirmed, cancelled or read-expired since the scan
		if released != nil {
			result.Released++
			result.Units += released.PartySize
		}
	}
	return result, nil
}

// release deletes the hold and returns its capacity in one transaction.
// A nil hold means someone else already removed it.
func (s *service) release(ctx context.Context, holdID uuid.UUID, reason string) (*Hold, error) {
	var released *Hold
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		released, err = s.releaseInTx(ctx, holdID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if released != nil {
		s.afterRelease(ctx, released, reason)
	}
	return released, nil
}

func (s *service) releaseInTx(ctx context.Context, holdID uuid.UUID) (*Hold, error) {
	hold, err := s.repo.Delete(ctx, holdID)
	if err != nil || hold == nil {
		return nil, err
	}
	if _, err := s.ledger.ReleaseHeldCapacity(ctx, hold.ResourceID, hold.PartySize); err != nil {
		return nil, err
	}
	return hold, nil
}

func (s *service) afterRelease(ctx context.Context, hold *Hold, reason string) {
	s.ledger.Invalidate(ctx, hold.ResourceID)
	s.log.LogHoldReleased(ctx, hold.ID.String(), hold.ResourceID.String(), reason, hold.PartySize)
	notifications.PublishBestEffort(ctx, s.publisher, s.log,
		notifications.NewEvent(notifications.EventHoldReleased, hold.ResourceID, s.clock.Now()).
			WithUser(hold.OwnerID, hold.PartySize).
			WithHold(hold.ID).
			WithReason(reason))
}
