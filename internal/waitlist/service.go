package waitlist

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"venuecap/internal/capacity"
	"venuecap/internal/notifications"
	"venuecap/internal/shared/config"
	"venuecap/internal/shared/failure"
	"venuecap/pkg/clock"
	"venuecap/pkg/logger"

	"github.com/google/uuid"
)

// ResourceLookup resolves the capacity settings of a resource
type ResourceLookup interface {
	GetCapacityStats(ctx context.Context, resourceID uuid.UUID, skipCache bool) (*capacity.CapacityStats, error)
}

// Service interface defines the contract for waitlist business operations
type Service interface {
	SetPublisher(publisher notifications.Publisher)

	// Queue operations
	AddToWaitlist(ctx context.Context, resourceID, userID uuid.UUID, partySize int, requiresAccessibility bool) (*JoinResult, error)
	GetEntry(ctx context.Context, entryID uuid.UUID) (*WaitlistEntry, error)
	GetPosition(ctx context.Context, entryID uuid.UUID) (*PositionResult, error)
	GetNextInQueue(ctx context.Context, resourceID uuid.UUID, maxPartySize *int, accessibleOnly bool) (*WaitlistEntry, error)
	RemoveFromWaitlist(ctx context.Context, entryID uuid.UUID) (*WaitlistEntry, error)

	// Notification lifecycle
	NotifyUser(ctx context.Context, entryID uuid.UUID) (*WaitlistEntry, error)
	NotifyUserManually(ctx context.Context, entryID uuid.UUID, window time.Duration) (*WaitlistEntry, error)
	ConvertToReservation(ctx context.Context, entryID, reservationID uuid.UUID) (*WaitlistEntry, error)
	ExpireNotification(ctx context.Context, entryID uuid.UUID) (*WaitlistEntry, error)
	CleanupExpiredNotifications(ctx context.Context) (*CleanupResult, error)

	// Admin reads
	GetWaitlistForVenueMatch(ctx context.Context, resourceID uuid.UUID) ([]PositionedEntry, error)
	GetTotalWaitingPartySize(ctx context.Context, resourceID uuid.UUID) (int, error)
	GetWaitlistStats(ctx context.Context, resourceID uuid.UUID) (*Stats, error)
}

type service struct {
	repo      Repository
	resources ResourceLookup
	clock     clock.Clock
	cfg       config.WaitlistConfig
	publisher notifications.Publisher
	log       *logger.Logger
}

func NewService(repo Repository, resources ResourceLookup, clk clock.Clock, cfg *config.Config, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	wcfg := cfg.Waitlist
	if wcfg.NotificationWindow <= 0 {
		wcfg.NotificationWindow = 15 * time.Minute
	}
	if wcfg.CleanupBatchSize <= 0 {
		wcfg.CleanupBatchSize = 100
	}
	if wcfg.RequeuePolicy == "" {
		wcfg.RequeuePolicy = RequeuePreserve
	}
	return &service{
		repo:      repo,
		resources: resources,
		clock:     clk,
		cfg:       wcfg,
		publisher: notifications.NoopPublisher{},
		log:       log.WithComponent("waitlist"),
	}
}

func (s *service) SetPublisher(publisher notifications.Publisher) {
	s.publisher = publisher
}

//  QUEUE OPERATIONS

// AddToWaitlist is idempotent per user and resource while an entry is active:
// a repeat call returns the existing entry with AlreadyInQueue set.
func (s *service) AddToWaitlist(ctx context.Context, resourceID, userID uuid.UUID, partySize int, requiresAccessibility bool) (*JoinResult, error) {
	if partySize < 1 {
		return nil, failure.New(failure.InvalidPartySize, "party size must be at least 1")
	}

	stats, err := s.resources.GetCapacityStats(ctx, resourceID, false)
	if err != nil {
		return nil, err
	}
	if stats.MaxGroupSize > 0 && partySize > stats.MaxGroupSize {
		return nil, failure.New(failure.PartyTooLarge, "party of %d exceeds the maximum group size of %d", partySize, stats.MaxGroupSize).
			WithMaxGroupSize(stats.MaxGroupSize)
	}

	if existing, err := s.repo.FindActive(ctx, userID, resourceID); err != nil {
		return nil, err
	} else if existing != nil {
		return s.joined(ctx, existing, true)
	}

	now := s.clock.Now()
	entry := &WaitlistEntry{
		ID:                    uuid.New(),
		ResourceID:            resourceID,
		UserID:                userID,
		PartySize:             partySize,
		RequiresAccessibility: requiresAccessibility,
		Status:                StatusWaiting,
		QueuedAt:              now,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		if !errors.Is(err, ErrAlreadyQueued) {
			return nil, err
		}
		// Lost a race with a concurrent join for the same pair
		existing, ferr := s.repo.FindActive(ctx, userID, resourceID)
		if ferr != nil {
			return nil, ferr
		}
		if existing == nil {
			return nil, err
		}
		return s.joined(ctx, existing, true)
	}

	s.log.LogWaitlistTransition(ctx, entry.ID.String(), resourceID.String(), "", string(StatusWaiting))
	s.publish(ctx, notifications.EventWaitlistJoined, entry, "")
	return s.joined(ctx, entry, false)
}

func (s *service) joined(ctx context.Context, entry *WaitlistEntry, already bool) (*JoinResult, error) {
	result := &JoinResult{Entry: entry, AlreadyInQueue: already}
	if entry.Status == StatusWaiting {
		pos, err := s.repo.CountWaitingUpTo(ctx, entry)
		if err != nil {
			return nil, err
		}
		result.Position = pos
	}
	return result, nil
}

func (s *service) GetEntry(ctx context.Context, entryID uuid.UUID) (*WaitlistEntry, error) {
	return s.repo.GetByID(ctx, entryID)
}

// GetPosition counts waiting entries queued at or before this one, so the
// entry itself is included. Ties on queued_at follow the queue order. Entries that are not waiting have no position.
func (s *service) GetPosition(ctx context.Context, entryID uuid.UUID) (*PositionResult, error) {
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	result := &PositionResult{EntryID: entry.ID, Status: entry.Status}
	if entry.Status != StatusWaiting {
		return result, nil
	}

	pos, err := s.repo.CountWaitingUpTo(ctx, entry)
	if err != nil {
		return nil, err
	}
	result.Position = pos
	result.PeopleAhead = max(pos-1, 0)
	return result, nil
}

// GetNextInQueue returns nil when no waiting entry matches
func (s *service) GetNextInQueue(ctx context.Context, resourceID uuid.UUID, maxPartySize *int, accessibleOnly bool) (*WaitlistEntry, error) {
	return s.repo.NextWaiting(ctx, resourceID, maxPartySize, accessibleOnly)
}

func (s *service) RemoveFromWaitlist(ctx context.Context, entryID uuid.UUID) (*WaitlistEntry, error) {
	return s.transition(ctx, entryID, Transition{
		From: []Status{StatusWaiting, StatusNotified},
		To:   StatusRemoved,
	})
}

//  NOTIFICATION LIFECYCLE

func (s *service) NotifyUser(ctx context.Context, entryID uuid.UUID) (*WaitlistEntry, error) {
	return s.notify(ctx, entryID, s.cfg.NotificationWindow)
}

// NotifyUserManually is the admin path; a non-positive window falls back to
// the configured one.
func (s *service) NotifyUserManually(ctx context.Context, entryID uuid.UUID, window time.Duration) (*WaitlistEntry, error) {
	if window <= 0 {
		window = s.cfg.NotificationWindow
	}
	return s.notify(ctx, entryID, window)
}

func (s *service) notify(ctx context.Context, entryID uuid.UUID, window time.Duration) (*WaitlistEntry, error) {
	deadline := s.clock.Now().Add(window)
	entry, err := s.transition(ctx, entryID, Transition{
		From:                  []Status{StatusWaiting},
		To:                    StatusNotified,
		NotificationExpiresAt: &deadline,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notifications.EventWaitlistSpotAvailable, entry, "")
	return entry, nil
}

func (s *service) ConvertToReservation(ctx context.Context, entryID, reservationID uuid.UUID) (*WaitlistEntry, error) {
	entry, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.NotificationLapsed(s.clock.Now()) {
		return nil, failure.New(failure.InvalidTransition, "notification for entry %s has lapsed", entryID)
	}

	entry, err = s.transition(ctx, entryID, Transition{
		From:          []Status{StatusNotified},
		To:            StatusConverted,
		ReservationID: &reservationID,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notifications.EventWaitlistConverted, entry, "")
	return entry, nil
}

func (s *service) ExpireNotification(ctx context.Context, entryID uuid.UUID) (*WaitlistEntry, error) {
	entry, err := s.transition(ctx, entryID, Transition{
		From: []Status{StatusNotified},
		To:   StatusExpired,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notifications.EventWaitlistNotificationExpired, entry, "")
	return entry, nil
}

// CleanupExpiredNotifications returns lapsed notified entries to the queue,
// or expires them once they have been offered MaxNotifyAttempts times.
func (s *service) CleanupExpiredNotifications(ctx context.Context) (*CleanupResult, error) {
	lapsed, err := s.repo.ListLapsedNotifications(ctx, s.clock.Now(), s.cfg.CleanupBatchSize)
	if err != nil {
		return nil, err
	}

	result := &CleanupResult{Scanned: len(lapsed)}
	for _, e := range lapsed {
		if s.cfg.MaxNotifyAttempts > 0 && e.NotifyCount >= s.cfg.MaxNotifyAttempts {
			if _, err := s.ExpireNotification(ctx, e.ID); err != nil {
				s.cleanupFailed(ctx, &e, err)
				result.Failed++
				continue
			}
			result.Expired++
			continue
		}

		entry, err := s.transition(ctx, e.ID, Transition{
			From:              []Status{StatusNotified},
			To:                StatusWaiting,
			ClearNotification: true,
			Requeue:           s.cfg.RequeuePolicy == RequeueBack,
		})
		if err != nil {
			s.cleanupFailed(ctx, &e, err)
			result.Failed++
			continue
		}
		s.publish(ctx, notifications.EventWaitlistRequeued, entry, s.cfg.RequeuePolicy)
		result.Requeued++
	}
	return result, nil
}

func (s *service) cleanupFailed(ctx context.Context, e *WaitlistEntry, err error) {
	s.log.WithError(err).ErrorContext(ctx, "failed to clean up lapsed waitlist notification",
		slog.String("entry_id", e.ID.String()),
		slog.String("resource_id", e.ResourceID.String()),
	)
}

//  ADMIN READS

func (s *service) GetWaitlistForVenueMatch(ctx context.Context, resourceID uuid.UUID) ([]PositionedEntry, error) {
	entries, err := s.repo.ListWaiting(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	out := make([]PositionedEntry, len(entries))
	for i, e := range entries {
		out[i] = PositionedEntry{WaitlistEntry: e, Position: i + 1}
	}
	return out, nil
}

func (s *service) GetTotalWaitingPartySize(ctx context.Context, resourceID uuid.UUID) (int, error) {
	return s.repo.SumWaitingPartySize(ctx, resourceID)
}

func (s *service) GetWaitlistStats(ctx context.Context, resourceID uuid.UUID) (*Stats, error) {
	counts, err := s.repo.CountByStatus(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	partySize, err := s.repo.SumWaitingPartySize(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		ResourceID:       resourceID,
		Waiting:          counts[StatusWaiting],
		Notified:         counts[StatusNotified],
		Converted:        counts[StatusConverted],
		Expired:          counts[StatusExpired],
		Removed:          counts[StatusRemoved],
		WaitingPartySize: partySize,
	}
	// Share of offers that turned into reservations
	if offered := stats.Converted + stats.Expired; offered > 0 {
		stats.ConversionRatePct = math.Round(float64(stats.Converted)/float64(offered)*10000) / 100
	}
	return stats, nil
}

//  HELPERS

// transition applies t and re-reads the entry. When the conditional update
// loses, the current status decides which failure to report.
func (s *service) transition(ctx context.Context, entryID uuid.UUID, t Transition) (*WaitlistEntry, error) {
	current, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(t.To) || !statusIn(current.Status, t.From) {
		return nil, transitionFailure(current, t.To)
	}

	t.At = s.clock.Now()
	ok, err := s.repo.Apply(ctx, entryID, t)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, transitionFailure(updated, t.To)
	}

	s.log.LogWaitlistTransition(ctx, entryID.String(), updated.ResourceID.String(), string(current.Status), string(t.To))
	return updated, nil
}

func transitionFailure(entry *WaitlistEntry, to Status) *failure.Failure {
	if to == StatusNotified {
		if entry.Status == StatusNotified {
			return failure.New(failure.WaitlistAlreadyNotified, "waitlist entry %s has already been notified", entry.ID)
		}
		return failure.New(failure.CannotNotifyNonWaiting, "waitlist entry %s is %s, only waiting entries can be notified", entry.ID, entry.Status)
	}
	return failure.New(failure.InvalidTransition, "waitlist entry %s cannot move from %s to %s", entry.ID, entry.Status, to)
}

func statusIn(status Status, set []Status) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func (s *service) publish(ctx context.Context, eventType notifications.EventType, entry *WaitlistEntry, reason string) {
	event := notifications.NewEvent(eventType, entry.ResourceID, s.clock.Now()).
		WithUser(entry.UserID, entry.PartySize).
		WithWaitlistEntry(entry.ID)
	if entry.NotificationExpiresAt != nil && entry.Status == StatusNotified {
		event.WithExpiry(*entry.NotificationExpiresAt)
	}
	if reason != "" {
		event.WithReason(reason)
	}
	notifications.PublishBestEffort(ctx, s.publisher, s.log, event)
}
