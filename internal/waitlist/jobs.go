package waitlist

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"venuecap/internal/shared/config"
	"venuecap/pkg/logger"
)

// CleanupJob periodically returns lapsed notifications to the queue
type CleanupJob struct {
	service  Service
	interval time.Duration
	log      *logger.Logger

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu      sync.Mutex
	running bool
	runs    int
	lastRun time.Time
}

func NewCleanupJob(service Service, cfg config.WaitlistConfig, log *logger.Logger) *CleanupJob {
	if log == nil {
		log = logger.GetDefault()
	}
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &CleanupJob{
		service:  service,
		interval: interval,
		log:      log.WithComponent("waitlist-cleanup"),
		done:     make(chan struct{}),
	}
}

// Start starts the cleanup loop
func (j *CleanupJob) Start(ctx context.Context) {
	j.log.Info("starting waitlist cleanup job", slog.Duration("interval", j.interval))

	j.setRunning(true)
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		defer j.setRunning(false)
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.RunOnce(ctx)
			case <-j.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the loop and waits for a running pass
func (j *CleanupJob) Stop() {
	j.stopOnce.Do(func() {
		close(j.done)
	})
	j.wg.Wait()
	j.log.Info("waitlist cleanup job stopped")
}

func (j *CleanupJob) RunOnce(ctx context.Context) {
	result, err := j.service.CleanupExpiredNotifications(ctx)

	j.mu.Lock()
	j.runs++
	j.lastRun = time.Now()
	j.mu.Unlock()

	if err != nil {
		j.log.WithError(err).ErrorContext(ctx, "waitlist cleanup failed")
		return
	}
	if result.Scanned > 0 {
		j.log.InfoContext(ctx, "lapsed waitlist notifications processed",
			slog.Int("requeued", result.Requeued),
			slog.Int("expired", result.Expired),
			slog.Int("failed", result.Failed),
		)
	}
}

func (j *CleanupJob) setRunning(running bool) {
	j.mu.Lock()
	j.running = running
	j.mu.Unlock()
}

// GetJobStatus returns the status of the background job
func (j *CleanupJob) GetJobStatus() map[string]interface{} {
	j.mu.Lock()
	defer j.mu.Unlock()

	status := "stopped"
	if j.running {
		status = "running"
	}
	out := map[string]interface{}{
		"cleanup_interval": j.interval.String(),
		"status":           status,
		"runs":             j.runs,
	}
	if !j.lastRun.IsZero() {
		out["last_run"] = j.lastRun
	}
	return out
}
