package holds

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"venuecap/internal/shared/config"
	"venuecap/pkg/logger"
)

// Sweeper periodically releases holds whose deadline has passed. A failed
// pass is logged and the next tick runs as usual.
type Sweeper struct {
	service   Service
	interval  time.Duration
	batchSize int
	log       *logger.Logger

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu    sync.Mutex
	stats SweeperStats
}

// SweeperStats are cumulative counters since Start
type SweeperStats struct {
	Runs     int       `json:"runs"`
	Released int       `json:"released"`
	Units    int       `json:"units_released"`
	Failed   int       `json:"failed"`
	LastRun  time.Time `json:"last_run"`
}

func NewSweeper(service Service, cfg config.CapacityConfig, log *logger.Logger) *Sweeper {
	if log == nil {
		log = logger.GetDefault()
	}
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	batch := cfg.SweepBatchSize
	if batch <= 0 {
		batch = 200
	}
	return &Sweeper{
		service:   service,
		interval:  interval,
		batchSize: batch,
		log:       log.WithComponent("hold-sweeper"),
		done:      make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or ctx is done
func (s *Sweeper) Start(ctx context.Context) {
	s.log.Info("starting hold expiry sweeper", slog.Duration("interval", s.interval))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunOnce(ctx)
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-progress sweep to finish
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
	s.log.Info("hold expiry sweeper stopped")
}

// RunOnce performs a single sweep
func (s *Sweeper) RunOnce(ctx context.Context) *SweepResult {
	result, err := s.service.ExpireHolds(ctx, s.batchSize)
	if err != nil {
		s.log.WithError(err).ErrorContext(ctx, "hold sweep failed")
		result = &SweepResult{}
	}

	s.mu.Lock()
	s.stats.Runs++
	s.stats.Released += result.Released
	s.stats.Units += result.Units
	s.stats.Failed += result.Failed
	s.stats.LastRun = time.Now()
	s.mu.Unlock()

	if result.Released > 0 || result.Failed > 0 {
		s.log.InfoContext(ctx, "expired holds swept",
			slog.Int("scanned", result.Scanned),
			slog.Int("released", result.Released),
			slog.Int("failed", result.Failed),
			slog.Int("units", result.Units),
		)
	}
	return result
}

func (s *Sweeper) Stats() SweeperStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
