package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fulfilhub/backend/internal/application/bolsync"
	"github.com/fulfilhub/backend/internal/domain/integration"
)

// Reconciler runs one marketplace reconciliation for one installation
type Reconciler interface {
	Reconcile(ctx context.Context, installationID int64) (*bolsync.Result, error)
}

// InstallationSource lists the installations that take part in a sync cycle
type InstallationSource interface {
	IDsWithActiveIntegration(ctx context.Context, platform string) ([]int64, error)
}

// BolSyncSchedulerConfig holds configuration for the sync scheduler
type BolSyncSchedulerConfig struct {
	// Interval is the time between sync cycles
	Interval time.Duration

	// StopTimeout bounds how long Stop waits for an in-flight cycle
	StopTimeout time.Duration
}

// DefaultBolSyncSchedulerConfig returns default configuration
func DefaultBolSyncSchedulerConfig() BolSyncSchedulerConfig {
	return BolSyncSchedulerConfig{
		Interval:    5 * time.Minute,
		StopTimeout: 30 * time.Second,
	}
}

// BolSyncScheduler periodically reconciles marketplace orders for every
// installation with an active bol.com integration. Cycles never overlap: a
// tick that fires while the previous cycle is still running is skipped.
type BolSyncScheduler struct {
	config        BolSyncSchedulerConfig
	reconciler    Reconciler
	installations InstallationSource
	logger        *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// cycleActive guards against overlapping cycles
	cycleActive atomic.Bool
}

// NewBolSyncScheduler creates a new sync scheduler
func NewBolSyncScheduler(
	config BolSyncSchedulerConfig,
	reconciler Reconciler,
	installations InstallationSource,
	logger *zap.Logger,
) *BolSyncScheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultBolSyncSchedulerConfig().Interval
	}
	if config.StopTimeout <= 0 {
		config.StopTimeout = DefaultBolSyncSchedulerConfig().StopTimeout
	}

	return &BolSyncScheduler{
		config:        config,
		reconciler:    reconciler,
		installations: installations,
		logger:        logger.Named("bol-sync-scheduler"),
	}
}

// Start starts the scheduler. The first cycle runs immediately.
func (s *BolSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Bol sync scheduler started",
		zap.Duration("interval", s.config.Interval),
	)
	return nil
}

// Stop stops the scheduler, waiting for an in-flight cycle up to the
// configured stop timeout
func (s *BolSyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	timeout := time.NewTimer(s.config.StopTimeout)
	defer timeout.Stop()

	select {
	case <-done:
		s.logger.Info("Bol sync scheduler stopped")
		return nil
	case <-timeout.C:
		s.logger.Warn("Bol sync scheduler stop timed out with a cycle in flight")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop fires sync cycles until the context is cancelled. Each cycle
// runs in its own goroutine so a tick that arrives mid-cycle is observed
// while the cycle is still in flight and skipped by the guard, instead of
// being buffered by the ticker and replayed afterwards.
func (s *BolSyncScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.spawnCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.spawnCycle(ctx)
		}
	}
}

// spawnCycle starts one cycle asynchronously, tracked for Stop
func (s *BolSyncScheduler) spawnCycle(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runCycle(ctx)
	}()
}

// runCycle reconciles every participating installation sequentially. One
// failing installation never blocks the others.
func (s *BolSyncScheduler) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if !s.cycleActive.CompareAndSwap(false, true) {
		s.logger.Warn("previous sync cycle still running, skipping this tick")
		return
	}
	defer s.cycleActive.Store(false)

	cycleID := uuid.New().String()
	logger := s.logger.With(zap.String("cycle_id", cycleID))

	ids, err := s.installations.IDsWithActiveIntegration(ctx, integration.PlatformBol.String())
	if err != nil {
		logger.Error("failed to list installations for sync", zap.Error(err))
		return
	}
	if len(ids) == 0 {
		logger.Debug("no installations with an active bol.com integration")
		return
	}

	started := time.Now()
	logger.Info("sync cycle started", zap.Int("installations", len(ids)))

	for _, installationID := range ids {
		if ctx.Err() != nil {
			logger.Info("sync cycle interrupted", zap.Error(ctx.Err()))
			return
		}

		result, err := s.reconciler.Reconcile(ctx, installationID)
		if err != nil {
			logger.Error("installation sync failed",
				zap.Int64("installation_id", installationID),
				zap.Error(err),
			)
			continue
		}

		logger.Info("installation sync finished",
			zap.Int64("installation_id", installationID),
			zap.Int("imported", result.Imported),
			zap.Int("updated", result.Updated),
			zap.Int("total", result.Total),
		)
	}

	logger.Info("sync cycle finished", zap.Duration("elapsed", time.Since(started)))
}
