package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/core/ports/driving"
	"github.com/custodia-labs/netassist/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// SchedulerConfig holds update scheduling settings.
type SchedulerConfig struct {
	// DefaultInterval applies to sources without their own interval.
	DefaultInterval time.Duration

	// StopTimeout bounds how long Stop waits for a running check.
	StopTimeout time.Duration

	// HistoryLimit is how many task results are kept.
	HistoryLimit int
}

// DefaultSchedulerConfig returns the default schedule.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		DefaultInterval: 24 * time.Hour,
		StopTimeout:     5 * time.Second,
		HistoryLimit:    50,
	}
}

// Scheduler runs update checks in the background, one cron entry per source.
// A check never runs concurrently with itself.
type Scheduler struct {
	config  SchedulerConfig
	updates driving.UpdateService
	store   driven.SchedulerStore

	mu      sync.Mutex
	running bool
	cron    *cron.Cron
	cancel  context.CancelFunc
}

// NewScheduler creates a scheduler. store may be nil to skip history.
func NewScheduler(config SchedulerConfig, updates driving.UpdateService, store driven.SchedulerStore) *Scheduler {
	if config.DefaultInterval <= 0 {
		config.DefaultInterval = 24 * time.Hour
	}
	if config.StopTimeout <= 0 {
		config.StopTimeout = 5 * time.Second
	}
	return &Scheduler{
		config:  config,
		updates: updates,
		store:   store,
	}
}

// Start registers the checks and starts the cron loop. It returns
// immediately; calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	cl := cronLogger{log: logger.Zap().Sugar().Named("cron")}
	c := cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	runCtx, cancel := context.WithCancel(ctx)
	for _, src := range s.updates.Sources() {
		interval := s.config.DefaultInterval
		if src.Interval > 0 {
			interval = src.Interval.Std()
		}
		if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() { s.runCheck(runCtx, src) }); err != nil {
			cancel()
			return fmt.Errorf("schedule %s: %w", src.Key(), err)
		}
		logger.Debug("scheduler: %s every %s", src.Key(), interval)
	}

	c.Start()
	s.cron = c
	s.cancel = cancel
	s.running = true
	logger.Info("scheduler: started with %d sources", len(c.Entries()))
	return nil
}

// Stop halts the cron loop and waits at most StopTimeout for a running check.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	done := c.Stop()
	cancel()

	timer := time.NewTimer(s.config.StopTimeout)
	defer timer.Stop()
	select {
	case <-done.Done():
	case <-timer.C:
		logger.Warn("scheduler: running check did not finish within %s", s.config.StopTimeout)
	}
	return nil
}

// Running reports whether the cron loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunOnce checks every source now and records the results.
func (s *Scheduler) RunOnce(ctx context.Context) []domain.TaskResult {
	sources := s.updates.Sources()
	results := make([]domain.TaskResult, 0, len(sources))
	for _, src := range sources {
		results = append(results, s.runCheck(ctx, src))
	}
	return results
}

// History returns recorded runs, most recent first. An empty taskID
// returns every task; limit <= 0 returns everything kept.
func (s *Scheduler) History(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	if s.store == nil {
		return nil, nil
	}
	history, err := s.store.GetTaskHistory(ctx, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("load task history: %w", err)
	}
	return history, nil
}

// runCheck runs one update check and records its outcome.
func (s *Scheduler) runCheck(ctx context.Context, src domain.WatchedSource) domain.TaskResult {
	result := domain.TaskResult{
		RunID:     uuid.NewString(),
		TaskID:    domain.UpdateCheckTaskID(src),
		StartedAt: time.Now(),
	}

	report, err := s.updates.Check(ctx, src)
	result.EndedAt = time.Now()
	result.ItemsProcessed = report.Ingest.Ingested
	if err != nil {
		result.Error = err.Error()
		logger.Warn("scheduler: %s failed: %v", result.TaskID, err)
	} else {
		result.Success = true
	}

	if s.store == nil {
		return result
	}
	// History is written even when the run context is cancelled.
	storeCtx := context.WithoutCancel(ctx)
	if err := s.store.RecordResult(storeCtx, &result); err != nil {
		logger.Error("scheduler: record result for %s: %v", result.TaskID, err)
	}
	if s.config.HistoryLimit > 0 {
		if err := s.store.PruneHistory(storeCtx, s.config.HistoryLimit); err != nil {
			logger.Error("scheduler: prune history: %v", err)
		}
	}
	return result
}

// cronLogger adapts zap to cron's logger interface.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
