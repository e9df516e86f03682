package driving

import (
	"context"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

// Scheduler runs update checks in the background.
type Scheduler interface {
	// Start registers one recurring job per watched source and returns.
	// Calling Start on a running scheduler is a no-op.
	Start(ctx context.Context) error

	// Stop halts the scheduler, waiting a bounded time for running checks.
	Stop() error

	// Running reports whether the scheduler has been started.
	Running() bool

	// RunOnce checks every source now and records the results.
	RunOnce(ctx context.Context) []domain.TaskResult

	// History returns recorded runs, most recent first.
	History(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)
}
