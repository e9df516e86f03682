package driven

import (
	"context"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

// SchedulerStore persists the execution history of update checks.
type SchedulerStore interface {
	// RecordResult logs a task execution result.
	RecordResult(ctx context.Context, result *domain.TaskResult) error

	// GetTaskHistory returns recent results for a task.
	// Results are ordered by start time descending (most recent first).
	// An empty taskID returns results for every task.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// PruneHistory removes old task results beyond the retention limit.
	// Keeps the most recent 'keep' results per task.
	PruneHistory(ctx context.Context, keep int) error
}

// UpdateStateStore persists the last-seen document dates per watched source.
type UpdateStateStore interface {
	// LoadSeen returns the last-seen map for a source key.
	// The bool is false when the source has never been checked.
	LoadSeen(ctx context.Context, sourceKey string) (domain.SeenDocuments, bool, error)

	// SaveSeen replaces the last-seen map for a source key.
	SaveSeen(ctx context.Context, sourceKey string, seen domain.SeenDocuments) error
}
