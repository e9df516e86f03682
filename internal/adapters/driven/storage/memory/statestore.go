package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
)

// Ensure the stores implement the interfaces.
var (
	_ driven.UpdateStateStore = (*UpdateStateStore)(nil)
	_ driven.SchedulerStore   = (*SchedulerStore)(nil)
)

// UpdateStateStore is an in-memory implementation of driven.UpdateStateStore.
type UpdateStateStore struct {
	mu   sync.RWMutex
	seen map[string]domain.SeenDocuments
}

// NewUpdateStateStore creates a new in-memory update state store.
func NewUpdateStateStore() *UpdateStateStore {
	return &UpdateStateStore{seen: make(map[string]domain.SeenDocuments)}
}

// LoadSeen returns a copy of the last-seen map for a source key.
func (s *UpdateStateStore) LoadSeen(_ context.Context, sourceKey string) (domain.SeenDocuments, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen, ok := s.seen[sourceKey]
	if !ok {
		return domain.SeenDocuments{}, false, nil
	}
	return maps.Clone(seen), true, nil
}

// SaveSeen replaces the last-seen map for a source key.
func (s *UpdateStateStore) SaveSeen(_ context.Context, sourceKey string, seen domain.SeenDocuments) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := maps.Clone(seen)
	if cp == nil {
		cp = domain.SeenDocuments{}
	}
	s.seen[sourceKey] = cp
	return nil
}

// SchedulerStore is an in-memory implementation of driven.SchedulerStore.
type SchedulerStore struct {
	mu      sync.RWMutex
	results []domain.TaskResult
}

// NewSchedulerStore creates a new in-memory scheduler store.
func NewSchedulerStore() *SchedulerStore {
	return &SchedulerStore{}
}

// RecordResult logs a task execution result.
func (s *SchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, *result)
	return nil
}

// GetTaskHistory returns recent results, most recent first.
func (s *SchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.TaskResult
	// Newest appended last; walk backwards so ties keep insertion order reversed.
	for i := len(s.results) - 1; i >= 0; i-- {
		if taskID == "" || s.results[i].TaskID == taskID {
			out = append(out, s.results[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PruneHistory keeps the most recent 'keep' results per task.
func (s *SchedulerStore) PruneHistory(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	perTask := make(map[string]int)
	var kept []domain.TaskResult
	for i := len(s.results) - 1; i >= 0; i-- {
		r := s.results[i]
		if perTask[r.TaskID] < keep {
			perTask[r.TaskID]++
			kept = append(kept, r)
		}
	}
	// Restore chronological order.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	s.results = kept
	return nil
}
