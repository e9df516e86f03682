package domain

import "time"

// TaskResult represents the outcome of a scheduled update check.
type TaskResult struct {
	// RunID uniquely identifies the run.
	RunID string

	// TaskID identifies which task was run (update-check:<source key>).
	TaskID string

	// StartedAt is when the task started.
	StartedAt time.Time

	// EndedAt is when the task completed.
	EndedAt time.Time

	// Success indicates whether the task completed without error.
	Success bool

	// Error contains the error message if Success is false.
	Error string

	// ItemsProcessed is the number of new or changed documents ingested.
	ItemsProcessed int
}

// TaskIDPrefixUpdateCheck prefixes task IDs of update-check runs.
const TaskIDPrefixUpdateCheck = "update-check:"

// UpdateCheckTaskID returns the task ID for a watched source.
func UpdateCheckTaskID(src WatchedSource) string {
	return TaskIDPrefixUpdateCheck + src.Key()
}

// SeenDocuments maps a document URL to the date last reported for it.
type SeenDocuments map[string]string
