package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskHistoryWarmup refreshes the invoice-items cache for active staff sessions.
	TaskHistoryWarmup = "history:warmup"
	// TaskSessionCleanup prunes expired entries from the session index.
	TaskSessionCleanup = "sessions:cleanup"
)

// HistoryWarmupPayload narrows a warmup run to one staff member when set.
type HistoryWarmupPayload struct {
	StaffID string `json:"staff_id,omitempty"`
}

// NewHistoryWarmupTask constructs a history warmup task.
func NewHistoryWarmupTask(payload HistoryWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskHistoryWarmup, data), nil
}

// NewSessionCleanupTask constructs a session cleanup task.
func NewSessionCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskSessionCleanup, nil)
}
