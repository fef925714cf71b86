package model

import "time"

// TaskStatus is the lifecycle state of a scheduled task.
type TaskStatus string

const (
	TaskScheduled TaskStatus = "scheduled"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Terminal reports whether the status can never change again.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// ScheduledTask is a one-shot action deferred to a future timestamp.
// Completed and failed are terminal; a failed task is never retried.
type ScheduledTask struct {
	ID        string         `db:"id"`
	Type      string         `db:"task_type"`
	Payload   map[string]any `db:"-"`
	RunAt     time.Time      `db:"run_at"`
	CreatedAt time.Time      `db:"created_at"`
	Status    TaskStatus     `db:"status"`
	Result    string         `db:"result"`
	Error     string         `db:"error"`
}
