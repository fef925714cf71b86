package database

import (
	"encoding/json"
	"fmt"
	"time"

	"automod-bot/model"

	"github.com/jmoiron/sqlx"
)

// EnsureTaskTable creates the scheduled task table if missing. Only terminal
// task records are written here; the live queue stays in memory.
func EnsureTaskTable(db *sqlx.DB) error {
	schema := `
    CREATE TABLE IF NOT EXISTS scheduled_tasks (
        id TEXT PRIMARY KEY,
        task_type TEXT NOT NULL,
        payload TEXT NOT NULL DEFAULT '{}',
        run_at DATETIME NOT NULL,
        created_at DATETIME NOT NULL,
        status TEXT NOT NULL,
        result TEXT NOT NULL DEFAULT '',
        error TEXT NOT NULL DEFAULT ''
    );`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create scheduled_tasks table: %w", err)
	}
	return nil
}

// RecordTask upserts a task record, used to keep an audit trail of terminal
// task states.
func RecordTask(db *sqlx.DB, task model.ScheduledTask) error {
	payload, err := json.Marshal(task.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for task %s: %w", task.ID, err)
	}

	query := `INSERT OR REPLACE INTO scheduled_tasks
              (id, task_type, payload, run_at, created_at, status, result, error)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = db.Exec(query, task.ID, task.Type, string(payload), task.RunAt,
		task.CreatedAt, string(task.Status), task.Result, task.Error)
	if err != nil {
		return fmt.Errorf("failed to record task %s: %w", task.ID, err)
	}
	return nil
}

type taskRow struct {
	ID        string    `db:"id"`
	TaskType  string    `db:"task_type"`
	Payload   string    `db:"payload"`
	RunAt     time.Time `db:"run_at"`
	CreatedAt time.Time `db:"created_at"`
	Status    string    `db:"status"`
	Result    string    `db:"result"`
	Error     string    `db:"error"`
}

// LoadTaskHistory returns persisted task records, newest first.
func LoadTaskHistory(db *sqlx.DB, limit int) ([]model.ScheduledTask, error) {
	var rows []taskRow
	query := `SELECT id, task_type, payload, run_at, created_at, status, result, error
              FROM scheduled_tasks ORDER BY CAST(id AS INTEGER) DESC LIMIT ?`
	if err := db.Select(&rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to load task history: %w", err)
	}

	tasks := make([]model.ScheduledTask, 0, len(rows))
	for _, row := range rows {
		task := model.ScheduledTask{
			ID:        row.ID,
			Type:      row.TaskType,
			RunAt:     row.RunAt,
			CreatedAt: row.CreatedAt,
			Status:    model.TaskStatus(row.Status),
			Result:    row.Result,
			Error:     row.Error,
		}
		if err := json.Unmarshal([]byte(row.Payload), &task.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload for task %s: %w", row.ID, err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
