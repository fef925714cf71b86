package database

import (
	"encoding/json"
	"fmt"
	"time"

	"automod-bot/model"

	"github.com/jmoiron/sqlx"
)

// InitRuleDB initializes the automation rule database and ensures the table exists.
func InitRuleDB(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rule database: %w", err)
	}

	schema := `
    CREATE TABLE IF NOT EXISTS automation_rules (
        id TEXT PRIMARY KEY,
        server_id TEXT NOT NULL DEFAULT '',
        name TEXT NOT NULL,
        trigger_type TEXT NOT NULL,
        trigger_value TEXT NOT NULL DEFAULT '',
        action_type TEXT NOT NULL,
        action_payload TEXT NOT NULL DEFAULT '{}',
        enabled INTEGER NOT NULL DEFAULT 1,
        created_at DATETIME NOT NULL
    );`

	_, err = db.Exec(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create automation_rules table: %w", err)
	}

	return db, nil
}

type ruleRow struct {
	ID            string    `db:"id"`
	ServerID      string    `db:"server_id"`
	Name          string    `db:"name"`
	TriggerType   string    `db:"trigger_type"`
	TriggerValue  string    `db:"trigger_value"`
	ActionType    string    `db:"action_type"`
	ActionPayload string    `db:"action_payload"`
	Enabled       bool      `db:"enabled"`
	CreatedAt     time.Time `db:"created_at"`
}

// SaveRule upserts a rule. The action payload is stored as JSON text.
func SaveRule(db *sqlx.DB, rule model.Rule) error {
	payload, err := json.Marshal(rule.ActionPayload)
	if err != nil {
		return fmt.Errorf("failed to marshal action payload for rule %s: %w", rule.ID, err)
	}

	query := `INSERT OR REPLACE INTO automation_rules
              (id, server_id, name, trigger_type, trigger_value, action_type, action_payload, enabled, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = db.Exec(query, rule.ID, rule.ServerID, rule.Name, string(rule.TriggerType),
		rule.TriggerValue, string(rule.ActionType), string(payload), rule.Enabled, rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save rule %s: %w", rule.ID, err)
	}
	return nil
}

// LoadRules returns every persisted rule ordered by numeric id, which is the
// original insertion order.
func LoadRules(db *sqlx.DB) ([]model.Rule, error) {
	var rows []ruleRow
	query := `SELECT id, server_id, name, trigger_type, trigger_value, action_type, action_payload, enabled, created_at
              FROM automation_rules ORDER BY CAST(id AS INTEGER)`
	if err := db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	rules := make([]model.Rule, 0, len(rows))
	for _, row := range rows {
		rule := model.Rule{
			ID:           row.ID,
			ServerID:     row.ServerID,
			Name:         row.Name,
			TriggerType:  model.TriggerType(row.TriggerType),
			TriggerValue: row.TriggerValue,
			ActionType:   model.ActionType(row.ActionType),
			Enabled:      row.Enabled,
			CreatedAt:    row.CreatedAt,
		}
		if err := json.Unmarshal([]byte(row.ActionPayload), &rule.ActionPayload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal action payload for rule %s: %w", row.ID, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// DeleteRule removes a persisted rule by id.
func DeleteRule(db *sqlx.DB, ruleID string) error {
	_, err := db.Exec("DELETE FROM automation_rules WHERE id = ?", ruleID)
	if err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", ruleID, err)
	}
	return nil
}

// SetRuleEnabled flips the enabled flag of a persisted rule.
func SetRuleEnabled(db *sqlx.DB, ruleID string, enabled bool) error {
	_, err := db.Exec("UPDATE automation_rules SET enabled = ? WHERE id = ?", enabled, ruleID)
	if err != nil {
		return fmt.Errorf("failed to update rule %s: %w", ruleID, err)
	}
	return nil
}
