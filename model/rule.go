package model

import (
	"fmt"
	"time"
)

// TriggerType identifies the kind of platform event a rule reacts to.
type TriggerType string

const (
	TriggerMemberJoin      TriggerType = "member_join"
	TriggerReactionAdded   TriggerType = "reaction_added"
	TriggerMessageContains TriggerType = "message_contains"
)

// ActionType identifies what a matched rule does.
type ActionType string

const (
	ActionSendMessage ActionType = "send_message"
	ActionAssignRole  ActionType = "assign_role"
	ActionLog         ActionType = "log"
)

// Rule binds a trigger condition to an action. Reaction removal events are
// matched by TriggerReactionAdded rules as well; the removal side is handled
// inside the action, gated by the remove_on_unreact payload flag.
type Rule struct {
	ID            string         `db:"id"`
	ServerID      string         `db:"server_id"`
	Name          string         `db:"name"`
	TriggerType   TriggerType    `db:"trigger_type"`
	TriggerValue  string         `db:"trigger_value"`
	ActionType    ActionType     `db:"action_type"`
	ActionPayload map[string]any `db:"-"`
	Enabled       bool           `db:"enabled"`
	CreatedAt     time.Time      `db:"created_at"`
}

// RuleSpec is the caller-supplied part of a rule; the store assigns ID and
// CreatedAt on insert.
type RuleSpec struct {
	ServerID      string
	Name          string
	TriggerType   TriggerType
	TriggerValue  string
	ActionType    ActionType
	ActionPayload map[string]any
	Enabled       *bool // nil means enabled
}

// Validate rejects rule specs before any state mutation.
func (s RuleSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: rule name is required", ErrValidation)
	}
	switch s.TriggerType {
	case TriggerMemberJoin, TriggerReactionAdded, TriggerMessageContains:
	default:
		return fmt.Errorf("%w: unknown trigger_type %q", ErrValidation, s.TriggerType)
	}
	switch s.ActionType {
	case ActionSendMessage, ActionAssignRole, ActionLog:
	default:
		return fmt.Errorf("%w: unknown action_type %q", ErrValidation, s.ActionType)
	}
	return nil
}

// PayloadString reads a string field out of the action payload.
func (r *Rule) PayloadString(key string) string {
	if r.ActionPayload == nil {
		return ""
	}
	if v, ok := r.ActionPayload[key].(string); ok {
		return v
	}
	return ""
}

// PayloadBool reads a bool field out of the action payload, falling back to
// def when absent or mistyped.
func (r *Rule) PayloadBool(key string, def bool) bool {
	if r.ActionPayload == nil {
		return def
	}
	if v, ok := r.ActionPayload[key].(bool); ok {
		return v
	}
	return def
}

// RemoveOnUnreact reports whether the rule's action should also fire on
// reaction removal. Defaults to true for reaction roles.
func (r *Rule) RemoveOnUnreact() bool {
	return r.PayloadBool("remove_on_unreact", true)
}
