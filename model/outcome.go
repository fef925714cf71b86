package model

// DispatchStatus is the per-rule result of dispatching a matched rule.
type DispatchStatus string

const (
	DispatchExecuted DispatchStatus = "executed"
	DispatchSkipped  DispatchStatus = "skipped"
	DispatchFailed   DispatchStatus = "failed"
)

// DispatchOutcome records what happened when one matched rule's action ran.
// A failed outcome is isolated to its rule and never stops sibling rules.
type DispatchOutcome struct {
	RuleID string
	Status DispatchStatus
	Detail string
}
