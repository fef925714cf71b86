package automation

import (
	"automod-bot/model"
)

// Engine is the entry point for event-triggered automation: it matches an
// event against the rule store and dispatches every matched rule in order.
type Engine struct {
	store      *Store
	matcher    *Matcher
	dispatcher *Dispatcher
}

// NewEngine assembles the matcher and dispatcher over a shared store.
func NewEngine(store *Store, dispatcher *Dispatcher) *Engine {
	return &Engine{
		store:      store,
		matcher:    NewMatcher(store),
		dispatcher: dispatcher,
	}
}

// OnEvent matches the event and dispatches each matched rule sequentially, in
// store insertion order. Outcomes come back in the same order; a failure in
// one rule never stops the rest.
func (e *Engine) OnEvent(event model.Event) []model.DispatchOutcome {
	rules := e.matcher.Match(event)
	if len(rules) == 0 {
		return nil
	}
	outcomes := make([]model.DispatchOutcome, 0, len(rules))
	for _, rule := range rules {
		outcomes = append(outcomes, e.dispatcher.Dispatch(rule, event))
	}
	return outcomes
}

// CreateRule registers a new automation rule and returns its id.
func (e *Engine) CreateRule(spec model.RuleSpec) (string, error) {
	return e.store.Create(spec)
}

// ListRules returns all rules in insertion order.
func (e *Engine) ListRules() []model.Rule {
	return e.store.List()
}

// DeleteRule removes a rule by id.
func (e *Engine) DeleteRule(id string) error {
	return e.store.Delete(id)
}

// SetRuleEnabled enables or disables a rule.
func (e *Engine) SetRuleEnabled(id string, enabled bool) error {
	return e.store.SetEnabled(id, enabled)
}

// RuleCount reports the number of registered rules, for status displays.
func (e *Engine) RuleCount() int {
	return e.store.Count()
}
