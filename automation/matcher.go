package automation

import (
	"strings"

	"automod-bot/model"
)

// Matcher evaluates incoming events against the rule store. Matching is pure
// and never errors: a malformed rule simply does not match.
type Matcher struct {
	store *Store
}

// NewMatcher creates a matcher over the given store.
func NewMatcher(store *Store) *Matcher {
	return &Matcher{store: store}
}

// Match returns the rules whose trigger conditions the event satisfies, in
// store insertion order. Predicates run cheapest-first and short-circuit on
// the first failure.
func (m *Matcher) Match(event model.Event) []model.Rule {
	trigger := event.Trigger()
	if trigger == "" {
		return nil
	}

	var matched []model.Rule
	for _, rule := range m.store.ListByTrigger(trigger) {
		if !rule.Enabled {
			continue
		}
		// Scope filter: string compare to avoid integer-width issues with
		// snowflake ids.
		if rule.ServerID != "" && rule.ServerID != event.ServerID() {
			continue
		}
		if !m.matchTriggerValue(rule, event) {
			continue
		}
		matched = append(matched, rule)
	}
	return matched
}

func (m *Matcher) matchTriggerValue(rule model.Rule, event model.Event) bool {
	switch ev := event.(type) {
	case model.ReactionEvent:
		if rule.TriggerValue != "" && ev.Emoji != rule.TriggerValue {
			return false
		}
		if msgID := rule.PayloadString("message_id"); msgID != "" && msgID != ev.MessageID {
			return false
		}
		// Reaction removals only reach rules that opted into the symmetric
		// removal action.
		if !ev.Added && !rule.RemoveOnUnreact() {
			return false
		}
		return true
	case model.MessageEvent:
		if rule.TriggerValue == "" {
			// A contains-rule without a keyword would match everything;
			// treat it as malformed and never match.
			return false
		}
		return strings.Contains(strings.ToLower(ev.Content), strings.ToLower(rule.TriggerValue))
	case model.MemberJoinEvent:
		return true
	default:
		return false
	}
}
