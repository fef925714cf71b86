package automation

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"automod-bot/model"
	"automod-bot/utils/database"

	"github.com/jmoiron/sqlx"
)

// Store is the in-memory automation rule registry. Rules keep their insertion
// order, which is the order the matcher reports matches in. When a database
// handle is attached, mutations are written through so rules survive restarts.
type Store struct {
	mu      sync.RWMutex
	rules   map[string]*model.Rule
	order   []string
	counter atomic.Int64
	db      *sqlx.DB
}

// NewStore creates an empty rule store. db may be nil for a purely in-memory
// store (tests).
func NewStore(db *sqlx.DB) *Store {
	return &Store{
		rules: make(map[string]*model.Rule),
		order: make([]string, 0),
		db:    db,
	}
}

// LoadPersisted re-inserts rules saved by a previous run, keeping the id
// counter ahead of every loaded id so new ids stay unique.
func (st *Store) LoadPersisted() error {
	if st.db == nil {
		return nil
	}
	rules, err := database.LoadRules(st.db)
	if err != nil {
		return fmt.Errorf("failed to load persisted rules: %w", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	for i := range rules {
		rule := rules[i]
		st.rules[rule.ID] = &rule
		st.order = append(st.order, rule.ID)
		if n, err := strconv.ParseInt(rule.ID, 10, 64); err == nil && n > st.counter.Load() {
			st.counter.Store(n)
		}
	}
	log.Printf("Loaded %d automation rules from database", len(rules))
	return nil
}

// Create validates the spec, assigns the next monotonic id and inserts the
// rule. The id namespace is process-wide and never reused.
func (st *Store) Create(spec model.RuleSpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}

	enabled := true
	if spec.Enabled != nil {
		enabled = *spec.Enabled
	}
	payload := spec.ActionPayload
	if payload == nil {
		payload = make(map[string]any)
	}

	rule := &model.Rule{
		ID:            strconv.FormatInt(st.counter.Add(1), 10),
		ServerID:      spec.ServerID,
		Name:          spec.Name,
		TriggerType:   spec.TriggerType,
		TriggerValue:  spec.TriggerValue,
		ActionType:    spec.ActionType,
		ActionPayload: payload,
		Enabled:       enabled,
		CreatedAt:     time.Now().UTC(),
	}

	st.mu.Lock()
	st.rules[rule.ID] = rule
	st.order = append(st.order, rule.ID)
	st.mu.Unlock()

	if st.db != nil {
		if err := database.SaveRule(st.db, *rule); err != nil {
			log.Printf("Error persisting rule %s: %v", rule.ID, err)
		}
	}
	return rule.ID, nil
}

// Get returns a copy of the rule with the given id.
func (st *Store) Get(id string) (model.Rule, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	rule, ok := st.rules[id]
	if !ok {
		return model.Rule{}, fmt.Errorf("%w: rule %s", model.ErrNotFound, id)
	}
	return *rule, nil
}

// List returns all rules in insertion order.
func (st *Store) List() []model.Rule {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]model.Rule, 0, len(st.order))
	for _, id := range st.order {
		out = append(out, *st.rules[id])
	}
	return out
}

// ListByTrigger returns rules with the given trigger type in insertion order.
// Disabled rules are included; the matcher filters them.
func (st *Store) ListByTrigger(trigger model.TriggerType) []model.Rule {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]model.Rule, 0)
	for _, id := range st.order {
		if st.rules[id].TriggerType == trigger {
			out = append(out, *st.rules[id])
		}
	}
	return out
}

// Delete removes a rule by id.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	if _, ok := st.rules[id]; !ok {
		st.mu.Unlock()
		return fmt.Errorf("%w: rule %s", model.ErrNotFound, id)
	}
	delete(st.rules, id)
	for i, rid := range st.order {
		if rid == id {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
	st.mu.Unlock()

	if st.db != nil {
		if err := database.DeleteRule(st.db, id); err != nil {
			log.Printf("Error deleting persisted rule %s: %v", id, err)
		}
	}
	return nil
}

// SetEnabled flips a rule's enabled flag. A disabled rule is never matched.
func (st *Store) SetEnabled(id string, enabled bool) error {
	st.mu.Lock()
	rule, ok := st.rules[id]
	if !ok {
		st.mu.Unlock()
		return fmt.Errorf("%w: rule %s", model.ErrNotFound, id)
	}
	rule.Enabled = enabled
	st.mu.Unlock()

	if st.db != nil {
		if err := database.SetRuleEnabled(st.db, id, enabled); err != nil {
			log.Printf("Error updating persisted rule %s: %v", id, err)
		}
	}
	return nil
}

// Count returns the number of registered rules.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.order)
}
