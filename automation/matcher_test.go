package automation

import (
	"testing"

	"automod-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreate(t *testing.T, st *Store, spec model.RuleSpec) string {
	t.Helper()
	id, err := st.Create(spec)
	require.NoError(t, err)
	return id
}

func joinEvent(guildID string) model.MemberJoinEvent {
	return model.MemberJoinEvent{
		GuildID:   guildID,
		GuildName: "Test Guild",
		UserID:    "100",
		Username:  "bob",
		Mention:   "<@100>",
	}
}

func reactionEvent(emoji string, added bool) model.ReactionEvent {
	return model.ReactionEvent{
		GuildID:   "g1",
		ChannelID: "c1",
		MessageID: "m1",
		UserID:    "100",
		Username:  "bob",
		Mention:   "<@100>",
		Emoji:     emoji,
		Added:     added,
	}
}

func TestMatchSkipsDisabledRules(t *testing.T) {
	st := NewStore(nil)
	disabled := false
	mustCreate(t, st, model.RuleSpec{
		Name:        "off",
		TriggerType: model.TriggerMemberJoin,
		ActionType:  model.ActionLog,
		Enabled:     &disabled,
	})

	m := NewMatcher(st)
	assert.Empty(t, m.Match(joinEvent("g1")))
}

func TestMatchTriggerTypeEquality(t *testing.T) {
	st := NewStore(nil)
	mustCreate(t, st, model.RuleSpec{Name: "join", TriggerType: model.TriggerMemberJoin, ActionType: model.ActionLog})
	mustCreate(t, st, model.RuleSpec{Name: "react", TriggerType: model.TriggerReactionAdded, ActionType: model.ActionLog})

	m := NewMatcher(st)
	matched := m.Match(joinEvent("g1"))
	require.Len(t, matched, 1)
	assert.Equal(t, "join", matched[0].Name)
}

func TestMatchServerScope(t *testing.T) {
	st := NewStore(nil)
	mustCreate(t, st, model.RuleSpec{Name: "scoped", ServerID: "g1", TriggerType: model.TriggerMemberJoin, ActionType: model.ActionLog})
	mustCreate(t, st, model.RuleSpec{Name: "global", TriggerType: model.TriggerMemberJoin, ActionType: model.ActionLog})

	m := NewMatcher(st)

	matched := m.Match(joinEvent("g1"))
	require.Len(t, matched, 2)

	matched = m.Match(joinEvent("g2"))
	require.Len(t, matched, 1)
	assert.Equal(t, "global", matched[0].Name)
}

func TestMatchEmojiTriggerValue(t *testing.T) {
	st := NewStore(nil)
	mustCreate(t, st, model.RuleSpec{
		Name:         "star only",
		TriggerType:  model.TriggerReactionAdded,
		TriggerValue: "⭐",
		ActionType:   model.ActionLog,
	})
	mustCreate(t, st, model.RuleSpec{
		Name:        "wildcard",
		TriggerType: model.TriggerReactionAdded,
		ActionType:  model.ActionLog,
	})

	m := NewMatcher(st)

	matched := m.Match(reactionEvent("⭐", true))
	require.Len(t, matched, 2)

	matched = m.Match(reactionEvent("<:custom:12345>", true))
	require.Len(t, matched, 1)
	assert.Equal(t, "wildcard", matched[0].Name)
}

func TestMatchMessageIDFilter(t *testing.T) {
	st := NewStore(nil)
	mustCreate(t, st, model.RuleSpec{
		Name:          "pinned message",
		TriggerType:   model.TriggerReactionAdded,
		ActionType:    model.ActionAssignRole,
		ActionPayload: map[string]any{"role_id": "r1", "message_id": "m1"},
	})

	m := NewMatcher(st)

	assert.Len(t, m.Match(reactionEvent("⭐", true)), 1)

	other := reactionEvent("⭐", true)
	other.MessageID = "m2"
	assert.Empty(t, m.Match(other))
}

func TestMatchRemoveOnUnreact(t *testing.T) {
	st := NewStore(nil)
	mustCreate(t, st, model.RuleSpec{
		Name:          "sticky",
		TriggerType:   model.TriggerReactionAdded,
		ActionType:    model.ActionAssignRole,
		ActionPayload: map[string]any{"role_id": "r1", "remove_on_unreact": false},
	})
	mustCreate(t, st, model.RuleSpec{
		Name:          "symmetric",
		TriggerType:   model.TriggerReactionAdded,
		ActionType:    model.ActionAssignRole,
		ActionPayload: map[string]any{"role_id": "r2"},
	})

	m := NewMatcher(st)

	// Additions match both; removals only the rule that opted in (default).
	assert.Len(t, m.Match(reactionEvent("⭐", true)), 2)

	matched := m.Match(reactionEvent("⭐", false))
	require.Len(t, matched, 1)
	assert.Equal(t, "symmetric", matched[0].Name)
}

func TestMatchMessageContains(t *testing.T) {
	st := NewStore(nil)
	mustCreate(t, st, model.RuleSpec{
		Name:         "keyword",
		TriggerType:  model.TriggerMessageContains,
		TriggerValue: "Hello",
		ActionType:   model.ActionLog,
	})
	// A contains-rule without a keyword is malformed and never matches.
	mustCreate(t, st, model.RuleSpec{
		Name:        "empty keyword",
		TriggerType: model.TriggerMessageContains,
		ActionType:  model.ActionLog,
	})

	m := NewMatcher(st)

	event := model.MessageEvent{GuildID: "g1", Content: "well hello there"}
	matched := m.Match(event)
	require.Len(t, matched, 1)
	assert.Equal(t, "keyword", matched[0].Name)

	event.Content = "nothing relevant"
	assert.Empty(t, m.Match(event))
}

func TestMatchInsertionOrder(t *testing.T) {
	st := NewStore(nil)
	for _, name := range []string{"first", "second", "third"} {
		mustCreate(t, st, model.RuleSpec{Name: name, TriggerType: model.TriggerMemberJoin, ActionType: model.ActionLog})
	}

	m := NewMatcher(st)
	matched := m.Match(joinEvent("g1"))
	require.Len(t, matched, 3)
	assert.Equal(t, "first", matched[0].Name)
	assert.Equal(t, "second", matched[1].Name)
	assert.Equal(t, "third", matched[2].Name)
}

func TestMatchIgnoresDeleteEvents(t *testing.T) {
	st := NewStore(nil)
	mustCreate(t, st, model.RuleSpec{Name: "any", TriggerType: model.TriggerMemberJoin, ActionType: model.ActionLog})

	m := NewMatcher(st)
	assert.Empty(t, m.Match(model.MessageDeleteEvent{GuildID: "g1"}))
}
