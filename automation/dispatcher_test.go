package automation

import (
	"fmt"
	"sync"
	"testing"

	"automod-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invocation struct {
	action  string
	payload map[string]any
}

// fakePlatform records invocations and serves role membership from a map,
// standing in for the Discord adapter.
type fakePlatform struct {
	mu     sync.Mutex
	calls  []invocation
	failOn map[string]error // action type -> error
	roles  map[string]bool  // guild|user|role -> held
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		failOn: make(map[string]error),
		roles:  make(map[string]bool),
	}
}

func (f *fakePlatform) Invoke(action string, payload map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failOn[action]; ok {
		return "", err
	}
	f.calls = append(f.calls, invocation{action: action, payload: payload})
	return "ok", nil
}

func (f *fakePlatform) HasRole(guildID, userID, roleID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[guildID+"|"+userID+"|"+roleID], nil
}

func (f *fakePlatform) grantRole(guildID, userID, roleID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[guildID+"|"+userID+"|"+roleID] = true
}

func (f *fakePlatform) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakePlatform) lastCall() invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func TestDispatchSendMessageSubstitutesPlaceholders(t *testing.T) {
	platform := newFakePlatform()
	d := NewDispatcher(platform, platform, nil)

	rule := model.Rule{
		ID:         "1",
		Name:       "welcome",
		ActionType: model.ActionSendMessage,
		ActionPayload: map[string]any{
			"channel_id": "42",
			"content":    "Welcome {username} to {server}!",
		},
	}
	event := model.MemberJoinEvent{GuildID: "g1", GuildName: "My Server", UserID: "100", Username: "bob", Mention: "<@100>"}

	outcome := d.Dispatch(rule, event)
	assert.Equal(t, model.DispatchExecuted, outcome.Status)

	call := platform.lastCall()
	assert.Equal(t, "send_message", call.action)
	assert.Equal(t, "42", call.payload["channel_id"])
	assert.Equal(t, "Welcome bob to My Server!", call.payload["content"])
}

func TestDispatchSendMessageMissingChannelSkips(t *testing.T) {
	platform := newFakePlatform()
	d := NewDispatcher(platform, platform, nil)

	rule := model.Rule{ID: "1", ActionType: model.ActionSendMessage, ActionPayload: map[string]any{"content": "hi"}}
	outcome := d.Dispatch(rule, model.MemberJoinEvent{GuildID: "g1"})

	assert.Equal(t, model.DispatchSkipped, outcome.Status)
	assert.Equal(t, 0, platform.callCount())
}

func TestDispatchAssignRoleIdempotent(t *testing.T) {
	platform := newFakePlatform()
	d := NewDispatcher(platform, platform, nil)

	rule := model.Rule{
		ID:            "1",
		Name:          "reaction role",
		ActionType:    model.ActionAssignRole,
		ActionPayload: map[string]any{"role_id": "r1"},
	}
	event := model.ReactionEvent{GuildID: "g1", UserID: "100", Emoji: "⭐", Added: true}

	outcome := d.Dispatch(rule, event)
	require.Equal(t, model.DispatchExecuted, outcome.Status)
	assert.Equal(t, 1, platform.callCount())
	assert.Equal(t, "assign_role", platform.lastCall().action)

	// Member now holds the role; a second dispatch is a no-op success.
	platform.grantRole("g1", "100", "r1")
	outcome = d.Dispatch(rule, event)
	assert.Equal(t, model.DispatchExecuted, outcome.Status)
	assert.Equal(t, 1, platform.callCount())
}

func TestDispatchReactionRemovalRemovesRole(t *testing.T) {
	platform := newFakePlatform()
	platform.grantRole("g1", "100", "r1")
	d := NewDispatcher(platform, platform, nil)

	rule := model.Rule{
		ID:            "1",
		ActionType:    model.ActionAssignRole,
		ActionPayload: map[string]any{"role_id": "r1"},
	}
	event := model.ReactionEvent{GuildID: "g1", UserID: "100", Emoji: "⭐", Added: false}

	outcome := d.Dispatch(rule, event)
	require.Equal(t, model.DispatchExecuted, outcome.Status)
	assert.Equal(t, "remove_role", platform.lastCall().action)

	// Removing a role the member lacks is also a no-op success.
	platform.mu.Lock()
	platform.roles = make(map[string]bool)
	platform.mu.Unlock()
	before := platform.callCount()
	outcome = d.Dispatch(rule, event)
	assert.Equal(t, model.DispatchExecuted, outcome.Status)
	assert.Equal(t, before, platform.callCount())
}

func TestDispatchUnknownActionSkips(t *testing.T) {
	platform := newFakePlatform()
	d := NewDispatcher(platform, platform, nil)

	rule := model.Rule{ID: "1", ActionType: "detonate"}
	outcome := d.Dispatch(rule, model.MemberJoinEvent{GuildID: "g1"})
	assert.Equal(t, model.DispatchSkipped, outcome.Status)
}

func TestOnEventIsolatesFailures(t *testing.T) {
	platform := newFakePlatform()
	platform.failOn["send_message"] = fmt.Errorf("channel gone")

	st := NewStore(nil)
	mustCreate(t, st, model.RuleSpec{
		Name:          "broken",
		TriggerType:   model.TriggerMemberJoin,
		ActionType:    model.ActionSendMessage,
		ActionPayload: map[string]any{"channel_id": "dead", "content": "hi"},
	})
	mustCreate(t, st, model.RuleSpec{
		Name:        "healthy",
		TriggerType: model.TriggerMemberJoin,
		ActionType:  model.ActionLog,
	})

	engine := NewEngine(st, NewDispatcher(platform, platform, nil))
	outcomes := engine.OnEvent(joinEvent("g1"))

	require.Len(t, outcomes, 2)
	assert.Equal(t, model.DispatchFailed, outcomes[0].Status)
	assert.Contains(t, outcomes[0].Detail, "channel gone")
	assert.Equal(t, model.DispatchExecuted, outcomes[1].Status)

	// The failing rule stays enabled for future events.
	rules := engine.ListRules()
	assert.True(t, rules[0].Enabled)
}

func TestOnEventWelcomeEndToEnd(t *testing.T) {
	platform := newFakePlatform()
	st := NewStore(nil)
	mustCreate(t, st, model.RuleSpec{
		Name:        "welcome",
		TriggerType: model.TriggerMemberJoin,
		ActionType:  model.ActionSendMessage,
		ActionPayload: map[string]any{
			"channel_id": "1",
			"content":    "Welcome {username}!",
		},
	})

	engine := NewEngine(st, NewDispatcher(platform, platform, nil))
	outcomes := engine.OnEvent(model.MemberJoinEvent{GuildID: "g1", UserID: "100", Username: "bob", Mention: "<@100>"})

	require.Len(t, outcomes, 1)
	assert.Equal(t, model.DispatchExecuted, outcomes[0].Status)
	assert.Equal(t, "Welcome bob!", platform.lastCall().payload["content"])
}

func TestSubstitutePlaceholdersReactionContext(t *testing.T) {
	event := model.ReactionEvent{
		GuildName: "Server",
		Username:  "alice",
		Mention:   "<@7>",
		Emoji:     "⭐",
		Added:     true,
	}
	got := SubstitutePlaceholders("{user} reacted {emoji} in {server}", event)
	assert.Equal(t, "<@7> reacted ⭐ in Server", got)

	// Placeholders with no event value stay literal.
	got = SubstitutePlaceholders("{emoji}", model.MemberJoinEvent{Username: "bob"})
	assert.Equal(t, "{emoji}", got)
}
