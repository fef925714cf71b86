package detector

import (
	"fmt"
	"sync"
	"testing"

	"automod-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModInvoker struct {
	mu       sync.Mutex
	calls    []string
	payloads []map[string]any
	failOn   map[string]bool
}

func (f *fakeModInvoker) Invoke(actionType string, payload map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, actionType)
	f.payloads = append(f.payloads, payload)
	if id, ok := payload["message_id"].(string); ok && f.failOn[id] {
		return "", fmt.Errorf("missing permissions")
	}
	return "ok", nil
}

func testConfig() model.AutomodConfig {
	return model.AutomodConfig{
		RepeatThreshold:  3,
		LinkThreshold:    3,
		MentionThreshold: 5,
		CapsRatio:        0.7,
		CapsMinLength:    15,
	}
}

func spamWindow() []model.Message {
	mk := func(id, author, content string) model.Message {
		return model.Message{ID: id, GuildID: "g1", ChannelID: "c1", AuthorID: author, Content: content}
	}
	return []model.Message{
		mk("1", "alice", "buy now"),
		mk("2", "alice", "buy now"),
		mk("3", "alice", "buy now"),
		mk("4", "bob", "unrelated"),
	}
}

func TestScanUsesConfiguredDefaults(t *testing.T) {
	am := NewAutoModerator(&fakeModInvoker{}, testConfig())

	matched, err := am.Scan(spamWindow(), PatternRepeatedMessage, Params{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(matched))
}

func TestScanParamsOverrideDefaults(t *testing.T) {
	am := NewAutoModerator(&fakeModInvoker{}, testConfig())

	matched, err := am.Scan(spamWindow(), PatternRepeatedMessage, Params{RepeatThreshold: 4})
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestScanUnknownPattern(t *testing.T) {
	am := NewAutoModerator(&fakeModInvoker{}, testConfig())

	_, err := am.Scan(spamWindow(), "invite_spam", Params{})
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestModerateInvalidAction(t *testing.T) {
	am := NewAutoModerator(&fakeModInvoker{}, testConfig())

	_, err := am.Moderate(spamWindow(), PatternRepeatedMessage, Params{}, "ban", false)
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestModerateTimeoutRequiresMinutes(t *testing.T) {
	am := NewAutoModerator(&fakeModInvoker{}, testConfig())

	_, err := am.Moderate(spamWindow(), PatternRepeatedMessage, Params{}, ActionTimeout, false)
	require.ErrorIs(t, err, model.ErrValidation)

	// A dry run only previews, so the parameter is not needed.
	_, err = am.Moderate(spamWindow(), PatternRepeatedMessage, Params{}, ActionTimeout, true)
	require.NoError(t, err)
}

func TestModerateDryRunEquivalence(t *testing.T) {
	invoker := &fakeModInvoker{}
	am := NewAutoModerator(invoker, testConfig())
	window := spamWindow()

	dry, err := am.Moderate(window, PatternRepeatedMessage, Params{}, ActionDelete, true)
	require.NoError(t, err)
	assert.Empty(t, invoker.calls, "dry run must not touch the platform")
	assert.Zero(t, dry.Applied)
	assert.True(t, dry.DryRun)

	live, err := am.Moderate(window, PatternRepeatedMessage, Params{}, ActionDelete, false)
	require.NoError(t, err)

	assert.Equal(t, dry.MatchedIDs, live.MatchedIDs)
	assert.Equal(t, 3, live.Applied)
	assert.Equal(t, []string{"delete_message", "delete_message", "delete_message"}, invoker.calls)
}

func TestModerateReportNeverApplies(t *testing.T) {
	invoker := &fakeModInvoker{}
	am := NewAutoModerator(invoker, testConfig())

	res, err := am.Moderate(spamWindow(), PatternRepeatedMessage, Params{}, ActionReport, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, res.MatchedIDs)
	assert.Zero(t, res.Applied)
	assert.Empty(t, invoker.calls)
}

func TestModerateTimeoutOncePerAuthor(t *testing.T) {
	invoker := &fakeModInvoker{}
	am := NewAutoModerator(invoker, testConfig())

	res, err := am.Moderate(spamWindow(), PatternRepeatedMessage, Params{TimeoutMinutes: 10}, ActionTimeout, false)
	require.NoError(t, err)

	// Three flagged messages all belong to alice; one timeout suffices.
	assert.Len(t, res.MatchedIDs, 3)
	assert.Equal(t, 1, res.Applied)
	require.Len(t, invoker.payloads, 1)
	assert.Equal(t, "alice", invoker.payloads[0]["user_id"])
	assert.Equal(t, 10, invoker.payloads[0]["timeout_minutes"])
}

func TestModerateCollectsPerMessageErrors(t *testing.T) {
	invoker := &fakeModInvoker{failOn: map[string]bool{"2": true}}
	am := NewAutoModerator(invoker, testConfig())

	res, err := am.Moderate(spamWindow(), PatternRepeatedMessage, Params{}, ActionDelete, false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Applied)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "2:")
}
