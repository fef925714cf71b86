package detector

import (
	"fmt"
	"log"

	"automod-bot/model"
)

// PatternType selects which detector a scan uses.
type PatternType string

const (
	PatternRepeatedMessage PatternType = "repeated_message"
	PatternLinkSpam        PatternType = "link_spam"
	PatternMentionSpam     PatternType = "mention_spam"
	PatternCapsSpam        PatternType = "caps_spam"
)

// ModerationAction is what happens to flagged messages on a live run.
type ModerationAction string

const (
	ActionDelete  ModerationAction = "delete"
	ActionTimeout ModerationAction = "timeout"
	ActionReport  ModerationAction = "report"
)

// Params tunes the detectors. Zero values fall back to the configured
// defaults.
type Params struct {
	RepeatThreshold  int
	LinkThreshold    int
	MentionThreshold int
	CapsRatio        float64
	CapsMinLength    int
	TimeoutMinutes   int
}

func (p Params) withDefaults(cfg model.AutomodConfig) Params {
	if p.RepeatThreshold <= 0 {
		p.RepeatThreshold = cfg.RepeatThreshold
	}
	if p.LinkThreshold <= 0 {
		p.LinkThreshold = cfg.LinkThreshold
	}
	if p.MentionThreshold <= 0 {
		p.MentionThreshold = cfg.MentionThreshold
	}
	if p.CapsRatio <= 0 {
		p.CapsRatio = cfg.CapsRatio
	}
	if p.CapsMinLength <= 0 {
		p.CapsMinLength = cfg.CapsMinLength
	}
	return p
}

// Result is the outcome of one auto-moderation pass.
type Result struct {
	MatchedIDs []string
	Applied    int
	Errors     []string
	DryRun     bool
}

// AutoModerator composes the pure detectors with a moderation action. A dry
// run produces the identical matched set to a live run and performs zero
// external side effects.
type AutoModerator struct {
	invoker model.Invoker
	cfg     model.AutomodConfig
}

// NewAutoModerator wires the driver to the platform invoker.
func NewAutoModerator(invoker model.Invoker, cfg model.AutomodConfig) *AutoModerator {
	return &AutoModerator{invoker: invoker, cfg: cfg}
}

// Scan classifies the window with the selected detector and returns the
// flagged message ids. It never touches the platform.
func (am *AutoModerator) Scan(messages []model.Message, pattern PatternType, params Params) ([]model.Message, error) {
	p := params.withDefaults(am.cfg)
	switch pattern {
	case PatternRepeatedMessage:
		return RepeatedMessage(messages, p.RepeatThreshold), nil
	case PatternLinkSpam:
		return LinkSpam(messages, p.LinkThreshold), nil
	case PatternMentionSpam:
		return MentionSpam(messages, p.MentionThreshold), nil
	case PatternCapsSpam:
		return CapsSpam(messages, p.CapsRatio, p.CapsMinLength), nil
	default:
		return nil, fmt.Errorf("%w: unknown pattern_type %q", model.ErrValidation, pattern)
	}
}

// Moderate runs a scan and, unless dryRun is set or the action is report,
// applies the action to each flagged message. Per-message failures are
// collected, never propagated; a timeout is applied once per author.
func (am *AutoModerator) Moderate(messages []model.Message, pattern PatternType, params Params, action ModerationAction, dryRun bool) (Result, error) {
	switch action {
	case ActionDelete, ActionTimeout, ActionReport:
	default:
		return Result{}, fmt.Errorf("%w: invalid action %q", model.ErrValidation, action)
	}
	if action == ActionTimeout && !dryRun && params.TimeoutMinutes <= 0 {
		return Result{}, fmt.Errorf("%w: timeout_minutes required for timeout action", model.ErrValidation)
	}

	matched, err := am.Scan(messages, pattern, params)
	if err != nil {
		return Result{}, err
	}

	result := Result{DryRun: dryRun}
	for _, msg := range matched {
		result.MatchedIDs = append(result.MatchedIDs, msg.ID)
	}

	if dryRun || action == ActionReport {
		return result, nil
	}

	timedOut := make(map[string]bool)
	for _, msg := range matched {
		switch action {
		case ActionDelete:
			_, err := am.invoker.Invoke("delete_message", map[string]any{
				"channel_id": msg.ChannelID,
				"message_id": msg.ID,
				"reason":     "Auto-moderated: " + string(pattern),
			})
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", msg.ID, err))
				continue
			}
			result.Applied++
		case ActionTimeout:
			if timedOut[msg.AuthorID] {
				continue
			}
			_, err := am.invoker.Invoke("timeout_member", map[string]any{
				"guild_id":        msg.GuildID,
				"user_id":         msg.AuthorID,
				"timeout_minutes": params.TimeoutMinutes,
				"reason":          "Auto-moderated: " + string(pattern),
			})
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", msg.AuthorID, err))
				continue
			}
			timedOut[msg.AuthorID] = true
			result.Applied++
		}
	}

	if result.Applied > 0 {
		log.Printf("Auto-moderation applied %s to %d targets (%s)", action, result.Applied, pattern)
	}
	return result, nil
}
