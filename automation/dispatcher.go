package automation

import (
	"fmt"
	"log"
	"strings"

	"automod-bot/model"
)

// Dispatcher executes the action of each matched rule. Every dispatch is
// isolated: a failing action is recorded against its own rule and never halts
// the remaining matched rules for the same event.
type Dispatcher struct {
	invoker model.Invoker
	roles   model.RoleDirectory
	logger  model.ChannelLogger
}

// NewDispatcher wires the dispatcher to the platform collaborators. logger
// may be nil to disable channel logging.
func NewDispatcher(invoker model.Invoker, roles model.RoleDirectory, logger model.ChannelLogger) *Dispatcher {
	return &Dispatcher{invoker: invoker, roles: roles, logger: logger}
}

type actionHandler func(d *Dispatcher, rule model.Rule, event model.Event) model.DispatchOutcome

// actionHandlers is the closed mapping from action kind to handler. Adding an
// action type means adding an entry here.
var actionHandlers = map[model.ActionType]actionHandler{
	model.ActionSendMessage: (*Dispatcher).dispatchSendMessage,
	model.ActionAssignRole:  (*Dispatcher).dispatchAssignRole,
	model.ActionLog:         (*Dispatcher).dispatchLog,
}

// Dispatch runs one matched rule's action and reports the outcome.
func (d *Dispatcher) Dispatch(rule model.Rule, event model.Event) model.DispatchOutcome {
	handler, ok := actionHandlers[rule.ActionType]
	if !ok {
		return model.DispatchOutcome{
			RuleID: rule.ID,
			Status: model.DispatchSkipped,
			Detail: fmt.Sprintf("unknown action_type %q", rule.ActionType),
		}
	}
	outcome := handler(d, rule, event)
	if outcome.Status == model.DispatchFailed {
		log.Printf("Error executing automation rule %s (%s): %s", rule.ID, rule.Name, outcome.Detail)
		if d.logger != nil {
			d.logger.Log("ERROR", "Automation", "Dispatch", fmt.Sprintf("rule %s: %s", rule.ID, outcome.Detail))
		}
	}
	return outcome
}

func (d *Dispatcher) dispatchSendMessage(rule model.Rule, event model.Event) model.DispatchOutcome {
	channelID := rule.PayloadString("channel_id")
	if channelID == "" {
		return model.DispatchOutcome{
			RuleID: rule.ID,
			Status: model.DispatchSkipped,
			Detail: "send_message payload missing channel_id",
		}
	}

	content := rule.PayloadString("content")
	if content == "" {
		content = "Welcome to the server!"
	}
	content = SubstitutePlaceholders(content, event)

	result, err := d.invoker.Invoke("send_message", map[string]any{
		"channel_id": channelID,
		"content":    content,
	})
	if err != nil {
		return model.DispatchOutcome{RuleID: rule.ID, Status: model.DispatchFailed, Detail: err.Error()}
	}
	log.Printf("Executed automation rule %s: sent message", rule.ID)
	return model.DispatchOutcome{RuleID: rule.ID, Status: model.DispatchExecuted, Detail: result}
}

func (d *Dispatcher) dispatchAssignRole(rule model.Rule, event model.Event) model.DispatchOutcome {
	roleID := rule.PayloadString("role_id")
	if roleID == "" {
		return model.DispatchOutcome{
			RuleID: rule.ID,
			Status: model.DispatchSkipped,
			Detail: "assign_role payload missing role_id",
		}
	}

	guildID := event.ServerID()
	userID := eventUserID(event)
	if userID == "" {
		return model.DispatchOutcome{
			RuleID: rule.ID,
			Status: model.DispatchSkipped,
			Detail: "event carries no member to act on",
		}
	}

	// Reaction removal triggers the symmetric role removal.
	removing := false
	if re, ok := event.(model.ReactionEvent); ok && !re.Added {
		removing = true
	}

	has, err := d.roles.HasRole(guildID, userID, roleID)
	if err != nil {
		return model.DispatchOutcome{RuleID: rule.ID, Status: model.DispatchFailed, Detail: err.Error()}
	}

	// Idempotent: assigning a role the member already has, or removing one
	// they lack, is a no-op success.
	if removing == !has {
		return model.DispatchOutcome{RuleID: rule.ID, Status: model.DispatchExecuted, Detail: "no-op, membership already correct"}
	}

	action := "assign_role"
	if removing {
		action = "remove_role"
	}
	result, err := d.invoker.Invoke(action, map[string]any{
		"guild_id": guildID,
		"user_id":  userID,
		"role_id":  roleID,
		"reason":   fmt.Sprintf("Automation rule: %s", rule.Name),
	})
	if err != nil {
		return model.DispatchOutcome{RuleID: rule.ID, Status: model.DispatchFailed, Detail: err.Error()}
	}
	log.Printf("Executed automation rule %s: %s for user %s", rule.ID, action, userID)
	return model.DispatchOutcome{RuleID: rule.ID, Status: model.DispatchExecuted, Detail: result}
}

func (d *Dispatcher) dispatchLog(rule model.Rule, event model.Event) model.DispatchOutcome {
	detail := fmt.Sprintf("Automation rule %s (%s) triggered by %s event", rule.ID, rule.Name, event.Trigger())
	log.Print(detail)
	if d.logger != nil {
		d.logger.Log("INFO", "Automation", "Rule", detail)
	}
	return model.DispatchOutcome{RuleID: rule.ID, Status: model.DispatchExecuted, Detail: detail}
}

// SubstitutePlaceholders fills {user}, {username}, {server} and {emoji} from
// the event context. Placeholders without a value in the event are left alone.
func SubstitutePlaceholders(content string, event model.Event) string {
	replace := func(key, value string) {
		if value != "" {
			content = strings.ReplaceAll(content, key, value)
		}
	}
	switch ev := event.(type) {
	case model.MemberJoinEvent:
		replace("{user}", ev.Mention)
		replace("{username}", ev.Username)
		replace("{server}", ev.GuildName)
	case model.ReactionEvent:
		replace("{user}", ev.Mention)
		replace("{username}", ev.Username)
		replace("{server}", ev.GuildName)
		replace("{emoji}", ev.Emoji)
	case model.MessageEvent:
		replace("{user}", ev.Mention)
		replace("{username}", ev.AuthorName)
		replace("{server}", ev.GuildName)
	}
	return content
}

func eventUserID(event model.Event) string {
	switch ev := event.(type) {
	case model.MemberJoinEvent:
		return ev.UserID
	case model.ReactionEvent:
		return ev.UserID
	case model.MessageEvent:
		return ev.AuthorID
	}
	return ""
}
