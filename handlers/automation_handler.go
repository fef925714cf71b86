package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"automod-bot/bot"
	"automod-bot/model"
	"automod-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleAutomationRuleCommand manages automation rules from a slash command.
func HandleAutomationRuleCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	action := optionString(opts, "action")

	switch action {
	case "create":
		handleRuleCreate(s, i, b, opts)
	case "list":
		handleRuleList(s, i, b)
	case "delete":
		handleRuleDelete(s, i, b, opts)
	case "enable", "disable":
		handleRuleToggle(s, i, b, opts, action == "enable")
	default:
		respondError(s, i, fmt.Sprintf("Unknown action: `%s`.", action))
	}
}

func handleRuleCreate(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	name := optionString(opts, "name")
	trigger := optionString(opts, "trigger")
	ruleAction := optionString(opts, "rule_action")
	if name == "" || trigger == "" || ruleAction == "" {
		respondError(s, i, "Name, trigger and rule_action are required to create a rule.")
		return
	}

	var payload map[string]any
	if raw := optionString(opts, "payload"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			respondError(s, i, "Payload must be valid JSON.")
			return
		}
	}

	ruleID, err := b.Engine.CreateRule(model.RuleSpec{
		ServerID:      i.GuildID,
		Name:          name,
		TriggerType:   model.TriggerType(trigger),
		TriggerValue:  optionString(opts, "trigger_value"),
		ActionType:    model.ActionType(ruleAction),
		ActionPayload: payload,
	})
	if err != nil {
		respondError(s, i, fmt.Sprintf("Could not create rule: %v", err))
		return
	}
	utils.SendEphemeralResponse(s, i, fmt.Sprintf("Created automation rule `%s`: %s", ruleID, name))
}

func handleRuleList(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	rules := b.Engine.ListRules()
	if len(rules) == 0 {
		utils.SendEphemeralResponse(s, i, "No automation rules configured.")
		return
	}

	var sb strings.Builder
	for _, rule := range rules {
		state := "enabled"
		if !rule.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(&sb, "ID: %s, Name: `%s`, Trigger: `%s`", rule.ID, rule.Name, rule.TriggerType)
		if rule.TriggerValue != "" {
			fmt.Fprintf(&sb, " (%s)", rule.TriggerValue)
		}
		fmt.Fprintf(&sb, ", Action: `%s`, %s\n", rule.ActionType, state)
	}
	utils.SendEphemeralResponse(s, i, sb.String())
}

func handleRuleDelete(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ruleID := optionString(opts, "rule_id")
	if ruleID == "" {
		respondError(s, i, "rule_id is required.")
		return
	}
	if err := b.Engine.DeleteRule(ruleID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respondError(s, i, fmt.Sprintf("No rule with id `%s`.", ruleID))
		} else {
			respondError(s, i, fmt.Sprintf("Could not delete rule: %v", err))
		}
		return
	}
	utils.SendEphemeralResponse(s, i, fmt.Sprintf("Deleted automation rule `%s`.", ruleID))
}

func handleRuleToggle(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, enabled bool) {
	ruleID := optionString(opts, "rule_id")
	if ruleID == "" {
		respondError(s, i, "rule_id is required.")
		return
	}
	if err := b.Engine.SetRuleEnabled(ruleID, enabled); err != nil {
		respondError(s, i, fmt.Sprintf("Could not update rule: %v", err))
		return
	}
	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	utils.SendEphemeralResponse(s, i, fmt.Sprintf("Rule `%s` is now %s.", ruleID, state))
}
