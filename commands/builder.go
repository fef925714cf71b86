package commands

import (
	"github.com/bwmarrin/discordgo"
)

// Generate returns the slash command set registered for every guild.
func Generate() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "automation-rule",
			Description: "Manage automation rules",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "What to do",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "create", Value: "create"},
						{Name: "list", Value: "list"},
						{Name: "delete", Value: "delete"},
						{Name: "enable", Value: "enable"},
						{Name: "disable", Value: "disable"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Rule name (create)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "trigger",
					Description: "Trigger type (create)",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "member_join", Value: "member_join"},
						{Name: "reaction_added", Value: "reaction_added"},
						{Name: "message_contains", Value: "message_contains"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "trigger_value",
					Description: "Emoji or keyword the trigger matches (create)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "rule_action",
					Description: "Action type (create)",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "send_message", Value: "send_message"},
						{Name: "assign_role", Value: "assign_role"},
						{Name: "log", Value: "log"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "payload",
					Description: "Action payload as JSON (create)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "rule_id",
					Description: "Rule id (delete/enable/disable)",
				},
			},
		},
		{
			Name:        "schedule-task",
			Description: "Manage deferred tasks",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "What to do",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "submit", Value: "submit"},
						{Name: "status", Value: "status"},
						{Name: "list", Value: "list"},
						{Name: "history", Value: "history"},
						{Name: "cancel", Value: "cancel"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "task_type",
					Description: "send_message, bulk_add_roles or bulk_modify_members (submit)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "payload",
					Description: "Task payload as JSON (submit)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "run_at",
					Description: "Unix seconds or RFC 3339 timestamp (submit)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "delay",
					Description: "Delay like 30s, 5m, 2h, 1d instead of run_at (submit)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "task_id",
					Description: "Task id (status/cancel)",
				},
			},
		},
		{
			Name:        "scan-patterns",
			Description: "Scan a channel for spam patterns",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Channel to scan",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "pattern",
					Description: "Pattern type",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "repeated_message", Value: "repeated_message"},
						{Name: "link_spam", Value: "link_spam"},
						{Name: "mention_spam", Value: "mention_spam"},
						{Name: "caps_spam", Value: "caps_spam"},
						{Name: "analyze", Value: "analyze"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "mod_action",
					Description: "delete, timeout or report (default report)",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "delete", Value: "delete"},
						{Name: "timeout", Value: "timeout"},
						{Name: "report", Value: "report"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "dry_run",
					Description: "Classify without side effects (default true)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "Messages to scan",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "threshold",
					Description: "Detector threshold override",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "timeout_minutes",
					Description: "Timeout length for the timeout action",
				},
			},
		},
		{
			Name:        "system-info",
			Description: "Show host and engine status",
		},
	}
}
