package handlers

import (
	"log"

	"automod-bot/bot"
	"automod-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// Register wires the slash-command handlers and the gateway event handlers
// onto the bot session.
func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"automation-rule": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleAutomationRuleCommand(s, i, b)
		},
		"schedule-task": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleScheduleTaskCommand(s, i, b)
		},
		"scan-patterns": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleScanPatternsCommand(s, i, b)
		},
		"system-info": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleSystemInfoCommand(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		HandleMemberJoin(s, m, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		HandleReaction(s, r.MessageReaction, true, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
		HandleReaction(s, r.MessageReaction, false, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		HandleMessageCreate(s, m, b)
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageDelete) {
		HandleMessageDelete(s, m, b)
	})
}

// optionMap indexes interaction options by name.
func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func optionString(m map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := m[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	utils.SendEphemeralResponse(s, i, "❌ "+msg)
}
