package handlers

import (
	"fmt"
	"log"
	"strings"

	"automod-bot/bot"
	"automod-bot/model"

	"github.com/bwmarrin/discordgo"
)

// HandleMemberJoin feeds a member_join event to the automation engine.
func HandleMemberJoin(s *discordgo.Session, m *discordgo.GuildMemberAdd, b *bot.Bot) {
	if m.User == nil || m.User.Bot {
		return
	}
	event := model.MemberJoinEvent{
		GuildID:   m.GuildID,
		GuildName: guildName(s, m.GuildID),
		UserID:    m.User.ID,
		Username:  m.User.Username,
		Mention:   m.User.Mention(),
	}
	b.Engine.OnEvent(event)
}

// HandleReaction feeds a reaction add or remove to the automation engine.
// Bot reactions are ignored.
func HandleReaction(s *discordgo.Session, r *discordgo.MessageReaction, added bool, b *bot.Bot) {
	if r.GuildID == "" {
		return
	}
	member, err := s.GuildMember(r.GuildID, r.UserID)
	if err != nil {
		log.Printf("Could not fetch member %s for reaction event: %v", r.UserID, err)
		return
	}
	if member.User == nil || member.User.Bot {
		return
	}

	event := model.ReactionEvent{
		GuildID:   r.GuildID,
		GuildName: guildName(s, r.GuildID),
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Username:  member.User.Username,
		Mention:   member.User.Mention(),
		Emoji:     r.Emoji.MessageFormat(),
		Added:     added,
	}
	b.Engine.OnEvent(event)
}

// HandleMessageCreate feeds a message_contains event to the automation engine.
func HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate, b *bot.Bot) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" || m.Content == "" {
		return
	}
	event := model.MessageEvent{
		GuildID:    m.GuildID,
		GuildName:  guildName(s, m.GuildID),
		ChannelID:  m.ChannelID,
		MessageID:  m.ID,
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Username,
		Mention:    m.Author.Mention(),
		Content:    m.Content,
	}
	b.Engine.OnEvent(event)
}

// HandleMessageDelete mirrors deleted messages to the guild's staff log
// channel, when one exists.
func HandleMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete, b *bot.Bot) {
	if m.GuildID == "" {
		return
	}

	event := model.MessageDeleteEvent{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
	}
	if m.BeforeDelete != nil {
		event.Content = m.BeforeDelete.Content
		if m.BeforeDelete.Author != nil {
			event.AuthorID = m.BeforeDelete.Author.ID
			event.AuthorName = m.BeforeDelete.Author.Username
		}
	}

	logChannel := findStaffLogChannel(s, m.GuildID)
	if logChannel == "" {
		return
	}

	content := event.Content
	if content == "" {
		content = "(No content/embed only)"
	} else if len(content) > 500 {
		content = content[:500]
	}
	author := event.AuthorName
	if author == "" {
		author = "Unknown"
	}

	embed := &discordgo.MessageEmbed{
		Title: "Message Deleted",
		Color: 0xe74c3c,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Channel", Value: fmt.Sprintf("<#%s>", event.ChannelID), Inline: true},
			{Name: "Author", Value: author, Inline: true},
			{Name: "Message ID", Value: fmt.Sprintf("`%s`", event.MessageID), Inline: true},
			{Name: "Content", Value: content, Inline: false},
		},
	}
	if _, err := s.ChannelMessageSendEmbed(logChannel, embed); err != nil {
		log.Printf("Failed to log message deletion to staff logs: %v", err)
	}
}

// findStaffLogChannel looks for a text channel whose name contains both
// "staff" and "log".
func findStaffLogChannel(s *discordgo.Session, guildID string) string {
	channels, err := s.GuildChannels(guildID)
	if err != nil {
		return ""
	}
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		name := strings.ToLower(ch.Name)
		if strings.Contains(name, "staff") && strings.Contains(name, "log") {
			return ch.ID
		}
	}
	return ""
}

func guildName(s *discordgo.Session, guildID string) string {
	guild, err := s.Guild(guildID)
	if err != nil {
		return ""
	}
	return guild.Name
}
