package platform

import (
	"fmt"
	"log"
	"strings"
	"time"

	"automod-bot/model"

	"github.com/bwmarrin/discordgo"
)

// Adapter exposes the Discord session to the automation core through the
// narrow Invoke / FetchRecent / HasRole surface. Everything platform-specific
// stays behind it so the matcher, dispatcher, scheduler and detectors never
// see discordgo types.
type Adapter struct {
	session *discordgo.Session
}

// NewAdapter wraps an open session.
func NewAdapter(session *discordgo.Session) *Adapter {
	return &Adapter{session: session}
}

type invokeFunc func(a *Adapter, payload map[string]any) (string, error)

var invokeHandlers = map[string]invokeFunc{
	"send_message":        (*Adapter).sendMessage,
	"assign_role":         (*Adapter).assignRole,
	"remove_role":         (*Adapter).removeRole,
	"delete_message":      (*Adapter).deleteMessage,
	"timeout_member":      (*Adapter).timeoutMember,
	"bulk_add_roles":      (*Adapter).bulkAddRoles,
	"bulk_modify_members": (*Adapter).bulkModifyMembers,
	"log":                 (*Adapter).logAction,
}

// Invoke executes a named action against Discord.
func (a *Adapter) Invoke(actionType string, payload map[string]any) (string, error) {
	handler, ok := invokeHandlers[actionType]
	if !ok {
		return "", fmt.Errorf("unknown action type %q", actionType)
	}
	return handler(a, payload)
}

// HasRole reports whether the member currently holds the role.
func (a *Adapter) HasRole(guildID, userID, roleID string) (bool, error) {
	member, err := a.session.GuildMember(guildID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch member %s: %w", userID, err)
	}
	for _, r := range member.Roles {
		if r == roleID {
			return true, nil
		}
	}
	return false, nil
}

// FetchRecent pages through channel history, newest first, up to limit
// messages, optionally bounded by created-at timestamps.
func (a *Adapter) FetchRecent(channelID string, limit int, after, before *time.Time) ([]model.Message, error) {
	var out []model.Message
	beforeID := ""
	for len(out) < limit {
		batch := limit - len(out)
		if batch > 100 {
			batch = 100
		}
		msgs, err := a.session.ChannelMessages(channelID, batch, beforeID, "", "")
		if err != nil {
			return nil, fmt.Errorf("failed to fetch messages from channel %s: %w", channelID, err)
		}
		if len(msgs) == 0 {
			break
		}
		for _, msg := range msgs {
			beforeID = msg.ID
			created := msg.Timestamp
			if before != nil && !created.Before(*before) {
				continue
			}
			if after != nil && !created.After(*after) {
				// History is newest-first; once past the lower bound no older
				// message can qualify.
				return out, nil
			}
			out = append(out, convertMessage(msg))
		}
		if len(msgs) < batch {
			break
		}
	}
	return out, nil
}

func convertMessage(msg *discordgo.Message) model.Message {
	return model.Message{
		ID:           msg.ID,
		GuildID:      msg.GuildID,
		ChannelID:    msg.ChannelID,
		AuthorID:     msg.Author.ID,
		Content:      msg.Content,
		CreatedAt:    msg.Timestamp,
		Mentions:     len(msg.Mentions),
		RoleMentions: len(msg.MentionRoles),
		Reactions:    len(msg.Reactions),
	}
}

func (a *Adapter) sendMessage(payload map[string]any) (string, error) {
	channelID := payloadString(payload, "channel_id")
	content := payloadString(payload, "content")
	if channelID == "" || content == "" {
		return "", fmt.Errorf("send_message requires channel_id and content")
	}
	msg, err := a.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", fmt.Errorf("failed to send message to channel %s: %w", channelID, err)
	}
	return fmt.Sprintf("sent message %s to channel %s", msg.ID, channelID), nil
}

func (a *Adapter) assignRole(payload map[string]any) (string, error) {
	guildID := payloadString(payload, "guild_id")
	userID := payloadString(payload, "user_id")
	roleID := payloadString(payload, "role_id")
	if guildID == "" || userID == "" || roleID == "" {
		return "", fmt.Errorf("assign_role requires guild_id, user_id and role_id")
	}
	if err := a.session.GuildMemberRoleAdd(guildID, userID, roleID); err != nil {
		return "", fmt.Errorf("failed to add role %s to user %s: %w", roleID, userID, err)
	}
	return fmt.Sprintf("assigned role %s to user %s", roleID, userID), nil
}

func (a *Adapter) removeRole(payload map[string]any) (string, error) {
	guildID := payloadString(payload, "guild_id")
	userID := payloadString(payload, "user_id")
	roleID := payloadString(payload, "role_id")
	if guildID == "" || userID == "" || roleID == "" {
		return "", fmt.Errorf("remove_role requires guild_id, user_id and role_id")
	}
	if err := a.session.GuildMemberRoleRemove(guildID, userID, roleID); err != nil {
		return "", fmt.Errorf("failed to remove role %s from user %s: %w", roleID, userID, err)
	}
	return fmt.Sprintf("removed role %s from user %s", roleID, userID), nil
}

func (a *Adapter) deleteMessage(payload map[string]any) (string, error) {
	channelID := payloadString(payload, "channel_id")
	messageID := payloadString(payload, "message_id")
	if channelID == "" || messageID == "" {
		return "", fmt.Errorf("delete_message requires channel_id and message_id")
	}
	if err := a.session.ChannelMessageDelete(channelID, messageID); err != nil {
		return "", fmt.Errorf("failed to delete message %s: %w", messageID, err)
	}
	return fmt.Sprintf("deleted message %s", messageID), nil
}

func (a *Adapter) timeoutMember(payload map[string]any) (string, error) {
	guildID := payloadString(payload, "guild_id")
	userID := payloadString(payload, "user_id")
	minutes := payloadInt(payload, "timeout_minutes")
	if guildID == "" || userID == "" || minutes <= 0 {
		return "", fmt.Errorf("timeout_member requires guild_id, user_id and timeout_minutes")
	}
	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	if err := a.session.GuildMemberTimeout(guildID, userID, &until); err != nil {
		return "", fmt.Errorf("failed to time out user %s: %w", userID, err)
	}
	return fmt.Sprintf("timed out user %s for %d minutes", userID, minutes), nil
}

func (a *Adapter) bulkAddRoles(payload map[string]any) (string, error) {
	guildID := payloadString(payload, "guild_id")
	roleID := payloadString(payload, "role_id")
	userIDs := payloadStringSlice(payload, "user_ids")
	if guildID == "" || roleID == "" || len(userIDs) == 0 {
		return "", fmt.Errorf("bulk_add_roles requires guild_id, role_id and user_ids")
	}

	success := 0
	var failed []string
	for _, userID := range userIDs {
		if err := a.session.GuildMemberRoleAdd(guildID, userID, roleID); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", userID, err))
			continue
		}
		success++
	}

	summary := fmt.Sprintf("Bulk add roles complete. Success: %d, Failed: %d", success, len(failed))
	if len(failed) > 0 {
		summary += "\nFailed:\n" + strings.Join(failed, "\n")
	}
	return summary, nil
}

func (a *Adapter) bulkModifyMembers(payload map[string]any) (string, error) {
	guildID := payloadString(payload, "guild_id")
	updates, _ := payload["updates"].([]any)
	if guildID == "" || len(updates) == 0 {
		return "", fmt.Errorf("bulk_modify_members requires guild_id and updates")
	}

	success := 0
	var failed []string
	for _, raw := range updates {
		update, ok := raw.(map[string]any)
		if !ok {
			failed = append(failed, "malformed update entry")
			continue
		}
		userID := payloadString(update, "user_id")
		if userID == "" {
			failed = append(failed, "update missing user_id")
			continue
		}

		changed := false
		if nick, ok := update["nickname"].(string); ok {
			if err := a.session.GuildMemberNickname(guildID, userID, nick); err != nil {
				failed = append(failed, fmt.Sprintf("%s: %v", userID, err))
				continue
			}
			changed = true
		}
		if minutes := payloadInt(update, "timeout_minutes"); minutes != 0 || hasKey(update, "timeout_minutes") {
			var until *time.Time
			if minutes > 0 {
				t := time.Now().Add(time.Duration(minutes) * time.Minute)
				until = &t
			}
			if err := a.session.GuildMemberTimeout(guildID, userID, until); err != nil {
				failed = append(failed, fmt.Sprintf("%s: %v", userID, err))
				continue
			}
			changed = true
		}

		if !changed {
			failed = append(failed, fmt.Sprintf("%s: no changes provided", userID))
			continue
		}
		success++
	}

	summary := fmt.Sprintf("Bulk modify members complete. Success: %d, Failed: %d", success, len(failed))
	if len(failed) > 0 {
		summary += "\nFailed:\n" + strings.Join(failed, "\n")
	}
	return summary, nil
}

func (a *Adapter) logAction(payload map[string]any) (string, error) {
	detail := payloadString(payload, "detail")
	log.Printf("Action log: %s", detail)
	return detail, nil
}

func payloadString(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

func payloadInt(payload map[string]any, key string) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func payloadStringSlice(payload map[string]any, key string) []string {
	switch v := payload[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}
