package handlers

import (
	"fmt"
	"strings"

	"automod-bot/bot"
	"automod-bot/detector"
	"automod-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandleScanPatternsCommand fetches recent channel history and runs the
// selected pattern detector over it, optionally applying a moderation action.
func HandleScanPatternsCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)

	channelOpt, ok := opts["channel"]
	if !ok {
		respondError(s, i, "channel is required.")
		return
	}
	channel := channelOpt.ChannelValue(s)
	if channel == nil {
		respondError(s, i, "channel is required.")
		return
	}
	pattern := optionString(opts, "pattern")

	limit := b.GetConfig().Automod.ScanLimit
	if opt, ok := opts["limit"]; ok {
		limit = int(opt.IntValue())
	}
	if limit > 1000 {
		limit = 1000
	}

	// History fetch can take a while for large windows.
	if err := utils.DeferResponse(s, i, true); err != nil {
		return
	}

	messages, err := b.Adapter.FetchRecent(channel.ID, limit, nil, nil)
	if err != nil {
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("❌ Could not fetch messages: %v", err))
		return
	}

	if pattern == "analyze" {
		analysis := detector.Analyze(messages)
		utils.SendFollowUp(s, i.Interaction, formatAnalysis(analysis))
		return
	}

	params := detector.Params{}
	if opt, ok := opts["threshold"]; ok {
		threshold := int(opt.IntValue())
		params.RepeatThreshold = threshold
		params.LinkThreshold = threshold
		params.MentionThreshold = threshold
	}
	if opt, ok := opts["timeout_minutes"]; ok {
		params.TimeoutMinutes = int(opt.IntValue())
	}

	action := detector.ModerationAction(optionString(opts, "mod_action"))
	if action == "" {
		action = detector.ActionReport
	}
	dryRun := true
	if opt, ok := opts["dry_run"]; ok {
		dryRun = opt.BoolValue()
	}

	result, err := b.AutoMod.Moderate(messages, detector.PatternType(pattern), params, action, dryRun)
	if err != nil {
		utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("❌ Scan failed: %v", err))
		return
	}

	msg := fmt.Sprintf("Scanned %d messages for `%s`: %d matched.", len(messages), pattern, len(result.MatchedIDs))
	if len(result.MatchedIDs) > 0 {
		sample := result.MatchedIDs
		if len(sample) > 10 {
			sample = sample[:10]
		}
		msg += "\nSample ids: " + strings.Join(sample, ", ")
	}
	if result.DryRun {
		msg += "\nDry run: no action taken."
	} else {
		msg += fmt.Sprintf("\nApplied `%s` to %d targets.", action, result.Applied)
		if len(result.Errors) > 0 {
			msg += fmt.Sprintf(" %d failures.", len(result.Errors))
		}
	}
	utils.SendFollowUp(s, i.Interaction, msg)
}

func formatAnalysis(a detector.Analysis) string {
	var sb strings.Builder
	sb.WriteString("Message pattern analysis:\n")
	fmt.Fprintf(&sb, "messages_scanned: %d\n", a.MessagesScanned)
	fmt.Fprintf(&sb, "unique_authors: %d\n", a.UniqueAuthors)
	fmt.Fprintf(&sb, "total_links: %d\n", a.TotalLinks)
	fmt.Fprintf(&sb, "total_mentions: %d\n", a.TotalMentions)
	fmt.Fprintf(&sb, "caps_spam_signals: %d\n", a.CapsSpamSignals)
	for _, rc := range a.TopRepeatedMessages {
		fmt.Fprintf(&sb, "repeated: %s (%d)\n", rc.Content, rc.Count)
	}
	return sb.String()
}
