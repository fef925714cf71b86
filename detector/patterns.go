package detector

import (
	"regexp"
	"strings"
	"unicode"

	"automod-bot/model"
)

// The detectors are pure filters over a caller-supplied message window: the
// same window always yields the same flagged set, which makes auto-moderation
// dry runs exactly reproducible.

var linkPattern = regexp.MustCompile(`https?://`)

// RepeatedMessage flags every message whose (author, normalized content) group
// reaches the threshold. Content is lowercased and trimmed before grouping;
// empty messages are exempt.
func RepeatedMessage(messages []model.Message, threshold int) []model.Message {
	counts := make(map[string]int)
	for _, msg := range messages {
		content := strings.ToLower(strings.TrimSpace(msg.Content))
		if content == "" {
			continue
		}
		counts[msg.AuthorID+"\x00"+content]++
	}

	var flagged []model.Message
	for _, msg := range messages {
		content := strings.ToLower(strings.TrimSpace(msg.Content))
		if content == "" {
			continue
		}
		if counts[msg.AuthorID+"\x00"+content] >= threshold {
			flagged = append(flagged, msg)
		}
	}
	return flagged
}

// LinkSpam flags messages containing at least threshold http(s) links.
func LinkSpam(messages []model.Message, threshold int) []model.Message {
	var flagged []model.Message
	for _, msg := range messages {
		if len(linkPattern.FindAllStringIndex(msg.Content, -1)) >= threshold {
			flagged = append(flagged, msg)
		}
	}
	return flagged
}

// MentionSpam flags messages whose direct plus role mentions reach the
// threshold.
func MentionSpam(messages []model.Message, threshold int) []model.Message {
	var flagged []model.Message
	for _, msg := range messages {
		if msg.Mentions+msg.RoleMentions >= threshold {
			flagged = append(flagged, msg)
		}
	}
	return flagged
}

// CapsSpam flags messages whose uppercase ratio over alphabetic characters
// meets ratio and whose total length meets minLength. Messages with no
// letters are exempt, never flagged.
func CapsSpam(messages []model.Message, ratio float64, minLength int) []model.Message {
	var flagged []model.Message
	for _, msg := range messages {
		letters, upper := 0, 0
		for _, r := range msg.Content {
			if unicode.IsLetter(r) {
				letters++
				if unicode.IsUpper(r) {
					upper++
				}
			}
		}
		if letters == 0 {
			continue
		}
		if float64(upper)/float64(letters) >= ratio && len([]rune(msg.Content)) >= minLength {
			flagged = append(flagged, msg)
		}
	}
	return flagged
}

// Analysis is an aggregate spam-signal report over a message window.
type Analysis struct {
	MessagesScanned     int
	UniqueAuthors       int
	TotalLinks          int
	TotalMentions       int
	CapsSpamSignals     int
	TopRepeatedMessages []RepeatedContent
}

// RepeatedContent is a content string seen more than once, with its count.
type RepeatedContent struct {
	Content string
	Count   int
}

// Analyze summarizes spam indicators across the window without flagging
// individual messages.
func Analyze(messages []model.Message) Analysis {
	a := Analysis{MessagesScanned: len(messages)}

	authors := make(map[string]bool)
	contentCounts := make(map[string]int)
	for _, msg := range messages {
		authors[msg.AuthorID] = true
		content := strings.ToLower(strings.TrimSpace(msg.Content))
		if content != "" {
			contentCounts[content]++
		}
		a.TotalLinks += len(linkPattern.FindAllStringIndex(msg.Content, -1))
		a.TotalMentions += msg.Mentions + msg.RoleMentions
	}
	a.UniqueAuthors = len(authors)
	a.CapsSpamSignals = len(CapsSpam(messages, 0.7, 15))

	for content, count := range contentCounts {
		if count > 1 {
			display := content
			if len([]rune(display)) > 80 {
				display = string([]rune(display)[:80])
			}
			a.TopRepeatedMessages = append(a.TopRepeatedMessages, RepeatedContent{Content: display, Count: count})
		}
	}
	return a
}
