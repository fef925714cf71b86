package model

// Event is a discrete platform occurrence presented to the rule matcher.
// Trigger returns the canonical trigger tag an event is matched under;
// reaction removals report TriggerReactionAdded, mirroring the shared
// trigger type for add/remove pairs.
type Event interface {
	Trigger() TriggerType
	ServerID() string
}

// MemberJoinEvent fires when a member joins a guild.
type MemberJoinEvent struct {
	GuildID   string
	GuildName string
	UserID    string
	Username  string
	Mention   string
}

func (e MemberJoinEvent) Trigger() TriggerType { return TriggerMemberJoin }
func (e MemberJoinEvent) ServerID() string     { return e.GuildID }

// ReactionEvent fires when a reaction is added to or removed from a message.
// Added distinguishes the two; both are matched under TriggerReactionAdded.
type ReactionEvent struct {
	GuildID   string
	GuildName string
	ChannelID string
	MessageID string
	UserID    string
	Username  string
	Mention   string
	Emoji     string // normalized: Unicode as-is, custom as <:name:id>
	Added     bool
}

func (e ReactionEvent) Trigger() TriggerType { return TriggerReactionAdded }
func (e ReactionEvent) ServerID() string     { return e.GuildID }

// MessageEvent fires for a newly created message, matched under
// TriggerMessageContains.
type MessageEvent struct {
	GuildID    string
	GuildName  string
	ChannelID  string
	MessageID  string
	AuthorID   string
	AuthorName string
	Mention    string
	Content    string
}

func (e MessageEvent) Trigger() TriggerType { return TriggerMessageContains }
func (e MessageEvent) ServerID() string     { return e.GuildID }

// MessageDeleteEvent fires when a message is deleted. No rule trigger type
// covers deletions; the event exists for the staff-log side channel.
type MessageDeleteEvent struct {
	GuildID    string
	ChannelID  string
	MessageID  string
	AuthorID   string
	AuthorName string
	Content    string
}

func (e MessageDeleteEvent) Trigger() TriggerType { return "" }
func (e MessageDeleteEvent) ServerID() string     { return e.GuildID }
