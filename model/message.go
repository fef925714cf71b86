package model

import "time"

// Message is the minimal message shape the pattern detectors operate on.
type Message struct {
	ID           string
	GuildID      string
	ChannelID    string
	AuthorID     string
	Content      string
	CreatedAt    time.Time
	Mentions     int // direct user mentions
	RoleMentions int
	Reactions    int
}
