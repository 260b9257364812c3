package model

// ChatMessage is the part of an inbound guild message the engines care about.
type ChatMessage struct {
	ID            string
	GuildID       string
	ChannelID     string
	AuthorID      string
	AuthorIsBot   bool
	AuthorRoleIDs []string
}

// Qualifies reports whether the message earns experience and statistics under settings.
func (m ChatMessage) Qualifies(settings *Settings) bool {
	if m.AuthorIsBot || m.GuildID == "" || m.AuthorID == "" {
		return false
	}
	return settings.CountsChannel(m.ChannelID)
}
