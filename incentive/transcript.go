package incentive

import (
	"context"
	"strings"
)

// TranscriptLimit is how many recent messages are inspected per transcript channel.
const TranscriptLimit = 100

// TranscriptMessage is a message in a transcript channel, reduced to its embed text.
type TranscriptMessage struct {
	ID                string
	EmbedDescriptions []string
}

// TranscriptMember is a member who can see a transcript channel.
type TranscriptMember struct {
	UserID  string
	RoleIDs []string
}

// HasRole reports whether the member holds roleID.
func (m TranscriptMember) HasRole(roleID string) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Transcript is what a fetcher returns for one channel.
type Transcript struct {
	ChannelID string
	Messages  []TranscriptMessage
	Members   []TranscriptMember
}

// TranscriptFetcher loads the recent messages and members of a channel.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, channelID string, limit int) (*Transcript, error)
}

// roleMention is the raw mention syntax for a role.
func roleMention(roleID string) string {
	return "<@&" + roleID + ">"
}

// mentionsRole reports whether any embed description of msg mentions roleID.
func (msg TranscriptMessage) mentionsRole(roleID string) bool {
	mention := roleMention(roleID)
	for _, desc := range msg.EmbedDescriptions {
		if strings.Contains(desc, mention) {
			return true
		}
	}
	return false
}
