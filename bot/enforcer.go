package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

// bulkDeleteMaxAge is the oldest message age Discord accepts in a bulk delete.
const bulkDeleteMaxAge = 14 * 24 * time.Hour

// Enforcer applies moderation actions through the Discord REST API.
type Enforcer struct {
	s *discordgo.Session
}

func NewEnforcer(s *discordgo.Session) *Enforcer {
	return &Enforcer{s: s}
}

func (e *Enforcer) Kick(ctx context.Context, guildID, userID, reason string) error {
	return e.s.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
}

func (e *Enforcer) Ban(ctx context.Context, guildID, userID, reason string, deleteDays int) error {
	return e.s.GuildBanCreateWithReason(guildID, userID, reason, deleteDays, discordgo.WithContext(ctx))
}

func (e *Enforcer) Timeout(ctx context.Context, guildID, userID string, until time.Time) error {
	return e.s.GuildMemberTimeout(guildID, userID, &until, discordgo.WithContext(ctx))
}

func (e *Enforcer) RemoveTimeout(ctx context.Context, guildID, userID string) error {
	return e.s.GuildMemberTimeout(guildID, userID, nil, discordgo.WithContext(ctx))
}

// PurgeMessages deletes up to amount recent messages. Messages older than two weeks
// cannot be bulk deleted and are skipped.
func (e *Enforcer) PurgeMessages(ctx context.Context, channelID string, amount int) (int, error) {
	msgs, err := e.s.ChannelMessages(channelID, amount, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return 0, err
	}
	ids := deletableMessageIDs(msgs, time.Now())
	switch len(ids) {
	case 0:
		return 0, nil
	case 1:
		return 1, e.s.ChannelMessageDelete(channelID, ids[0], discordgo.WithContext(ctx))
	default:
		return len(ids), e.s.ChannelMessagesBulkDelete(channelID, ids, discordgo.WithContext(ctx))
	}
}

func deletableMessageIDs(msgs []*discordgo.Message, now time.Time) []string {
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m == nil || now.Sub(m.Timestamp) >= bulkDeleteMaxAge {
			continue
		}
		ids = append(ids, m.ID)
	}
	return ids
}
