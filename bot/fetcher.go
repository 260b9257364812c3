package bot

import (
	"context"
	"fmt"

	"community-bot/incentive"

	"github.com/bwmarrin/discordgo"
)

const (
	memberPageSize = 1000
	maxMemberPages = 20
)

// TranscriptFetcher loads transcript channels over the REST API.
type TranscriptFetcher struct {
	s *discordgo.Session
}

func NewTranscriptFetcher(s *discordgo.Session) *TranscriptFetcher {
	return &TranscriptFetcher{s: s}
}

// FetchTranscript returns the latest messages of channelID together with the guild
// members that can view the channel.
func (f *TranscriptFetcher) FetchTranscript(ctx context.Context, channelID string, limit int) (*incentive.Transcript, error) {
	channel, err := f.s.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, err)
	}
	msgs, err := f.s.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch messages of %s: %w", channelID, err)
	}
	roles, err := f.s.GuildRoles(channel.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch roles of %s: %w", channel.GuildID, err)
	}
	guild, err := f.s.Guild(channel.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch guild %s: %w", channel.GuildID, err)
	}
	members, err := f.guildMembers(ctx, channel.GuildID)
	if err != nil {
		return nil, err
	}

	transcript := &incentive.Transcript{ChannelID: channelID}
	for _, m := range msgs {
		tm := incentive.TranscriptMessage{ID: m.ID}
		for _, embed := range m.Embeds {
			if embed != nil && embed.Description != "" {
				tm.EmbedDescriptions = append(tm.EmbedDescriptions, embed.Description)
			}
		}
		transcript.Messages = append(transcript.Messages, tm)
	}
	for _, member := range members {
		if member.User == nil || member.User.Bot {
			continue
		}
		if !CanViewChannel(guild.OwnerID, channel, roles, member) {
			continue
		}
		transcript.Members = append(transcript.Members, incentive.TranscriptMember{
			UserID:  member.User.ID,
			RoleIDs: member.Roles,
		})
	}
	return transcript, nil
}

func (f *TranscriptFetcher) guildMembers(ctx context.Context, guildID string) ([]*discordgo.Member, error) {
	var (
		all   []*discordgo.Member
		after string
	)
	for page := 0; page < maxMemberPages; page++ {
		batch, err := f.s.GuildMembers(guildID, after, memberPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("fetch members of %s: %w", guildID, err)
		}
		all = append(all, batch...)
		if len(batch) < memberPageSize {
			break
		}
		after = batch[len(batch)-1].User.ID
	}
	return all, nil
}

// CanViewChannel applies the guild role permissions and the channel overwrites of
// channel to member and reports whether the member can see it.
func CanViewChannel(ownerID string, channel *discordgo.Channel, roles []*discordgo.Role, member *discordgo.Member) bool {
	if member == nil || member.User == nil {
		return false
	}
	if member.User.ID == ownerID {
		return true
	}

	rolePerms := make(map[string]int64, len(roles))
	for _, r := range roles {
		rolePerms[r.ID] = r.Permissions
	}

	// @everyone 的身份组 ID 与服务器 ID 相同
	perms := rolePerms[channel.GuildID]
	for _, id := range member.Roles {
		perms |= rolePerms[id]
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}

	var roleAllow, roleDeny int64
	var memberOverwrite *discordgo.PermissionOverwrite
	memberRoles := make(map[string]struct{}, len(member.Roles))
	for _, id := range member.Roles {
		memberRoles[id] = struct{}{}
	}
	for _, ow := range channel.PermissionOverwrites {
		switch {
		case ow.Type == discordgo.PermissionOverwriteTypeRole && ow.ID == channel.GuildID:
			perms &^= ow.Deny
			perms |= ow.Allow
		case ow.Type == discordgo.PermissionOverwriteTypeRole:
			if _, ok := memberRoles[ow.ID]; ok {
				roleAllow |= ow.Allow
				roleDeny |= ow.Deny
			}
		case ow.Type == discordgo.PermissionOverwriteTypeMember && ow.ID == member.User.ID:
			memberOverwrite = ow
		}
	}
	perms &^= roleDeny
	perms |= roleAllow
	if memberOverwrite != nil {
		perms &^= memberOverwrite.Deny
		perms |= memberOverwrite.Allow
	}
	return perms&discordgo.PermissionViewChannel != 0
}
