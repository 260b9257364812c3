package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"community-bot/customcmd"
	"community-bot/leveling"
	"community-bot/model"
	"community-bot/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type access int

const (
	accessEveryone access = iota
	accessStaff
	accessOwner
)

type textHandler func(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cmd utils.TextCommand) error

type textCommand struct {
	access  access
	handler textHandler
}

// builtinTextCommands lists the words custom commands may not shadow.
func builtinTextCommands() []string {
	return []string{
		"level", "rank", "leaderboard", "lb", "messagestats", "msgstats",
		"setcountingchannel", "countinginfo", "setxp", "xpinfo",
		"addcommand", "removecommand", "delcommand", "listcommands",
		"warn", "kick", "ban", "ping", "serverinfo", "userinfo",
	}
}

func (h *Handler) textCommands() map[string]textCommand {
	return map[string]textCommand{
		"level":              {accessEveryone, h.textLevel},
		"rank":               {accessEveryone, h.textLevel},
		"leaderboard":        {accessEveryone, h.textLeaderboard},
		"lb":                 {accessEveryone, h.textLeaderboard},
		"messagestats":       {accessEveryone, h.textMessageStats},
		"msgstats":           {accessEveryone, h.textMessageStats},
		"setcountingchannel": {accessOwner, h.textSetCountingChannel},
		"countinginfo":       {accessEveryone, h.textCountingInfo},
		"setxp":              {accessOwner, h.textSetXP},
		"xpinfo":             {accessEveryone, h.textXPInfo},
		"addcommand":         {accessOwner, h.textAddCommand},
		"removecommand":      {accessOwner, h.textRemoveCommand},
		"delcommand":         {accessOwner, h.textRemoveCommand},
		"listcommands":       {accessOwner, h.textListCommands},
		"warn":               {accessStaff, h.textWarn},
		"kick":               {accessStaff, h.textKick},
		"ban":                {accessStaff, h.textBan},
		"ping":               {accessEveryone, h.textPing},
		"serverinfo":         {accessEveryone, h.textServerInfo},
		"userinfo":           {accessEveryone, h.textUserInfo},
	}
}

func chatMessage(m *discordgo.MessageCreate) model.ChatMessage {
	msg := model.ChatMessage{
		ID:          m.ID,
		GuildID:     m.GuildID,
		ChannelID:   m.ChannelID,
		AuthorID:    m.Author.ID,
		AuthorIsBot: m.Author.Bot,
	}
	if m.Member != nil {
		msg.AuthorRoleIDs = m.Member.Roles
	}
	return msg
}

// onMessage runs experience, statistics and staff message credit for every guild
// message, then routes text commands.
func (h *Handler) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	h.trackActivity(ctx, chatMessage(m))

	cmd, ok := utils.ParseTextCommand(m.Content)
	if !ok {
		return
	}
	if err := h.routeText(ctx, s, m, cmd); err != nil {
		h.logger.Error("Text command failed",
			zap.String("command", cmd.Name),
			zap.String("guild_id", m.GuildID),
			zap.String("user_id", m.Author.ID),
			zap.Error(err))
	}
}

func (h *Handler) trackActivity(ctx context.Context, msg model.ChatMessage) {
	result, err := h.bot.Leveling.Award(msg)
	if err != nil {
		h.logger.Error("Failed to award experience", zap.String("user_id", msg.AuthorID), zap.Error(err))
	}
	if result.LevelUp != nil {
		if err := deliverLevelUp(ctx, h.notifier, result.LevelUp); err != nil {
			h.logger.Warn("Failed to announce level up", zap.String("user_id", msg.AuthorID), zap.Error(err))
		}
	}

	if _, err := h.bot.Stats.Record(msg); err != nil {
		h.logger.Error("Failed to record message statistics", zap.String("user_id", msg.AuthorID), zap.Error(err))
	}
	if _, err := h.bot.Incentive.RecordStaffMessage(msg.ChannelID, msg.AuthorID, msg.AuthorRoleIDs); err != nil {
		h.logger.Error("Failed to credit staff message", zap.String("user_id", msg.AuthorID), zap.Error(err))
	}
}

func (h *Handler) routeText(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cmd utils.TextCommand) error {
	tc, ok := h.textCommands()[cmd.Name]
	if !ok {
		if response, found := h.custom.Lookup(m.GuildID, cmd.Name); found {
			return reply(ctx, s, m, response)
		}
		return nil
	}

	if tc.access != accessEveryone {
		caller, err := textCaller(ctx, s, m)
		if err != nil {
			return fmt.Errorf("resolve caller: %w", err)
		}
		level := utils.CheckPermission(caller, h.bot.GetConfig().BotOwnerID, h.settings().StaffRoleID)
		if !allowed(tc.access, level) {
			return nil
		}
	}
	return tc.handler(ctx, s, m, cmd)
}

func allowed(a access, level string) bool {
	switch a {
	case accessOwner:
		return level == utils.OwnerPermission
	case accessStaff:
		return utils.IsStaff(level)
	}
	return true
}

// textCaller fetches the guild to resolve its owner and the author's role permissions.
func textCaller(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) (utils.Caller, error) {
	caller := utils.Caller{UserID: m.Author.ID}
	if m.Member != nil {
		caller.RoleIDs = m.Member.Roles
	}
	guild, err := s.Guild(m.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		return caller, err
	}
	caller.GuildOwnerID = guild.OwnerID
	caller.Permissions = memberPermissions(guild, caller.RoleIDs)
	return caller, nil
}

// memberPermissions ORs the permissions of @everyone and the held roles.
func memberPermissions(guild *discordgo.Guild, roleIDs []string) int64 {
	held := make(map[string]struct{}, len(roleIDs)+1)
	held[guild.ID] = struct{}{}
	for _, id := range roleIDs {
		held[id] = struct{}{}
	}
	var perms int64
	for _, role := range guild.Roles {
		if _, ok := held[role.ID]; ok {
			perms |= role.Permissions
		}
	}
	return perms
}

func reply(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, content string) error {
	_, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference(), discordgo.WithContext(ctx))
	return err
}

func replyEmbed(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, embed *discordgo.MessageEmbed) error {
	_, err := s.ChannelMessageSendEmbedReply(m.ChannelID, embed, m.Reference(), discordgo.WithContext(ctx))
	return err
}

// targetUser picks the first mentioned user, then an id in the first argument.
func targetUser(m *discordgo.MessageCreate, cmd utils.TextCommand) (*discordgo.User, bool) {
	if len(m.Mentions) > 0 {
		return m.Mentions[0], true
	}
	if len(cmd.Args) > 0 {
		if id, ok := utils.ParseUserID(cmd.Args[0]); ok {
			return &discordgo.User{ID: id, Username: id}, true
		}
	}
	return nil, false
}

func targetOrAuthor(m *discordgo.MessageCreate, cmd utils.TextCommand) *discordgo.User {
	if u, ok := targetUser(m, cmd); ok {
		return u
	}
	return m.Author
}

func reasonFrom(cmd utils.TextCommand) string {
	if r := cmd.Rest(1); r != "" {
		return r
	}
	return "No reason provided"
}

// statsPeriod returns the period named by the last argument, or "" for all periods.
func statsPeriod(args []string) string {
	if len(args) == 0 {
		return ""
	}
	switch p := strings.ToLower(args[len(args)-1]); p {
	case "daily", "weekly", "monthly", "total":
		return p
	}
	return ""
}

func (h *Handler) textLevel(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cmd utils.TextCommand) error {
	user := targetOrAuthor(m, cmd)
	rec, ok := h.bot.Leveling.Lookup(m.GuildID, user.ID)
	if !ok {
		return reply(ctx, s, m, fmt.Sprintf("%s hasn't gained any XP yet!", user.Username))
	}
	return replyEmbed(ctx, s, m, levelEmbed(user.Username, rec))
}

func (h *Handler) textLeaderboard(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cmd utils.TextCommand) error {
	kind := "levels"
	if len(cmd.Args) > 0 {
		kind = strings.ToLower(cmd.Args[0])
	}
	switch kind {
	case "levels":
		standings := h.bot.Leveling.Leaderboard(m.GuildID, leaderboardSize)
		if len(standings) == 0 {
			return reply(ctx, s, m, "No level data available!")
		}
		return replyEmbed(ctx, s, m, levelLeaderboardEmbed(standings))
	case "messages":
		standings := h.bot.Stats.Leaderboard(m.GuildID, leaderboardSize)
		if len(standings) == 0 {
			return reply(ctx, s, m, "No message data available!")
		}
		return replyEmbed(ctx, s, m, messageLeaderboardEmbed(standings))
	}
	return reply(ctx, s, m, "Usage: `leaderboard [levels|messages]`")
}

func (h *Handler) textMessageStats(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cmd utils.TextCommand) error {
	user := targetOrAuthor(m, cmd)
	snap, ok := h.bot.Stats.Snapshot(m.GuildID, user.ID)
	if !ok {
		return reply(ctx, s, m, fmt.Sprintf("%s has no message statistics!", user.Username))
	}
	return replyEmbed(ctx, s, m, statsEmbed(user.Username, snap, statsPeriod(cmd.Args)))
}

func (h *Handler) textSetCountingChannel(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cmd utils.TextCommand) error {
	channelID := ""
	if len(cmd.Args) > 0 {
		id, ok := utils.ParseChannelID(cmd.Args[0])
		if !ok {
			return reply(ctx, s, m, "Usage: `setcountingchannel #channel` or `setcountingchannel` to remove the restriction")
		}
		channelID = id
	}
	if _, err := h.applySetup(model.SetupUpdate{CountingChannelID: &channelID}); err != nil {
		return err
	}
	if channelID == "" {
		return reply(ctx, s, m, "✅ Removed counting channel restriction. Messages/XP will be counted in all channels.")
	}
	return reply(ctx, s, m, fmt.Sprintf("✅ Set counting channel to <#%s>. Only messages in this channel will count for XP and stats.", channelID))
}

func (h *Handler) textCountingInfo(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, _ utils.TextCommand) error {
	current := "All channels"
	if id := h.settings().CountingChannelID; id != "" {
		current = "<#" + id + ">"
	}
	return replyEmbed(ctx, s, m, countingInfoEmbed(current))
}

func (h *Handler) textSetXP(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cmd utils.TextCommand) error {
	amount := 0
	if len(cmd.Args) > 0 {
		amount, _ = strconv.Atoi(cmd.Args[0])
	}
	if err := h.bot.Leveling.SetExperiencePerMessage(amount); err != nil {
		if errors.Is(err, leveling.ErrInvalidAmount) {
			return reply(ctx, s, m, fmt.Sprintf("Usage: `setxp <amount>` (1-100)\nCurrently: `%d` XP per message", h.bot.Leveling.Info().PerMessage))
		}
		return err
	}
	info := h.bot.Leveling.Info()
	return reply(ctx, s, m, fmt.Sprintf("✅ Set XP per message to: **%d** XP\n*Messages now give %d-%d XP*", amount, info.Min, info.Max))
}

func (h *Handler) textXPInfo(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, _ utils.TextCommand) error {
	return replyEmbed(ctx, s, m, xpInfoEmbed(h.bot.Leveling.Info()))
}

func (h *Handler) textAddCommand(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cmd utils.TextCommand) error {
	if len(cmd.Args) < 2 {
		return reply(ctx, s, m, "Usage: `addcommand <command_name> <response>`")
	}
	trigger := strings.ToLower(cmd.Args[0])
	err := h.custom.Add(m.GuildID, trigger, cmd.Rest(1))
	switch {
	case errors.Is(err, customcmd.ErrReserved):
		return reply(ctx, s, m, fmt.Sprintf("❌ `%s` is a built-in command!", trigger))
	case errors.Is(err, customcmd.ErrEmptyTrigger), errors.Is(err, customcmd.ErrEmptyResponse):
		return reply(ctx, s, m, "Usage: `addcommand <command_name> <response>`")
	case err != nil:
		return err
	}
	return reply(ctx, s, m, fmt.Sprintf("✅ Added custom command: `%s`", trigger))
}

func (h *Handler) textRemoveCommand(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cmd utils.TextCommand) error {
	if len(cmd.Args) == 0 {
		return reply(ctx, s, m, "Usage: `removecommand <command_name>`")
	}
	trigger := strings.ToLower(cmd.Args[0])
	err := h.custom.Remove(m.GuildID, trigger)
	switch {
	case errors.Is(err, customcmd.ErrNotFound):
		return reply(ctx, s, m, fmt.Sprintf("❌ Command `%s` doesn't exist!", trigger))
	case err != nil:
		return err
	}
	return reply(ctx, s, m, fmt.Sprintf("✅ Removed custom command: `%s`", trigger))
}

func (h *Handler) textListCommands(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, _ utils.TextCommand) error {
	triggers := h.custom.List(m.GuildID)
	if len(triggers) == 0 {
		return reply(ctx, s, m, "No custom commands found!")
	}
	return replyEmbed(ctx, s, m, customCommandsEmbed(triggers))
}

func (h *Handler) textWarn(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cmd utils.TextCommand) error {
	user, ok := targetUser(m, cmd)
	if !ok {
		return reply(ctx, s, m, "Please mention a user to warn!")
	}
	reason := reasonFrom(cmd)
	total, err := h.bot.Ledger.Warn(user.ID, reason, m.Author.ID)
	if err != nil {
		return err
	}
	embed := actionEmbed("User Warned", utils.ColorWarning, user.ID, m.Author.ID, reason,
		&discordgo.MessageEmbedField{Name: "Total Warnings", Value: strconv.Itoa(total), Inline: true})
	h.modLog(ctx, embed)
	return replyEmbed(ctx, s, m, embed)
}

func (h *Handler) textKick(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cmd utils.TextCommand) error {
	user, ok := targetUser(m, cmd)
	if !ok {
		return reply(ctx, s, m, "Please mention a user to kick!")
	}
	reason := reasonFrom(cmd)
	if err := h.bot.Moderator.Kick(ctx, m.GuildID, user.ID, reason, m.Author.ID); err != nil {
		return reply(ctx, s, m, "Failed to kick user!")
	}
	embed := actionEmbed("User Kicked", utils.ColorError, user.ID, m.Author.ID, reason)
	h.modLog(ctx, embed)
	return replyEmbed(ctx, s, m, embed)
}

func (h *Handler) textBan(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cmd utils.TextCommand) error {
	user, ok := targetUser(m, cmd)
	if !ok {
		return reply(ctx, s, m, "Please mention a user to ban!")
	}
	reason := reasonFrom(cmd)
	if err := h.bot.Moderator.Ban(ctx, m.GuildID, user.ID, reason, m.Author.ID, 0); err != nil {
		return reply(ctx, s, m, "Failed to ban user!")
	}
	embed := actionEmbed("User Banned", 0x990000, user.ID, m.Author.ID, reason)
	h.modLog(ctx, embed)
	return replyEmbed(ctx, s, m, embed)
}

func (h *Handler) textPing(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, _ utils.TextCommand) error {
	latency := time.Since(m.Timestamp)
	return reply(ctx, s, m, fmt.Sprintf("🏓 Pong! Latency: %dms", latency.Milliseconds()))
}

func (h *Handler) textServerInfo(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, _ utils.TextCommand) error {
	guild, err := s.GuildWithCounts(m.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("fetch guild: %w", err)
	}
	return replyEmbed(ctx, s, m, serverInfoEmbed(guild))
}

func (h *Handler) textUserInfo(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, cmd utils.TextCommand) error {
	user := targetOrAuthor(m, cmd)
	member, err := s.GuildMember(m.GuildID, user.ID, discordgo.WithContext(ctx))
	if err != nil {
		h.logger.Debug("Member lookup failed", zap.String("user_id", user.ID), zap.Error(err))
	} else if member.User != nil {
		user = member.User
	}
	return replyEmbed(ctx, s, m, userInfoEmbed(user, member))
}
