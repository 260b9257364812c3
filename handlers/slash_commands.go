package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"community-bot/bot"
	"community-bot/model"
	"community-bot/moderation"
	"community-bot/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type slashHandler func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error

func (h *Handler) commandHandlers() map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	routes := map[string]slashHandler{
		"warn":             h.staffOnly(h.slashWarn),
		"kick":             h.staffOnly(h.slashKick),
		"ban":              h.staffOnly(h.slashBan),
		"mute":             h.staffOnly(h.slashMute),
		"unmute":           h.staffOnly(h.slashUnmute),
		"warnings":         h.staffOnly(h.slashWarnings),
		"clearwarnings":    h.staffOnly(h.slashClearWarnings),
		"staffstats":       h.staffOnly(h.slashStaffStats),
		"purge":            h.staffOnly(h.slashPurge),
		"setup":            h.slashSetup,
		"level":            h.slashLevel,
		"leaderboard":      h.slashLeaderboard,
		"messagestats":     h.slashMessageStats,
		"settranscript":    h.slashSetTranscript,
		"removetranscript": h.slashRemoveTranscript,
		"setstaff":         h.slashSetStaff,
		"removestaff":      h.slashRemoveStaff,
		"staffmultiplier":  h.slashStaffMultiplier,
		"resetticket":      h.slashResetTicket,
		"weeklytop":        h.slashWeeklyTop,
		"stafftop":         h.slashStaffTop,
		"staffpay":         h.slashStaffPay,
		"paystaff":         h.slashPayStaff,
		"scantranscripts":  h.slashScanTranscripts,
		"systeminfo":       h.slashSystemInfo,
	}

	out := make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate), len(routes))
	for name, route := range routes {
		out[name] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			if err := route(ctx, s, i, newOptionMap(i.ApplicationCommandData())); err != nil {
				h.logger.Error("Slash command failed",
					zap.String("command", name),
					zap.String("guild_id", i.GuildID),
					zap.String("user_id", interactionUserID(i)),
					zap.Error(err))
			}
		}
	}
	return out
}

// optionMap indexes the top-level options of a command by name.
type optionMap struct {
	opts     map[string]*discordgo.ApplicationCommandInteractionDataOption
	resolved *discordgo.ApplicationCommandInteractionDataResolved
}

func newOptionMap(data discordgo.ApplicationCommandInteractionData) optionMap {
	m := optionMap{
		opts:     make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options)),
		resolved: data.Resolved,
	}
	for _, opt := range data.Options {
		m.opts[opt.Name] = opt
	}
	return m
}

func (m optionMap) has(name string) bool {
	_, ok := m.opts[name]
	return ok
}

// id returns the snowflake of a user, channel or role option.
func (m optionMap) id(name string) string {
	opt, ok := m.opts[name]
	if !ok {
		return ""
	}
	v, _ := opt.Value.(string)
	return v
}

func (m optionMap) str(name string) string {
	opt, ok := m.opts[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionString {
		return ""
	}
	return opt.StringValue()
}

func (m optionMap) integer(name string, fallback int64) int64 {
	opt, ok := m.opts[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionInteger {
		return fallback
	}
	return opt.IntValue()
}

func (m optionMap) number(name string) (float64, bool) {
	opt, ok := m.opts[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionNumber {
		return 0, false
	}
	return opt.FloatValue(), true
}

// user returns the resolved user behind a user option.
func (m optionMap) user(name string) *discordgo.User {
	id := m.id(name)
	if id == "" {
		return nil
	}
	if m.resolved != nil {
		if u, ok := m.resolved.Users[id]; ok {
			return u
		}
	}
	return &discordgo.User{ID: id, Username: id}
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if u := interactionUser(i); u != nil {
		return u.ID
	}
	return ""
}

func (h *Handler) slashCaller(i *discordgo.InteractionCreate) utils.Caller {
	c := utils.Caller{UserID: interactionUserID(i)}
	if i.Member != nil {
		c.RoleIDs = i.Member.Roles
		c.Permissions = i.Member.Permissions
	}
	return c
}

func (h *Handler) staffOnly(next slashHandler) slashHandler {
	return func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
		level := utils.CheckPermission(h.slashCaller(i), h.bot.GetConfig().BotOwnerID, h.settings().StaffRoleID)
		if !utils.IsStaff(level) {
			return utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
		}
		return next(ctx, s, i, opts)
	}
}

func (h *Handler) slashWarn(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	target := opts.user("user")
	if target == nil {
		return utils.SendErrorResponse(s, i, "Please choose a user to warn.")
	}
	staffID := interactionUserID(i)
	reason := opts.str("reason")
	total, err := h.bot.Ledger.Warn(target.ID, reason, staffID)
	if err != nil {
		_ = utils.SendErrorResponse(s, i, "Failed to record the warning.")
		return err
	}
	embed := actionEmbed("User Warned", utils.ColorWarning, target.ID, staffID, reason,
		&discordgo.MessageEmbedField{Name: "Total Warnings", Value: strconv.Itoa(total), Inline: true})
	h.modLog(ctx, embed)
	return utils.SendEmbedResponse(s, i, embed, false)
}

func (h *Handler) slashKick(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	target := opts.user("user")
	if target == nil {
		return utils.SendErrorResponse(s, i, "Please choose a user to kick.")
	}
	staffID, reason := interactionUserID(i), opts.str("reason")
	if err := h.bot.Moderator.Kick(ctx, i.GuildID, target.ID, reason, staffID); err != nil {
		return h.enforcementFailed(s, i, "kick", err)
	}
	embed := actionEmbed("User Kicked", utils.ColorError, target.ID, staffID, reason)
	h.modLog(ctx, embed)
	return utils.SendEmbedResponse(s, i, embed, false)
}

func (h *Handler) slashBan(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	target := opts.user("user")
	if target == nil {
		return utils.SendErrorResponse(s, i, "Please choose a user to ban.")
	}
	staffID, reason := interactionUserID(i), opts.str("reason")
	days := int(opts.integer("days", 0))
	if err := h.bot.Moderator.Ban(ctx, i.GuildID, target.ID, reason, staffID, days); err != nil {
		return h.enforcementFailed(s, i, "ban", err)
	}
	embed := actionEmbed("User Banned", 0x990000, target.ID, staffID, reason)
	h.modLog(ctx, embed)
	return utils.SendEmbedResponse(s, i, embed, false)
}

func (h *Handler) slashMute(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	target := opts.user("user")
	if target == nil {
		return utils.SendErrorResponse(s, i, "Please choose a user to mute.")
	}
	duration, err := utils.ParseDuration(opts.str("duration"))
	if err != nil || duration <= 0 {
		return utils.SendErrorResponse(s, i, "Invalid duration. Use a number of minutes or values like 10m, 2h, 1d.")
	}
	if duration > moderation.MaxTimeout {
		duration = moderation.MaxTimeout
	}
	staffID, reason := interactionUserID(i), opts.str("reason")
	if err := h.bot.Moderator.Mute(ctx, i.GuildID, target.ID, reason, staffID, duration); err != nil {
		return h.enforcementFailed(s, i, "mute", err)
	}
	embed := actionEmbed("User Muted", utils.ColorWarning, target.ID, staffID, reason,
		&discordgo.MessageEmbedField{Name: "Duration", Value: utils.FormatDuration(duration), Inline: true})
	h.modLog(ctx, embed)
	return utils.SendEmbedResponse(s, i, embed, false)
}

func (h *Handler) slashUnmute(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	target := opts.user("user")
	if target == nil {
		return utils.SendErrorResponse(s, i, "Please choose a user to unmute.")
	}
	staffID := interactionUserID(i)
	if err := h.bot.Moderator.Unmute(ctx, i.GuildID, target.ID, staffID); err != nil {
		return h.enforcementFailed(s, i, "unmute", err)
	}
	embed := actionEmbed("User Unmuted", utils.ColorSuccess, target.ID, staffID, "")
	h.modLog(ctx, embed)
	return utils.SendEmbedResponse(s, i, embed, false)
}

func (h *Handler) enforcementFailed(s *discordgo.Session, i *discordgo.InteractionCreate, action string, err error) error {
	if errors.Is(err, moderation.ErrNoTarget) {
		return utils.SendErrorResponse(s, i, "Please choose a user.")
	}
	h.logger.Warn("Moderation action failed", zap.String("action", action), zap.Error(err))
	return utils.SendErrorResponse(s, i, fmt.Sprintf("Failed to %s user!", action))
}

func (h *Handler) slashWarnings(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	target := opts.user("user")
	if target == nil {
		return utils.SendErrorResponse(s, i, "Please choose a user.")
	}
	return utils.SendEmbedResponse(s, i, warningsEmbed(target.ID, h.bot.Ledger.ListWarnings(target.ID)), true)
}

func (h *Handler) slashClearWarnings(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	target := opts.user("user")
	if target == nil {
		return utils.SendErrorResponse(s, i, "Please choose a user.")
	}
	cleared, err := h.bot.Ledger.ClearWarnings(target.ID, interactionUserID(i))
	if err != nil {
		_ = utils.SendErrorResponse(s, i, "Failed to clear warnings.")
		return err
	}
	h.systemLog(ctx, utils.Info, "Moderation", "清除警告", fmt.Sprintf("%s cleared %d warnings of %s", mention(interactionUserID(i)), cleared, mention(target.ID)))
	return utils.SendPublicResponse(s, i, fmt.Sprintf("✅ Cleared %d warnings for %s", cleared, mention(target.ID)))
}

func (h *Handler) slashStaffStats(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	staffID := interactionUserID(i)
	if u := opts.user("staff"); u != nil {
		staffID = u.ID
	}
	embed := staffStatsEmbed(staffID, h.bot.Ledger.ActionBreakdown(staffID), h.bot.Ledger.StaffActions(staffID))
	return utils.SendEmbedResponse(s, i, embed, true)
}

func (h *Handler) slashPurge(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	if err := utils.DeferResponse(s, i, true); err != nil {
		return err
	}
	amount := int(opts.integer("amount", 1))
	deleted, err := h.bot.Moderator.Purge(ctx, i.ChannelID, interactionUserID(i), amount)
	if err != nil {
		h.logger.Warn("Purge failed", zap.String("channel_id", i.ChannelID), zap.Error(err))
		return utils.SendFollowUpError(s, i.Interaction, "Failed to delete messages. Messages older than 14 days cannot be bulk deleted.")
	}
	h.systemLog(ctx, utils.Info, "Moderation", "批量删除", fmt.Sprintf("%s deleted %d messages in <#%s>", mention(interactionUserID(i)), deleted, i.ChannelID))
	return utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ Deleted %d messages", deleted))
}

func (h *Handler) slashSetup(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	update := setupUpdate(opts)
	changed, err := h.applySetup(update)
	if err != nil {
		_ = utils.SendErrorResponse(s, i, "Failed to save the configuration.")
		return err
	}
	if changed == 0 {
		return utils.SendEmbedResponse(s, i, setupEmbed(h.settings(), "No settings were changed."), true)
	}
	h.systemLog(ctx, utils.Info, "Setup", "更新配置", fmt.Sprintf("%s updated %d settings", mention(interactionUserID(i)), changed))
	return utils.SendEmbedResponse(s, i, setupEmbed(h.settings(), "✅ Configuration updated."), true)
}

func setupUpdate(opts optionMap) model.SetupUpdate {
	pick := func(name string) *string {
		if !opts.has(name) {
			return nil
		}
		v := opts.id(name)
		return &v
	}
	return model.SetupUpdate{
		LogChannelID:      pick("logchannel"),
		StaffRoleID:       pick("staffrole"),
		MutedRoleID:       pick("mutedrole"),
		LevelUpChannelID:  pick("levelchannel"),
		CountingChannelID: pick("countingchannel"),
	}
}

func (h *Handler) slashLevel(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	user := opts.user("user")
	if user == nil {
		user = interactionUser(i)
	}
	rec, ok := h.bot.Leveling.Lookup(i.GuildID, user.ID)
	if !ok {
		return utils.SendPublicResponse(s, i, fmt.Sprintf("%s hasn't gained any XP yet!", user.Username))
	}
	return utils.SendEmbedResponse(s, i, levelEmbed(user.Username, rec), false)
}

func (h *Handler) slashLeaderboard(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	if opts.str("type") == "messages" {
		standings := h.bot.Stats.Leaderboard(i.GuildID, leaderboardSize)
		if len(standings) == 0 {
			return utils.SendPublicResponse(s, i, "No message data available!")
		}
		return utils.SendEmbedResponse(s, i, messageLeaderboardEmbed(standings), false)
	}
	standings := h.bot.Leveling.Leaderboard(i.GuildID, leaderboardSize)
	if len(standings) == 0 {
		return utils.SendPublicResponse(s, i, "No level data available!")
	}
	return utils.SendEmbedResponse(s, i, levelLeaderboardEmbed(standings), false)
}

func (h *Handler) slashMessageStats(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	user := opts.user("user")
	if user == nil {
		user = interactionUser(i)
	}
	snap, ok := h.bot.Stats.Snapshot(i.GuildID, user.ID)
	if !ok {
		return utils.SendPublicResponse(s, i, fmt.Sprintf("%s has no message statistics!", user.Username))
	}
	return utils.SendEmbedResponse(s, i, statsEmbed(user.Username, snap, opts.str("period")), false)
}

func (h *Handler) slashSetTranscript(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	channelID := opts.id("channel")
	added, err := h.bot.Incentive.RegisterTranscriptChannel(channelID)
	if err != nil {
		_ = utils.SendErrorResponse(s, i, "Failed to add the transcript channel.")
		return err
	}
	if !added {
		return utils.SendSimpleResponse(s, i, fmt.Sprintf("<#%s> is already a transcript channel.", channelID))
	}
	return utils.SendSimpleResponse(s, i, fmt.Sprintf("✅ Added <#%s> as a transcript channel.", channelID))
}

func (h *Handler) slashRemoveTranscript(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	channelID := opts.id("channel")
	removed, err := h.bot.Incentive.UnregisterTranscriptChannel(channelID)
	if err != nil {
		_ = utils.SendErrorResponse(s, i, "Failed to remove the transcript channel.")
		return err
	}
	if !removed {
		return utils.SendSimpleResponse(s, i, fmt.Sprintf("<#%s> is not a transcript channel.", channelID))
	}
	return utils.SendSimpleResponse(s, i, fmt.Sprintf("✅ Removed <#%s> from transcript channels.", channelID))
}

func (h *Handler) slashSetStaff(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	roleID := opts.id("role")
	added, err := h.bot.Incentive.RegisterStaffRole(roleID)
	if err != nil {
		_ = utils.SendErrorResponse(s, i, "Failed to add the staff role.")
		return err
	}
	if !added {
		return utils.SendSimpleResponse(s, i, fmt.Sprintf("<@&%s> is already a staff role.", roleID))
	}
	return utils.SendSimpleResponse(s, i, fmt.Sprintf("✅ Added <@&%s> as a staff role.", roleID))
}

func (h *Handler) slashRemoveStaff(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	roleID := opts.id("role")
	removed, err := h.bot.Incentive.UnregisterStaffRole(roleID)
	if err != nil {
		_ = utils.SendErrorResponse(s, i, "Failed to remove the staff role.")
		return err
	}
	if !removed {
		return utils.SendSimpleResponse(s, i, fmt.Sprintf("<@&%s> is not a staff role.", roleID))
	}
	return utils.SendSimpleResponse(s, i, fmt.Sprintf("✅ Removed <@&%s> and its multiplier.", roleID))
}

func (h *Handler) slashStaffMultiplier(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	roleID := opts.id("role")
	multiplier, ok := opts.number("multiplier")
	if !ok || multiplier <= 0 {
		return utils.SendErrorResponse(s, i, "The multiplier must be greater than zero.")
	}
	if err := h.bot.Incentive.SetStaffMultiplier(roleID, multiplier); err != nil {
		_ = utils.SendErrorResponse(s, i, "Failed to set the multiplier.")
		return err
	}
	return utils.SendSimpleResponse(s, i, fmt.Sprintf("✅ Set the multiplier of <@&%s> to %g.", roleID, multiplier))
}

func (h *Handler) slashResetTicket(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, _ optionMap) error {
	if err := h.bot.Incentive.ResetWeekly(); err != nil {
		_ = utils.SendErrorResponse(s, i, "Failed to reset weekly stats.")
		return err
	}
	h.systemLog(ctx, utils.Info, "Incentive", "重置周统计", mention(interactionUserID(i))+" reset the weekly ticket stats")
	return utils.SendPublicResponse(s, i, "✅ Weekly ticket stats have been reset.")
}

func (h *Handler) slashWeeklyTop(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, _ optionMap) error {
	embed := ticketRankingEmbed("📅 Weekly Staff Leaderboard", h.bot.Incentive.RankByWeeklyTickets())
	return utils.SendEmbedResponse(s, i, embed, false)
}

func (h *Handler) slashStaffTop(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, _ optionMap) error {
	embed := ticketRankingEmbed("🏆 Staff Ticket Leaderboard", h.bot.Incentive.RankByLifetimeTickets())
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Total tickets handled: %d", h.bot.Incentive.TotalTickets())}
	return utils.SendEmbedResponse(s, i, embed, false)
}

func (h *Handler) slashStaffPay(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, _ optionMap) error {
	ranking, err := h.bot.Incentive.RankByPayment()
	if err != nil {
		h.logger.Warn("Failed to persist weekly payments", zap.Error(err))
	}
	return utils.SendEmbedResponse(s, i, bot.PaymentEmbed(ranking, leaderboardSize), false)
}

func (h *Handler) slashPayStaff(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, _ optionMap) error {
	if err := utils.DeferResponse(s, i, true); err != nil {
		return err
	}
	directives, err := h.bot.Incentive.GeneratePayoutDirectives(h.bot.GetConfig().Payout.Command)
	if err != nil {
		h.logger.Warn("Failed to persist weekly payments", zap.Error(err))
	}
	chunks := bot.ChunkLines(directives, 1900)
	if len(chunks) == 0 {
		return utils.SendFollowUp(s, i.Interaction, "No staff activity recorded this week.")
	}
	if err := utils.SendFollowUp(s, i.Interaction, chunks[0]); err != nil {
		return err
	}
	for _, chunk := range chunks[1:] {
		if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: chunk,
			Flags:   discordgo.MessageFlagsEphemeral,
		}, discordgo.WithContext(ctx)); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) slashScanTranscripts(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, _ optionMap) error {
	if err := utils.DeferResponse(s, i, true); err != nil {
		return err
	}
	result, err := h.bot.ScanTranscripts(ctx)
	if err != nil {
		_ = utils.SendFollowUpError(s, i.Interaction, "Transcript scan failed.")
		return err
	}
	return utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ Scanned %d channels (%d skipped), credited %d tickets.",
		result.Channels, result.Skipped, result.Credited))
}
