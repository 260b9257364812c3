package handlers

import (
	"fmt"
	"strings"
	"time"

	"community-bot/incentive"
	"community-bot/leveling"
	"community-bot/model"
	"community-bot/moderation"
	"community-bot/msgstats"
	"community-bot/utils"

	"github.com/bwmarrin/discordgo"
)

const leaderboardSize = 10

func mention(userID string) string {
	return "<@" + userID + ">"
}

func levelEmbed(username string, rec model.UserLevelRecord) *discordgo.MessageEmbed {
	p := leveling.ProgressFor(int64(rec.Experience), rec.Level.Int())

	progress := fmt.Sprintf("%d%%", p.Percent)
	bar := fmt.Sprintf("%s %d%%", leveling.ProgressBar(p.Percent, 10), p.Percent)
	next := fmt.Sprintf("%d XP needed", p.Remaining)
	if p.Maxed {
		progress = "MAX LEVEL!"
		bar = leveling.ProgressBar(100, 10)
		next = "Already at max!"
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s's Level", username),
		Color: utils.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Level", Value: fmt.Sprint(p.Level), Inline: true},
			{Name: "Total XP", Value: fmt.Sprint(p.Experience), Inline: true},
			{Name: "Progress", Value: progress, Inline: true},
			{Name: "Progress Bar", Value: bar},
			{Name: "Next Level", Value: next, Inline: true},
		},
	}
}

func levelUpEmbed(ev *leveling.LevelUpEvent) *discordgo.MessageEmbed {
	next := fmt.Sprintf("%d XP needed", ev.Remaining)
	if ev.Maxed {
		next = "Max Level!"
	}
	return &discordgo.MessageEmbed{
		Title:       "🎉 Level Up!",
		Description: fmt.Sprintf("%s, you've reached **Level %d**!\n+%d XP from this message", mention(ev.UserID), ev.Level, ev.Gained),
		Color:       utils.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Current XP", Value: fmt.Sprint(ev.Experience), Inline: true},
			{Name: "Next Level", Value: next, Inline: true},
			{Name: "Level Progress", Value: fmt.Sprintf("%d%%", ev.Percent), Inline: true},
		},
	}
}

func levelLeaderboardEmbed(standings []leveling.Standing) *discordgo.MessageEmbed {
	var sb strings.Builder
	for i, st := range standings {
		fmt.Fprintf(&sb, "%d. %s - Level %d (%d XP)\n", i+1, mention(st.UserID), st.Level, st.Experience)
	}
	return utils.SimpleEmbed("🏆 Level Leaderboard", orNoData(sb.String()), utils.ColorGold)
}

func messageLeaderboardEmbed(standings []msgstats.Standing) *discordgo.MessageEmbed {
	var sb strings.Builder
	for i, st := range standings {
		fmt.Fprintf(&sb, "%d. %s - %d messages\n", i+1, mention(st.UserID), st.Total)
	}
	return utils.SimpleEmbed("💬 Message Leaderboard", orNoData(sb.String()), utils.ColorInfo)
}

// statsEmbed renders a snapshot. period narrows the output to a single bucket.
func statsEmbed(username string, snap msgstats.Snapshot, period string) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Total Messages", Value: fmt.Sprint(snap.Total), Inline: true},
		{Name: "Today", Value: fmt.Sprint(snap.Today), Inline: true},
		{Name: "This Week", Value: fmt.Sprint(snap.ThisWeek), Inline: true},
		{Name: "This Month", Value: fmt.Sprint(snap.ThisMonth), Inline: true},
	}
	switch period {
	case "total":
		fields = fields[:1]
	case "daily":
		fields = fields[1:2]
	case "weekly":
		fields = fields[2:3]
	case "monthly":
		fields = fields[3:4]
	}
	return &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("📊 %s's Message Statistics", username),
		Color:  0x800080,
		Fields: fields,
	}
}

func xpInfoEmbed(info leveling.RateInfo) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "📊 XP System Info",
		Color: utils.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "XP Per Message", Value: fmt.Sprintf("%d-%d XP", info.Min, info.Max), Inline: true},
			{Name: "XP Cooldown", Value: fmt.Sprintf("%d seconds", int(info.Cooldown/time.Second)), Inline: true},
			{Name: "Max Level", Value: fmt.Sprintf("%d+", leveling.DisplayMaxLevel), Inline: true},
			{Name: "Level 1", Value: fmt.Sprintf("%d XP", leveling.CumulativeForLevel(1)), Inline: true},
			{Name: "Level 10", Value: fmt.Sprintf("%d XP", leveling.CumulativeForLevel(10)), Inline: true},
			{Name: "Level 50", Value: fmt.Sprintf("%d XP", leveling.CumulativeForLevel(50)), Inline: true},
			{Name: "Level 100", Value: fmt.Sprintf("%d XP", leveling.CumulativeForLevel(100)), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: `Use "setxp <amount>" to change XP per message (owner only)`},
	}
}

// actionEmbed describes a moderation action for the reply and the log channel.
func actionEmbed(title string, color int, targetID, moderatorID, reason string, extra ...*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	if reason == "" {
		reason = "No reason provided"
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "User", Value: fmt.Sprintf("%s (%s)", mention(targetID), targetID), Inline: true},
		{Name: "Moderator", Value: mention(moderatorID), Inline: true},
		{Name: "Reason", Value: utils.Truncate(reason, 1024)},
	}
	return &discordgo.MessageEmbed{
		Title:     title,
		Color:     color,
		Fields:    append(fields, extra...),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func warningsEmbed(targetID string, warnings []model.WarningRecord) *discordgo.MessageEmbed {
	if len(warnings) == 0 {
		return utils.SimpleEmbed("Warnings", fmt.Sprintf("%s has no warnings.", mention(targetID)), utils.ColorSuccess)
	}
	var sb strings.Builder
	for i, w := range warnings {
		fmt.Fprintf(&sb, "**%d.** %s - by %s <t:%d:R>\n", i+1, w.Reason, mention(w.Moderator), w.Timestamp.Unix())
	}
	embed := utils.SimpleEmbed(fmt.Sprintf("Warnings (%d)", len(warnings)), sb.String(), utils.ColorWarning)
	embed.Fields = []*discordgo.MessageEmbedField{{Name: "User", Value: mention(targetID)}}
	return embed
}

func staffStatsEmbed(staffID string, breakdown []moderation.ActionCount, recent []model.StaffActionRecord) *discordgo.MessageEmbed {
	total := 0
	var sb strings.Builder
	for _, c := range breakdown {
		total += c.Count
		fmt.Fprintf(&sb, "%s: %d\n", c.Action, c.Count)
	}
	embed := &discordgo.MessageEmbed{
		Title: "Staff Statistics",
		Color: utils.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Staff", Value: mention(staffID), Inline: true},
			{Name: "Total Actions", Value: fmt.Sprint(total), Inline: true},
			{Name: "Breakdown", Value: orNoData(sb.String())},
		},
	}

	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	var lines strings.Builder
	for i := len(recent) - 1; i >= 0; i-- {
		a := recent[i]
		fmt.Fprintf(&lines, "%s -> %s <t:%d:R>\n", a.Action, mention(a.TargetID), a.Timestamp.Unix())
	}
	if lines.Len() > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Recent", Value: lines.String()})
	}
	return embed
}

func ticketRankingEmbed(title string, ranking []incentive.StaffRanking) *discordgo.MessageEmbed {
	var sb strings.Builder
	for i, r := range ranking {
		if i >= leaderboardSize {
			break
		}
		fmt.Fprintf(&sb, "**%d.** %s - %d tickets, %d messages\n", i+1, mention(r.StaffID), r.Tickets, r.Messages)
	}
	return utils.SimpleEmbed(title, orNoData(sb.String()), utils.ColorGold)
}

func orNoData(s string) string {
	if strings.TrimSpace(s) == "" {
		return "No data available"
	}
	return s
}

func countingInfoEmbed(current string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "📊 Counting Channel Info",
		Color: utils.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Current Counting Channel", Value: current, Inline: true},
			{Name: "Commands", Value: "`setcountingchannel #channel` - Set counting channel\n`setcountingchannel` - Remove restriction"},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: `Use "setcountingchannel #channel" to change (owner only)`},
	}
}

func customCommandsEmbed(triggers []string) *discordgo.MessageEmbed {
	quoted := make([]string, len(triggers))
	for i, t := range triggers {
		quoted[i] = "`" + t + "`"
	}
	return utils.SimpleEmbed("Custom Commands", strings.Join(quoted, ", "), utils.ColorSuccess)
}

func createdAt(id string) string {
	t, err := discordgo.SnowflakeTimestamp(id)
	if err != nil {
		return "Unknown"
	}
	return t.UTC().Format("Mon Jan 02 2006")
}

func serverInfoEmbed(guild *discordgo.Guild) *discordgo.MessageEmbed {
	members := guild.ApproximateMemberCount
	if members == 0 {
		members = guild.MemberCount
	}
	embed := &discordgo.MessageEmbed{
		Title: guild.Name,
		Color: utils.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Members", Value: fmt.Sprint(members), Inline: true},
			{Name: "Created", Value: createdAt(guild.ID), Inline: true},
			{Name: "Owner", Value: mention(guild.OwnerID), Inline: true},
		},
	}
	if guild.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: guild.IconURL("")}
	}
	return embed
}

func userInfoEmbed(user *discordgo.User, member *discordgo.Member) *discordgo.MessageEmbed {
	joined := "Unknown"
	if member != nil && !member.JoinedAt.IsZero() {
		joined = member.JoinedAt.UTC().Format("Mon Jan 02 2006")
	}
	return &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("%s's Info", user.Username),
		Color:     utils.ColorInfo,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("")},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Username", Value: user.String(), Inline: true},
			{Name: "ID", Value: user.ID, Inline: true},
			{Name: "Joined Server", Value: joined, Inline: true},
			{Name: "Account Created", Value: createdAt(user.ID), Inline: true},
		},
	}
}

func setupEmbed(s model.Settings, note string) *discordgo.MessageEmbed {
	show := func(id, prefix string) string {
		if id == "" {
			return "Not set"
		}
		return prefix + id + ">"
	}
	counting := "All channels"
	if s.CountingChannelID != "" {
		counting = "<#" + s.CountingChannelID + ">"
	}
	return &discordgo.MessageEmbed{
		Title:       "⚙️ Bot Configuration",
		Description: note,
		Color:       utils.ColorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Log Channel", Value: show(s.LogChannelID, "<#"), Inline: true},
			{Name: "Staff Role", Value: show(s.StaffRoleID, "<@&"), Inline: true},
			{Name: "Muted Role", Value: show(s.MutedRoleID, "<@&"), Inline: true},
			{Name: "Level Up Channel", Value: show(s.LevelUpChannelID, "<#"), Inline: true},
			{Name: "Counting Channel", Value: counting, Inline: true},
		},
	}
}
