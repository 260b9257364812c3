package defs

import "github.com/bwmarrin/discordgo"

var Setup = &discordgo.ApplicationCommand{
	Name:                     "setup",
	Description:              "Setup bot configuration",
	DefaultMemberPermissions: &adminPermission,
	DMPermission:             &noDM,
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "配置机器人",
		discordgo.ChineseTW: "配置機器人",
	},
	Options: []*discordgo.ApplicationCommandOption{
		channelOption("logchannel", "Channel for moderation logs", false),
		roleOption("staffrole", "Staff role", false),
		roleOption("mutedrole", "Muted role", false),
		channelOption("levelchannel", "Channel for level up announcements", false),
		channelOption("countingchannel", "Channel where messages/XP will be counted (leave empty for all channels)", false),
	},
}

var Level = &discordgo.ApplicationCommand{
	Name:         "level",
	Description:  "Check your or another user's level",
	DMPermission: &noDM,
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "查看等级",
		discordgo.ChineseTW: "查看等級",
	},
	Options: []*discordgo.ApplicationCommandOption{
		userOption("user", "User to check level for", false),
	},
}

var Leaderboard = &discordgo.ApplicationCommand{
	Name:         "leaderboard",
	Description:  "View server leaderboards",
	DMPermission: &noDM,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "type",
			Description: "Type of leaderboard",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Levels", Value: "levels"},
				{Name: "Messages", Value: "messages"},
			},
		},
	},
}

var MessageStats = &discordgo.ApplicationCommand{
	Name:         "messagestats",
	Description:  "View message statistics",
	DMPermission: &noDM,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("user", "User to check stats for", false),
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "period",
			Description: "Time period",
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Daily", Value: "daily"},
				{Name: "Weekly", Value: "weekly"},
				{Name: "Monthly", Value: "monthly"},
				{Name: "Total", Value: "total"},
			},
		},
	},
}

var SystemInfo = &discordgo.ApplicationCommand{
	Name:        "systeminfo",
	Description: "Display bot and system status information",
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "显示机器人和系统的状态信息",
		discordgo.ChineseTW: "顯示機器人和系統的狀態信息",
	},
}
