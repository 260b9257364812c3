package defs

import "github.com/bwmarrin/discordgo"

var Warn = &discordgo.ApplicationCommand{
	Name:                     "warn",
	Description:              "Warn a user",
	DefaultMemberPermissions: &modPermission,
	DMPermission:             &noDM,
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "警告一名用户",
		discordgo.ChineseTW: "警告一名用戶",
	},
	Options: []*discordgo.ApplicationCommandOption{
		userOption("user", "User to warn", true),
		reasonOption("Reason for warning", true),
	},
}

var Kick = &discordgo.ApplicationCommand{
	Name:                     "kick",
	Description:              "Kick a user",
	DefaultMemberPermissions: &kickPermission,
	DMPermission:             &noDM,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("user", "User to kick", true),
		reasonOption("Reason for kick", false),
	},
}

var Ban = &discordgo.ApplicationCommand{
	Name:                     "ban",
	Description:              "Ban a user",
	DefaultMemberPermissions: &banPermission,
	DMPermission:             &noDM,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("user", "User to ban", true),
		reasonOption("Reason for ban", false),
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "days",
			Description: "Days of messages to delete (0-7)",
			MinValue:    &minZero,
			MaxValue:    maxSeven,
		},
	},
}

var Mute = &discordgo.ApplicationCommand{
	Name:                     "mute",
	Description:              "Time out a user",
	DefaultMemberPermissions: &modPermission,
	DMPermission:             &noDM,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("user", "User to mute", true),
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duration",
			Description: "Duration such as 30, 10m, 2h or 1d (bare numbers are minutes)",
			Required:    true,
		},
		reasonOption("Reason for mute", false),
	},
}

var Unmute = &discordgo.ApplicationCommand{
	Name:                     "unmute",
	Description:              "Remove a user's timeout",
	DefaultMemberPermissions: &modPermission,
	DMPermission:             &noDM,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("user", "User to unmute", true),
	},
}

var Warnings = &discordgo.ApplicationCommand{
	Name:                     "warnings",
	Description:              "Check warnings for a user",
	DefaultMemberPermissions: &modPermission,
	DMPermission:             &noDM,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("user", "User to check warnings for", true),
	},
}

var ClearWarnings = &discordgo.ApplicationCommand{
	Name:                     "clearwarnings",
	Description:              "Clear all warnings for a user",
	DefaultMemberPermissions: &modPermission,
	DMPermission:             &noDM,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("user", "User to clear warnings for", true),
	},
}

var StaffStats = &discordgo.ApplicationCommand{
	Name:                     "staffstats",
	Description:              "View staff member statistics",
	DefaultMemberPermissions: &modPermission,
	DMPermission:             &noDM,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("staff", "Staff member to check", false),
	},
}

var Purge = &discordgo.ApplicationCommand{
	Name:                     "purge",
	Description:              "Delete multiple messages",
	DefaultMemberPermissions: &managePermission,
	DMPermission:             &noDM,
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "批量删除消息",
		discordgo.ChineseTW: "批量刪除消息",
	},
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "amount",
			Description: "Number of messages to delete (1-100)",
			Required:    true,
			MinValue:    &minOne,
			MaxValue:    maxHundred,
		},
	},
}
