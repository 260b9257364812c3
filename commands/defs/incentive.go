package defs

import "github.com/bwmarrin/discordgo"

var SetTranscript = &discordgo.ApplicationCommand{
	Name:                     "settranscript",
	Description:              "Add a transcript channel",
	DefaultMemberPermissions: &adminPermission,
	DMPermission:             &noDM,
	Options: []*discordgo.ApplicationCommandOption{
		channelOption("channel", "Transcript channel", true),
	},
}

var RemoveTranscript = &discordgo.ApplicationCommand{
	Name:                     "removetranscript",
	Description:              "Remove a transcript channel",
	DefaultMemberPermissions: &adminPermission,
	DMPermission:             &noDM,
	Options: []*discordgo.ApplicationCommandOption{
		channelOption("channel", "Transcript channel", true),
	},
}

var SetStaff = &discordgo.ApplicationCommand{
	Name:                     "setstaff",
	Description:              "Add a staff role",
	DefaultMemberPermissions: &adminPermission,
	DMPermission:             &noDM,
	Options: []*discordgo.ApplicationCommandOption{
		roleOption("role", "Staff role", true),
	},
}

var RemoveStaff = &discordgo.ApplicationCommand{
	Name:                     "removestaff",
	Description:              "Remove a staff role and its multiplier",
	DefaultMemberPermissions: &adminPermission,
	DMPermission:             &noDM,
	Options: []*discordgo.ApplicationCommandOption{
		roleOption("role", "Staff role", true),
	},
}

var StaffMultiplier = &discordgo.ApplicationCommand{
	Name:                     "staffmultiplier",
	Description:              "Set the point multiplier of a staff role",
	DefaultMemberPermissions: &adminPermission,
	DMPermission:             &noDM,
	Options: []*discordgo.ApplicationCommandOption{
		roleOption("role", "Staff role", true),
		{
			Type:        discordgo.ApplicationCommandOptionNumber,
			Name:        "multiplier",
			Description: "Multiplier greater than zero",
			Required:    true,
		},
	},
}

var ResetTicket = &discordgo.ApplicationCommand{
	Name:                     "resetticket",
	Description:              "Reset weekly ticket stats",
	DefaultMemberPermissions: &adminPermission,
	DMPermission:             &noDM,
}

var WeeklyTop = &discordgo.ApplicationCommand{
	Name:         "weeklytop",
	Description:  "Show weekly staff leaderboard",
	DMPermission: &noDM,
}

var StaffTop = &discordgo.ApplicationCommand{
	Name:         "stafftop",
	Description:  "Show lifetime staff ticket leaderboard",
	DMPermission: &noDM,
}

var StaffPay = &discordgo.ApplicationCommand{
	Name:                     "staffpay",
	Description:              "Show this week's staff points",
	DefaultMemberPermissions: &adminPermission,
	DMPermission:             &noDM,
}

var PayStaff = &discordgo.ApplicationCommand{
	Name:                     "paystaff",
	Description:              "Generate payout commands for this week's staff points",
	DefaultMemberPermissions: &adminPermission,
	DMPermission:             &noDM,
}

var ScanTranscripts = &discordgo.ApplicationCommand{
	Name:                     "scantranscripts",
	Description:              "Scan transcript channels for staff tickets now",
	DefaultMemberPermissions: &adminPermission,
	DMPermission:             &noDM,
	DescriptionLocalizations: &map[discordgo.Locale]string{
		discordgo.ChineseCN: "立即扫描工单记录频道",
		discordgo.ChineseTW: "立即掃描工單記錄頻道",
	},
}
