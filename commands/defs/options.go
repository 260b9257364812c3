package defs

import "github.com/bwmarrin/discordgo"

var (
	minZero    = 0.0
	minOne     = 1.0
	maxSeven   = 7.0
	maxHundred = 100.0

	modPermission    int64 = discordgo.PermissionModerateMembers
	kickPermission   int64 = discordgo.PermissionKickMembers
	banPermission    int64 = discordgo.PermissionBanMembers
	managePermission int64 = discordgo.PermissionManageMessages
	adminPermission  int64 = discordgo.PermissionManageGuild

	noDM = false
)

func userOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func reasonOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: description,
		Required:    required,
	}
}

func channelOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         name,
		Description:  description,
		Required:     required,
		ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
	}
}

func roleOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionRole,
		Name:        name,
		Description: description,
		Required:    required,
	}
}
