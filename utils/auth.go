package utils

import (
	"slices"

	"github.com/bwmarrin/discordgo"
)

// Permission levels
const (
	OwnerPermission = "owner"
	StaffPermission = "staff"
	UserPermission  = "user"
)

// Caller describes who invoked a command.
type Caller struct {
	UserID       string
	RoleIDs      []string
	Permissions  int64
	GuildOwnerID string
}

const moderationPermissions = discordgo.PermissionKickMembers |
	discordgo.PermissionBanMembers |
	discordgo.PermissionModerateMembers |
	discordgo.PermissionAdministrator

// CheckPermission returns the highest permission level of the caller. The bot owner
// and the guild owner are owners; holders of the staff role or of a moderation
// permission are staff.
func CheckPermission(c Caller, botOwnerID, staffRoleID string) string {
	if c.UserID != "" && (c.UserID == botOwnerID || c.UserID == c.GuildOwnerID) {
		return OwnerPermission
	}
	if staffRoleID != "" && slices.Contains(c.RoleIDs, staffRoleID) {
		return StaffPermission
	}
	if c.Permissions&moderationPermissions != 0 {
		return StaffPermission
	}
	return UserPermission
}

// IsStaff reports whether level grants moderation commands.
func IsStaff(level string) bool {
	return level == OwnerPermission || level == StaffPermission
}
