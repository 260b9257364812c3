package utils

import (
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

const (
	ColorInfo    = 0x5865F2 // Discord Blurple
	ColorSuccess = 0x2ECC71
	ColorWarning = 0xE67E22
	ColorError   = 0xE74C3C
	ColorGold    = 0xF1C40F
)

// Truncate shortens s to at most limit runes, marking the cut with an ellipsis.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	if limit == 1 {
		return string(runes[:1])
	}
	return string(runes[:limit-1]) + "…"
}

// SimpleEmbed returns an embed with a title, description and color.
func SimpleEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: Truncate(description, 4096),
		Color:       color,
	}
}
