package utils

import (
	"regexp"
	"strings"
)

var (
	userMentionRe    = regexp.MustCompile(`^<@!?(\d+)>$`)
	channelMentionRe = regexp.MustCompile(`^<#(\d+)>$`)
	snowflakeRe      = regexp.MustCompile(`^\d{15,21}$`)
)

// TextCommand is a chat message split into a lower-cased command word and arguments.
type TextCommand struct {
	Name string
	Args []string
	Raw  string
}

// ParseTextCommand splits content on whitespace. It returns false for empty content.
func ParseTextCommand(content string) (TextCommand, bool) {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return TextCommand{}, false
	}
	return TextCommand{
		Name: strings.ToLower(fields[0]),
		Args: fields[1:],
		Raw:  strings.TrimSpace(content),
	}, true
}

// Rest returns the arguments from index on joined by single spaces.
func (c TextCommand) Rest(from int) string {
	if from >= len(c.Args) {
		return ""
	}
	return strings.Join(c.Args[from:], " ")
}

// ParseUserID accepts a user mention or a raw id.
func ParseUserID(s string) (string, bool) {
	return parseID(s, userMentionRe)
}

// ParseChannelID accepts a channel mention or a raw id.
func ParseChannelID(s string) (string, bool) {
	return parseID(s, channelMentionRe)
}

func parseID(s string, mention *regexp.Regexp) (string, bool) {
	s = strings.TrimSpace(s)
	if m := mention.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	if snowflakeRe.MatchString(s) {
		return s, true
	}
	return "", false
}
