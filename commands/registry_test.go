package commands

import (
	"testing"

	"community-bot/commands/defs"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDeduplicates(t *testing.T) {
	t.Parallel()
	r := NewRegistry()

	assert.Equal(t, 2, r.Add(defs.SetTranscript, defs.SetStaff))
	dup := &discordgo.ApplicationCommand{Name: "settranscript", Description: "second copy"}
	assert.Zero(t, r.Add(dup, defs.SetStaff, nil, &discordgo.ApplicationCommand{}))
	assert.Equal(t, 2, r.Len())

	got, ok := r.Get("settranscript")
	require.True(t, ok)
	assert.Same(t, defs.SetTranscript, got)

	cmds := r.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, "settranscript", cmds[0].Name)
	assert.Equal(t, "setstaff", cmds[1].Name)
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()
	r := Default()

	want := []string{
		"ban", "clearwarnings", "kick", "leaderboard", "level", "messagestats", "mute",
		"paystaff", "purge", "removestaff", "removetranscript", "resetticket",
		"scantranscripts", "settranscript", "setstaff", "setup", "staffmultiplier",
		"staffpay", "staffstats", "stafftop", "systeminfo", "unmute", "warn",
		"warnings", "weeklytop",
	}
	assert.Equal(t, want, r.Names())

	for _, cmd := range r.Commands() {
		assert.NotEmpty(t, cmd.Description, cmd.Name)
		assert.LessOrEqual(t, len(cmd.Description), 100, cmd.Name)
	}
}
