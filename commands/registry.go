package commands

import (
	"sort"
	"sync"

	"community-bot/commands/defs"

	"github.com/bwmarrin/discordgo"
)

// Registry holds slash command definitions keyed by name. Adding a name that is
// already present keeps the first definition.
type Registry struct {
	mu    sync.RWMutex
	order []string
	cmds  map[string]*discordgo.ApplicationCommand
}

func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]*discordgo.ApplicationCommand)}
}

// Add registers cmds and returns how many were new.
func (r *Registry) Add(cmds ...*discordgo.ApplicationCommand) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, cmd := range cmds {
		if cmd == nil || cmd.Name == "" {
			continue
		}
		if _, ok := r.cmds[cmd.Name]; ok {
			continue
		}
		r.cmds[cmd.Name] = cmd
		r.order = append(r.order, cmd.Name)
		added++
	}
	return added
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (*discordgo.ApplicationCommand, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// Commands returns the definitions in registration order.
func (r *Registry) Commands() []*discordgo.ApplicationCommand {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*discordgo.ApplicationCommand, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.cmds[name])
	}
	return out
}

// Names returns the registered names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Default returns a registry holding every slash command the bot serves.
func Default() *Registry {
	r := NewRegistry()
	r.Add(
		defs.Warn,
		defs.Kick,
		defs.Ban,
		defs.Mute,
		defs.Unmute,
		defs.Warnings,
		defs.ClearWarnings,
		defs.StaffStats,
		defs.Purge,
		defs.Setup,
		defs.Level,
		defs.Leaderboard,
		defs.MessageStats,
		defs.SetTranscript,
		defs.RemoveTranscript,
		defs.SetStaff,
		defs.RemoveStaff,
		defs.StaffMultiplier,
		defs.ResetTicket,
		defs.WeeklyTop,
		defs.StaffTop,
		defs.StaffPay,
		defs.PayStaff,
		defs.ScanTranscripts,
		defs.SystemInfo,
	)
	return r
}
