// Package customcmd stores per-guild trigger words that the bot answers with a fixed reply.
package customcmd

import (
	"errors"
	"sort"
	"strings"

	"community-bot/model"
	"community-bot/utils/store"
)

var (
	ErrEmptyTrigger  = errors.New("trigger must not be empty")
	ErrEmptyResponse = errors.New("response must not be empty")
	ErrNotFound      = errors.New("custom command not found")
	ErrReserved      = errors.New("trigger is a built-in command")
)

// Set 管理每个服务器的自定义文本命令。
type Set struct {
	store    *store.Store
	reserved map[string]struct{}
}

// New returns a Set that refuses to shadow any of the reserved built-in names.
func New(st *store.Store, reserved ...string) *Set {
	r := make(map[string]struct{}, len(reserved))
	for _, name := range reserved {
		r[strings.ToLower(name)] = struct{}{}
	}
	return &Set{store: st, reserved: r}
}

func normalize(trigger string) string {
	return strings.ToLower(strings.TrimSpace(trigger))
}

// Add stores or replaces the response for trigger in guildID.
func (s *Set) Add(guildID, trigger, response string) error {
	trigger = normalize(trigger)
	response = strings.TrimSpace(response)
	switch {
	case trigger == "":
		return ErrEmptyTrigger
	case response == "":
		return ErrEmptyResponse
	}
	if _, ok := s.reserved[trigger]; ok {
		return ErrReserved
	}

	return s.store.Update(func(state *model.State) error {
		cmds := state.CustomCommands[guildID]
		if cmds == nil {
			cmds = make(map[string]string)
			state.CustomCommands[guildID] = cmds
		}
		cmds[trigger] = response
		return nil
	}, store.CustomCommands)
}

// Remove deletes trigger from guildID.
func (s *Set) Remove(guildID, trigger string) error {
	trigger = normalize(trigger)
	if trigger == "" {
		return ErrEmptyTrigger
	}
	return s.store.Update(func(state *model.State) error {
		if _, ok := state.CustomCommands[guildID][trigger]; !ok {
			return ErrNotFound
		}
		delete(state.CustomCommands[guildID], trigger)
		return nil
	}, store.CustomCommands)
}

// List returns the triggers of guildID in alphabetical order.
func (s *Set) List(guildID string) []string {
	var out []string
	s.store.View(func(state *model.State) {
		for trigger := range state.CustomCommands[guildID] {
			out = append(out, trigger)
		}
	})
	sort.Strings(out)
	return out
}

// Lookup returns the response stored for trigger.
func (s *Set) Lookup(guildID, trigger string) (string, bool) {
	var (
		resp string
		ok   bool
	)
	s.store.View(func(state *model.State) {
		resp, ok = state.CustomCommands[guildID][normalize(trigger)]
	})
	return resp, ok
}
