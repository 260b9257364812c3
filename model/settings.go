package model

import (
	"slices"
	"time"
)

const (
	DefaultXPPerMessage = 15
	DefaultXPCooldown   = 60 * time.Second
)

// Settings 是持久化的全局配置文档，由 setup/管理命令和工单激励模块修改。
type Settings struct {
	LogChannelID      string `json:"logChannelId"`
	StaffRoleID       string `json:"staffRoleId"`
	MutedRoleID       string `json:"mutedRoleId"`
	LevelUpChannelID  string `json:"levelUpChannelId"`
	CountingChannelID string `json:"countingChannelId"`
	XPPerMessage      Count  `json:"xpPerMessage"`
	XPCooldown        Count  `json:"xpCooldown"` // milliseconds

	TranscriptChannels []string                        `json:"transcriptChannels"`
	StaffRoles         []string                        `json:"staffRoles"`
	StaffMultipliers   map[string]float64              `json:"staffMultipliers"`
	TicketActivity     map[string]*StaffActivityRecord `json:"ticketActivity"`
	StaffPayments      map[string]StaffPayment         `json:"staffPayments"`
	// StaffOrder 记录每位员工首次被记入活动的顺序，排名并列时按此顺序。
	StaffOrder []string `json:"staffOrder"`
}

// NewSettings returns the settings a fresh installation starts with.
func NewSettings() *Settings {
	s := &Settings{}
	s.Normalize()
	return s
}

// Normalize fills defaults, allocates maps and drops duplicate ids from the id lists.
func (s *Settings) Normalize() {
	if s.XPPerMessage <= 0 {
		s.XPPerMessage = DefaultXPPerMessage
	}
	if s.XPCooldown <= 0 {
		s.XPCooldown = Count(DefaultXPCooldown / time.Millisecond)
	}
	s.TranscriptChannels = dedupe(s.TranscriptChannels)
	s.StaffRoles = dedupe(s.StaffRoles)
	if s.StaffMultipliers == nil {
		s.StaffMultipliers = make(map[string]float64)
	}
	if s.TicketActivity == nil {
		s.TicketActivity = make(map[string]*StaffActivityRecord)
	}
	for id, rec := range s.TicketActivity {
		if rec == nil {
			s.TicketActivity[id] = &StaffActivityRecord{Tickets: []string{}, Weekly: []string{}}
			continue
		}
		rec.Tickets = dedupe(rec.Tickets)
		rec.Weekly = dedupe(rec.Weekly)
	}
	if s.StaffPayments == nil {
		s.StaffPayments = make(map[string]StaffPayment)
	}
	s.StaffOrder = s.OrderedStaff()
}

// OrderedStaff returns the ids of TicketActivity in the order they were first
// credited. Ids without a record are skipped; records missing from StaffOrder (older
// files) go last, by id.
func (s *Settings) OrderedStaff() []string {
	order := make([]string, 0, len(s.TicketActivity))
	for _, id := range dedupe(s.StaffOrder) {
		if _, ok := s.TicketActivity[id]; ok {
			order = append(order, id)
		}
	}
	var missing []string
	for id := range s.TicketActivity {
		if !slices.Contains(order, id) {
			missing = append(missing, id)
		}
	}
	slices.Sort(missing)
	return append(order, missing...)
}

// Cooldown returns the experience award cooldown as a duration.
func (s *Settings) Cooldown() time.Duration {
	return time.Duration(s.XPCooldown) * time.Millisecond
}

// CountsChannel reports whether messages in channelID earn experience and statistics.
// With no counting channel configured every channel counts.
func (s *Settings) CountsChannel(channelID string) bool {
	return s.CountingChannelID == "" || s.CountingChannelID == channelID
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// SetupUpdate carries the channels and roles changed by a setup command. Nil fields
// are left unchanged; an empty string clears the setting.
type SetupUpdate struct {
	LogChannelID      *string
	StaffRoleID       *string
	MutedRoleID       *string
	LevelUpChannelID  *string
	CountingChannelID *string
}

// Apply copies the non-nil fields of u and returns how many were set.
func (s *Settings) Apply(u SetupUpdate) int {
	changed := 0
	for _, f := range []struct {
		src *string
		dst *string
	}{
		{u.LogChannelID, &s.LogChannelID},
		{u.StaffRoleID, &s.StaffRoleID},
		{u.MutedRoleID, &s.MutedRoleID},
		{u.LevelUpChannelID, &s.LevelUpChannelID},
		{u.CountingChannelID, &s.CountingChannelID},
	} {
		if f.src != nil {
			*f.dst = *f.src
			changed++
		}
	}
	return changed
}
