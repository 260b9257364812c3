package moderation

import (
	"fmt"
	"sort"
	"time"

	"community-bot/model"
	"community-bot/utils/store"

	"go.uber.org/zap"
)

// Staff action kinds written to the audit log.
const (
	ActionWarn          = "warn"
	ActionKick          = "kick"
	ActionBan           = "ban"
	ActionMute          = "mute"
	ActionUnmute        = "unmute"
	ActionPurge         = "purge"
	ActionClearWarnings = "clear_warnings"
)

// Ledger 负责警告与管理操作日志的记录。警告可以整体清空，操作日志只追加不修改。
type Ledger struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewLedger(st *store.Store, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{store: st, logger: logger.Named("moderation"), now: time.Now}
}

// WithClock replaces time.Now and returns the ledger.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Warn appends a warning for targetID and returns the target's new warning count.
// The warning is also written to the moderator's audit log.
func (l *Ledger) Warn(targetID, reason, moderatorID string) (int, error) {
	if targetID == "" {
		return 0, ErrNoTarget
	}
	now := l.now()
	var total int

	err := l.store.Update(func(state *model.State) error {
		state.Warnings[targetID] = append(state.Warnings[targetID], model.WarningRecord{
			Reason:    reason,
			Moderator: moderatorID,
			Timestamp: now,
		})
		total = len(state.Warnings[targetID])
		appendAction(state, moderatorID, ActionWarn, targetID, reason, now)
		return nil
	}, store.Warnings, store.StaffActions)

	return total, err
}

// ListWarnings returns the target's warnings oldest first.
func (l *Ledger) ListWarnings(targetID string) []model.WarningRecord {
	var out []model.WarningRecord
	l.store.View(func(state *model.State) {
		out = append(out, state.Warnings[targetID]...)
	})
	return out
}

// ClearWarnings empties the target's warning list and returns how many were removed.
func (l *Ledger) ClearWarnings(targetID, moderatorID string) (int, error) {
	if targetID == "" {
		return 0, ErrNoTarget
	}
	now := l.now()
	var cleared int

	err := l.store.Update(func(state *model.State) error {
		cleared = len(state.Warnings[targetID])
		state.Warnings[targetID] = []model.WarningRecord{}
		appendAction(state, moderatorID, ActionClearWarnings, targetID, fmt.Sprintf("Cleared %d warnings", cleared), now)
		return nil
	}, store.Warnings, store.StaffActions)

	return cleared, err
}

// RecordStaffAction appends one entry to staffID's audit log.
func (l *Ledger) RecordStaffAction(staffID, action, targetID, reason string) error {
	now := l.now()
	return l.store.Update(func(state *model.State) error {
		appendAction(state, staffID, action, targetID, reason, now)
		return nil
	}, store.StaffActions)
}

// StaffActions returns staffID's audit log oldest first.
func (l *Ledger) StaffActions(staffID string) []model.StaffActionRecord {
	var out []model.StaffActionRecord
	l.store.View(func(state *model.State) {
		out = append(out, state.StaffActions[staffID]...)
	})
	return out
}

// ActionCount is the number of audit entries of one kind.
type ActionCount struct {
	Action string
	Count  int
}

// ActionBreakdown counts staffID's audit entries per action kind, most frequent first.
func (l *Ledger) ActionBreakdown(staffID string) []ActionCount {
	counts := make(map[string]int)
	for _, rec := range l.StaffActions(staffID) {
		counts[rec.Action]++
	}

	out := make([]ActionCount, 0, len(counts))
	for action, n := range counts {
		out = append(out, ActionCount{Action: action, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Action < out[j].Action
	})
	return out
}

func appendAction(state *model.State, staffID, action, targetID, reason string, at time.Time) {
	state.StaffActions[staffID] = append(state.StaffActions[staffID], model.StaffActionRecord{
		Action:    action,
		TargetID:  targetID,
		Reason:    reason,
		Timestamp: at,
	})
}
