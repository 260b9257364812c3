package moderation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Enforcer performs moderation actions on the chat platform.
type Enforcer interface {
	Kick(ctx context.Context, guildID, userID, reason string) error
	Ban(ctx context.Context, guildID, userID, reason string, deleteDays int) error
	Timeout(ctx context.Context, guildID, userID string, until time.Time) error
	RemoveTimeout(ctx context.Context, guildID, userID string) error
	PurgeMessages(ctx context.Context, channelID string, amount int) (int, error)
}

const (
	MaxTimeout       = 28 * 24 * time.Hour
	MaxPurge         = 100
	MaxBanDeleteDays = 7
)

// Moderator 先调用平台执行操作，成功后再写入操作日志。
type Moderator struct {
	ledger   *Ledger
	enforcer Enforcer
	logger   *zap.Logger
}

func NewModerator(ledger *Ledger, enforcer Enforcer, logger *zap.Logger) *Moderator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Moderator{ledger: ledger, enforcer: enforcer, logger: logger.Named("moderator")}
}

func (m *Moderator) Kick(ctx context.Context, guildID, targetID, reason, staffID string) error {
	if targetID == "" {
		return ErrNoTarget
	}
	if err := m.enforcer.Kick(ctx, guildID, targetID, reason); err != nil {
		return m.failed(ActionKick, targetID, err)
	}
	return m.record(staffID, ActionKick, targetID, reason)
}

func (m *Moderator) Ban(ctx context.Context, guildID, targetID, reason, staffID string, deleteDays int) error {
	if targetID == "" {
		return ErrNoTarget
	}
	deleteDays = clamp(deleteDays, 0, MaxBanDeleteDays)
	if err := m.enforcer.Ban(ctx, guildID, targetID, reason, deleteDays); err != nil {
		return m.failed(ActionBan, targetID, err)
	}
	return m.record(staffID, ActionBan, targetID, reason)
}

// Mute times the target out for duration, capped at the platform maximum.
func (m *Moderator) Mute(ctx context.Context, guildID, targetID, reason, staffID string, duration time.Duration) error {
	if targetID == "" {
		return ErrNoTarget
	}
	if duration <= 0 {
		return fmt.Errorf("%w: mute duration must be positive", ErrEnforcementFailed)
	}
	if duration > MaxTimeout {
		duration = MaxTimeout
	}
	until := m.ledger.now().Add(duration)
	if err := m.enforcer.Timeout(ctx, guildID, targetID, until); err != nil {
		return m.failed(ActionMute, targetID, err)
	}
	return m.record(staffID, ActionMute, targetID, fmt.Sprintf("%s (%s)", reason, duration))
}

func (m *Moderator) Unmute(ctx context.Context, guildID, targetID, staffID string) error {
	if targetID == "" {
		return ErrNoTarget
	}
	if err := m.enforcer.RemoveTimeout(ctx, guildID, targetID); err != nil {
		return m.failed(ActionUnmute, targetID, err)
	}
	return m.record(staffID, ActionUnmute, targetID, "Timeout removed")
}

// Purge deletes up to amount recent messages in channelID and returns how many were removed.
func (m *Moderator) Purge(ctx context.Context, channelID, staffID string, amount int) (int, error) {
	amount = clamp(amount, 1, MaxPurge)
	deleted, err := m.enforcer.PurgeMessages(ctx, channelID, amount)
	if err != nil {
		return 0, m.failed(ActionPurge, channelID, err)
	}
	return deleted, m.record(staffID, ActionPurge, channelID, fmt.Sprintf("Deleted %d messages", deleted))
}

func (m *Moderator) record(staffID, action, targetID, reason string) error {
	if err := m.ledger.RecordStaffAction(staffID, action, targetID, reason); err != nil {
		return fmt.Errorf("record %s: %w", action, err)
	}
	return nil
}

func (m *Moderator) failed(action, targetID string, err error) error {
	m.logger.Warn("Moderation action rejected",
		zap.String("action", action),
		zap.String("target", targetID),
		zap.Error(err))
	return fmt.Errorf("%w: %s %s: %v", ErrEnforcementFailed, action, targetID, err)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
