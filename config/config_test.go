package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Parallel()
	v := New()
	v.Set("bot_token", "token")

	cfg, err := Parse(v)
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.BotToken)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "json", cfg.StorageBackend)
	assert.Equal(t, 30*time.Minute, cfg.TranscriptScanInterval)
	assert.Equal(t, time.Sunday, cfg.StatsWeekStart)
	assert.Zero(t, cfg.StatsRetentionDays)
	assert.False(t, cfg.Weekly.Enabled)
	assert.Equal(t, 12, cfg.Weekly.Hour)
	assert.True(t, cfg.Weekly.AutoReset)
	assert.Equal(t, "Etc/GMT-2", cfg.Weekly.Location.String())
	assert.Equal(t, "!add-money", cfg.Payout.Command)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{name: "missing token", key: "bot_token", val: ""},
		{name: "bad interval", key: "transcript_scan_interval", val: "often"},
		{name: "bad weekday", key: "weekly_weekday", val: "someday"},
		{name: "bad hour", key: "weekly_hour", val: 24},
		{name: "bad zone", key: "weekly_timezone", val: "Mars/Olympus"},
		{name: "bad backend", key: "storage_backend", val: "redis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := New()
			v.Set("bot_token", "token")
			v.Set(tt.key, tt.val)
			_, err := Parse(v)
			require.Error(t, err)
		})
	}

	v := New()
	v.Set("bot_token", "  ")
	_, err := Parse(v)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestParseOverrides(t *testing.T) {
	t.Parallel()
	v := New()
	v.Set("bot_token", "token")
	v.Set("storage_backend", "SQLite")
	v.Set("stats_week_start", "mon")
	v.Set("stats_retention_days", -3)
	v.Set("weekly_schedule_enabled", true)
	v.Set("weekly_weekday", "Friday")

	cfg, err := Parse(v)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.StorageBackend)
	assert.Equal(t, time.Monday, cfg.StatsWeekStart)
	assert.Zero(t, cfg.StatsRetentionDays)
	assert.True(t, cfg.Weekly.Enabled)
	assert.Equal(t, time.Friday, cfg.Weekly.Weekday)
}

func TestParseWeekday(t *testing.T) {
	t.Parallel()
	d, err := ParseWeekday(" Sat ")
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, d)

	_, err = ParseWeekday("")
	assert.Error(t, err)
}
