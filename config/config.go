package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata"

	"community-bot/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingToken = errors.New("BOT_TOKEN is not set")

// Load 读取 .env、可选的 config.yaml/config.toml 以及环境变量，环境变量优先。
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	v := New()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./data")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return Parse(v)
}

// New returns a viper instance with every default set and environment binding enabled.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("bot_token", "")
	v.SetDefault("bot_owner_id", "")
	v.SetDefault("data_dir", "data")
	v.SetDefault("storage_backend", "json")
	v.SetDefault("sqlite_path", "data/bot.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("command_guild_id", "")
	v.SetDefault("disable_command_register", false)
	v.SetDefault("transcript_scan_interval", "30m")
	v.SetDefault("stats_week_start", "sunday")
	v.SetDefault("stats_retention_days", 0)
	v.SetDefault("weekly_schedule_enabled", false)
	v.SetDefault("weekly_weekday", "sunday")
	v.SetDefault("weekly_hour", 12)
	v.SetDefault("weekly_timezone", "Etc/GMT-2")
	v.SetDefault("weekly_auto_reset", true)
	v.SetDefault("payout_channel_id", "")
	v.SetDefault("payout_command", "!add-money")
	v.AutomaticEnv()
	return v
}

// Parse validates the values held by v and converts them into a Config.
func Parse(v *viper.Viper) (*model.Config, error) {
	token := strings.TrimSpace(v.GetString("bot_token"))
	if token == "" {
		return nil, ErrMissingToken
	}

	scanInterval, err := time.ParseDuration(v.GetString("transcript_scan_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSCRIPT_SCAN_INTERVAL: %w", err)
	}
	if scanInterval < 0 {
		return nil, fmt.Errorf("invalid TRANSCRIPT_SCAN_INTERVAL: %s is negative", scanInterval)
	}

	weekStart, err := ParseWeekday(v.GetString("stats_week_start"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_WEEK_START: %w", err)
	}
	weeklyDay, err := ParseWeekday(v.GetString("weekly_weekday"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEEKLY_WEEKDAY: %w", err)
	}
	hour := v.GetInt("weekly_hour")
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("invalid WEEKLY_HOUR: %d is outside 0-23", hour)
	}
	loc, err := time.LoadLocation(v.GetString("weekly_timezone"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEEKLY_TIMEZONE: %w", err)
	}

	retention := v.GetInt("stats_retention_days")
	if retention < 0 {
		retention = 0
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("storage_backend")))
	switch backend {
	case "", "json", "file", "sqlite", "sqlite3":
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND: %q", backend)
	}

	return &model.Config{
		BotToken:               token,
		BotOwnerID:             v.GetString("bot_owner_id"),
		DataDir:                v.GetString("data_dir"),
		StorageBackend:         backend,
		SQLitePath:             v.GetString("sqlite_path"),
		LogLevel:               v.GetString("log_level"),
		CommandGuildID:         v.GetString("command_guild_id"),
		DisableCommandRegister: v.GetBool("disable_command_register"),
		TranscriptScanInterval: scanInterval,
		StatsWeekStart:         weekStart,
		StatsRetentionDays:     retention,
		Weekly: model.WeeklyScheduleConfig{
			Enabled:   v.GetBool("weekly_schedule_enabled"),
			Weekday:   weeklyDay,
			Hour:      hour,
			Location:  loc,
			AutoReset: v.GetBool("weekly_auto_reset"),
		},
		Payout: model.PayoutConfig{
			ChannelID: v.GetString("payout_channel_id"),
			Command:   v.GetString("payout_command"),
		},
	}, nil
}

// ParseWeekday accepts English day names or their three letter abbreviations.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}
