// Package cli implements the community-bot command line.
package cli

import (
	"fmt"

	"community-bot/bot"
	"community-bot/config"
	"community-bot/handlers"
	"community-bot/model"
	"community-bot/utils"
	"community-bot/utils/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var logLevel string

// RootCmd runs the bot when no subcommand is given.
var RootCmd = &cobra.Command{
	Use:          "community-bot",
	Short:        "Discord community bot",
	Long:         "Leveling, message statistics, moderation and staff ticket incentives for a Discord server.",
	SilenceUsage: true,
	RunE:         runBot,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
}

// app holds what every subcommand needs.
type app struct {
	cfg    *model.Config
	logger *zap.Logger
	store  *store.Store
}

func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg, logger)
	if st == nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err != nil {
		logger.Warn("Some documents failed to load and start empty", zap.Error(err))
	}
	return &app{cfg: cfg, logger: logger, store: st}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Failed to close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// requireStopped fails when a running bot owns the data directory. One-shot jobs
// work on a snapshot and would race the live bot's writes.
func (a *app) requireStopped() error {
	return store.CheckUnlocked(a.cfg.DataDir)
}

// connect opens a gateway session without event handlers for one-shot jobs.
// Closing the returned bot saves the config document only.
func (a *app) connect() (*bot.Bot, error) {
	if err := a.requireStopped(); err != nil {
		return nil, err
	}
	b, err := bot.New(a.cfg, a.store, a.logger)
	if err != nil {
		return nil, err
	}
	b.PersistOnly(store.Settings)
	if err := b.Session.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}
	return b, nil
}

func runBot(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	lock, err := store.AcquireLock(a.cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			a.logger.Warn("Failed to release data directory lock", zap.Error(err))
		}
	}()

	b, err := bot.New(a.cfg, a.store, a.logger)
	if err != nil {
		return err
	}
	handlers.Register(b)
	return b.Run(cmd.Context())
}
