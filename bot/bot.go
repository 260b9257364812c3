package bot

import (
	"fmt"
	"sync"
	"sync/atomic"

	"community-bot/commands"
	"community-bot/incentive"
	"community-bot/leveling"
	"community-bot/model"
	"community-bot/moderation"
	"community-bot/msgstats"
	"community-bot/utils/store"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	Commands           *commands.Registry
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	Store     *store.Store
	Leveling  *leveling.Engine
	Stats     *msgstats.Tracker
	Ledger    *moderation.Ledger
	Moderator *moderation.Moderator
	Incentive *incentive.Engine

	config    atomic.Value // *model.Config
	logger    *zap.Logger
	scheduler *Scheduler
	persist   []store.Document // saved by Close
	closeOnce sync.Once
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetLogger() *zap.Logger {
	return b.logger
}

// LogChannelID returns the log channel configured through /setup.
func (b *Bot) LogChannelID() string {
	var id string
	b.Store.View(func(state *model.State) {
		id = state.Settings.LogChannelID
	})
	return id
}

// New wires the engines around st and creates a session. The session is not opened.
func New(cfg *model.Config, st *store.Store, logger *zap.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent
	dg.StateEnabled = false

	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Bot{
		Session:   dg,
		Commands:  commands.Default(),
		Store:     st,
		Leveling:  leveling.NewEngine(st, logger),
		Stats:     msgstats.NewTracker(st, logger, cfg.StatsWeekStart),
		Ledger:    moderation.NewLedger(st, logger),
		Incentive: incentive.NewEngine(st, logger),
		logger:    logger,
		persist:   store.AllDocuments,
	}
	b.Moderator = moderation.NewModerator(b.Ledger, NewEnforcer(dg), logger)
	b.config.Store(cfg)
	b.scheduler = NewScheduler(b)
	return b, nil
}

// PersistOnly limits the documents Close writes back. One-shot jobs use it so that
// closing never rewrites documents they did not change.
func (b *Bot) PersistOnly(docs ...store.Document) {
	b.persist = docs
}

// Close stops the scheduler, saves the store and closes the session.
func (b *Bot) Close() {
	b.closeOnce.Do(func() {
		b.logger.Info("Gracefully shutting down")
		b.scheduler.Stop()
		if err := b.Store.Save(b.persist...); err != nil {
			b.logger.Error("Failed to save store", zap.Error(err))
		}
		if err := b.Session.Close(); err != nil {
			b.logger.Warn("Failed to close session", zap.Error(err))
		}
	})
}

// RefreshCommands overwrites the registered slash commands with the registry contents,
// in the configured guild or globally.
func (b *Bot) RefreshCommands() error {
	guildID := b.GetConfig().CommandGuildID
	cmds := b.Commands.Commands()
	b.logger.Info("Registering commands", zap.Int("count", len(cmds)), zap.String("guildID", guildID))

	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, guildID, cmds)
	if err != nil {
		return fmt.Errorf("cannot update commands for guild '%s': %w", guildID, err)
	}
	b.RegisteredCommands = registered
	return nil
}
