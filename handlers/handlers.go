package handlers

import (
	"context"
	"time"

	"community-bot/bot"
	"community-bot/customcmd"
	"community-bot/leveling"
	"community-bot/model"
	"community-bot/utils"
	"community-bot/utils/store"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// requestTimeout bounds the REST calls made while handling one event.
const requestTimeout = 10 * time.Second

// Notifier delivers embeds to a channel.
type Notifier interface {
	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error
}

// Handler routes gateway events to the engines held by the bot.
type Handler struct {
	bot      *bot.Bot
	custom   *customcmd.Set
	notifier Notifier
	logger   *zap.Logger
}

func Register(b *bot.Bot) *Handler {
	h := &Handler{
		bot:      b,
		custom:   customcmd.New(b.Store, builtinTextCommands()...),
		notifier: bot.NewNotifier(b.Session),
		logger:   b.GetLogger().Named("handlers"),
	}
	b.CommandHandlers = h.commandHandlers()
	h.addHandlers()
	return h
}

func (h *Handler) addHandlers() {
	h.bot.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		h.logger.Info("Logged in", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))
	})
	h.bot.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		name := i.ApplicationCommandData().Name
		if handler, ok := h.bot.CommandHandlers[name]; ok {
			handler(s, i)
		}
	})
	h.bot.Session.AddHandler(h.onMessage)
}

// modLog posts a moderation embed to the configured log channel, if any.
func (h *Handler) modLog(ctx context.Context, embed *discordgo.MessageEmbed) {
	channelID := h.bot.LogChannelID()
	if channelID == "" {
		return
	}
	if err := h.notifier.SendEmbed(ctx, channelID, embed); err != nil {
		h.logger.Warn("Failed to send moderation log", zap.String("channel_id", channelID), zap.Error(err))
	}
}

// systemLog mirrors an event to the log channel in the log embed format.
func (h *Handler) systemLog(ctx context.Context, level utils.LogLevel, module, operation, extra string) {
	channelID := h.bot.LogChannelID()
	if channelID == "" {
		return
	}
	if err := h.notifier.SendEmbed(ctx, channelID, utils.LogEmbed(level, module, operation, extra)); err != nil {
		h.logger.Warn("Failed to send log", zap.String("module", module), zap.Error(err))
	}
}

// applySetup stores the given channel and role changes and returns how many were set.
func (h *Handler) applySetup(u model.SetupUpdate) (int, error) {
	changed := 0
	err := h.bot.Store.Update(func(state *model.State) error {
		changed = state.Settings.Apply(u)
		if changed == 0 {
			return store.ErrSkipSave
		}
		return nil
	}, store.Settings)
	return changed, err
}

func (h *Handler) settings() model.Settings {
	var s model.Settings
	h.bot.Store.View(func(state *model.State) {
		s = *state.Settings
	})
	return s
}

// deliverLevelUp announces ev in its target channel and falls back to the channel
// the message was sent in.
func deliverLevelUp(ctx context.Context, n Notifier, ev *leveling.LevelUpEvent) error {
	embed := levelUpEmbed(ev)
	err := n.SendEmbed(ctx, ev.ChannelID, embed)
	if err == nil || ev.FallbackChannelID == "" || ev.FallbackChannelID == ev.ChannelID {
		return err
	}
	return n.SendEmbed(ctx, ev.FallbackChannelID, embed)
}
