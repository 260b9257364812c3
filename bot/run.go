package bot

import (
	"context"
	"fmt"

	"community-bot/utils"

	"go.uber.org/zap"
)

// Run opens the gateway connection, registers slash commands, starts the scheduler
// and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	defer b.Close()

	if b.GetConfig().DisableCommandRegister {
		b.logger.Info("Command registration is disabled")
	} else if err := b.RefreshCommands(); err != nil {
		b.logger.Error("Failed to register commands", zap.Error(err))
	}

	b.scheduler.Start()

	b.logger.Info("Bot is now running. Press CTRL-C to exit.")
	if err := utils.LogInfo(b.Session, b.LogChannelID(), "System", "启动", "Bot has started successfully."); err != nil {
		b.logger.Warn("Failed to send startup log", zap.Error(err))
	}

	<-ctx.Done()
	return nil
}
