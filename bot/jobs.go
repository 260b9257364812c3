package bot

import (
	"context"
	"fmt"
	"strings"

	"community-bot/incentive"
	"community-bot/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// directiveMessageLimit keeps each payout message below Discord's 2000 character cap.
const directiveMessageLimit = 1900

// ScanTranscripts runs one transcript scan against the live API.
func (b *Bot) ScanTranscripts(ctx context.Context) (incentive.ScanResult, error) {
	result, err := b.Incentive.ScanTranscripts(ctx, NewTranscriptFetcher(b.Session))
	if err != nil {
		return result, fmt.Errorf("scan transcripts: %w", err)
	}
	return result, nil
}

// RunWeeklyPayout computes the weekly payments, posts the ranking and payout
// directives to the payout channel and optionally resets the weekly counters.
func (b *Bot) RunWeeklyPayout(ctx context.Context, reset bool) error {
	cfg := b.GetConfig()
	ranking, err := b.Incentive.RankByPayment()
	if err != nil {
		return fmt.Errorf("compute payments: %w", err)
	}
	directives, err := b.Incentive.GeneratePayoutDirectives(cfg.Payout.Command)
	if err != nil {
		return fmt.Errorf("generate directives: %w", err)
	}

	channelID := cfg.Payout.ChannelID
	if channelID == "" {
		channelID = b.LogChannelID()
	}
	if channelID != "" {
		if _, err := b.Session.ChannelMessageSendEmbed(channelID, PaymentEmbed(ranking, 10), discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("post weekly ranking: %w", err)
		}
		for _, chunk := range ChunkLines(directives, directiveMessageLimit) {
			if _, err := b.Session.ChannelMessageSend(channelID, chunk, discordgo.WithContext(ctx)); err != nil {
				return fmt.Errorf("post payout directives: %w", err)
			}
		}
	} else {
		b.logger.Warn("No payout or log channel configured, weekly payout not posted")
	}

	b.logger.Info("Weekly payout computed", zap.Int("staff", len(ranking)), zap.Bool("reset", reset))
	if reset {
		if err := b.Incentive.ResetWeekly(); err != nil {
			return fmt.Errorf("reset weekly counters: %w", err)
		}
	}
	return nil
}

// PaymentEmbed renders the top entries of a payment ranking.
func PaymentEmbed(ranking []incentive.PaymentRanking, limit int) *discordgo.MessageEmbed {
	var sb strings.Builder
	for i, r := range ranking {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(&sb, "**%d.** <@%s> - %d points\n", i+1, r.StaffID, r.Points)
	}
	if sb.Len() == 0 {
		sb.WriteString("No staff activity recorded this week.")
	}
	return utils.SimpleEmbed("💰 Weekly Staff Points", sb.String(), utils.ColorGold)
}

// ChunkLines joins lines into messages no longer than limit characters.
func ChunkLines(lines []string, limit int) []string {
	var (
		chunks  []string
		current strings.Builder
	)
	for _, line := range lines {
		if current.Len() > 0 && current.Len()+len(line)+1 > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
