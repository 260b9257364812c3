package bot

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
)

var ErrNoChannel = errors.New("no channel configured")

// Notifier posts embeds to channels through the session.
type Notifier struct {
	session *discordgo.Session
}

func NewNotifier(s *discordgo.Session) *Notifier {
	return &Notifier{session: s}
}

func (n *Notifier) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	if channelID == "" {
		return ErrNoChannel
	}
	_, err := n.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
	return err
}
