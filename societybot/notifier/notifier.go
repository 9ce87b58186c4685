// Package notifier delivers fill notifications to players over Discord DMs.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/societybot/societybot/logger"
)

const embedColor = 0x2b2d31

// DMNotifier satisfies trade.Notifier. The client is set once the gateway
// session exists; notifications before that are dropped with an error.
type DMNotifier struct {
	mu     sync.RWMutex
	client bot.Client
}

func New() *DMNotifier {
	return &DMNotifier{}
}

func (n *DMNotifier) SetClient(client bot.Client) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.client = client
}

func (n *DMNotifier) Notify(ctx context.Context, userID int64, message string) error {
	n.mu.RLock()
	client := n.client
	n.mu.RUnlock()
	if client == nil {
		return fmt.Errorf("notifier has no client yet")
	}

	dmChannel, err := client.Rest().CreateDMChannel(snowflake.ID(userID))
	if err != nil {
		logger.LogError("Failed to create DM channel", err, slog.Int64("user_id", userID))
		return err
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("📦 Market Update").
		SetDescription(message).
		SetColor(embedColor).
		Build()

	if _, err = client.Rest().CreateMessage(dmChannel.ID(), discord.MessageCreate{
		Embeds: []discord.Embed{embed},
	}); err != nil {
		logger.LogError("Failed to send DM", err, slog.Int64("user_id", userID))
		return err
	}
	return nil
}
