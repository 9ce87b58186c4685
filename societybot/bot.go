package societybot

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"

	"github.com/ellavondegurechaff/societybot/societybot/catalog"
	"github.com/ellavondegurechaff/societybot/societybot/database"
	"github.com/ellavondegurechaff/societybot/societybot/database/repositories"
	"github.com/ellavondegurechaff/societybot/societybot/economy/ledger"
	"github.com/ellavondegurechaff/societybot/societybot/economy/npcmarket"
	"github.com/ellavondegurechaff/societybot/societybot/economy/orderbook"
	"github.com/ellavondegurechaff/societybot/societybot/economy/production"
	"github.com/ellavondegurechaff/societybot/societybot/economy/trade"
	"github.com/ellavondegurechaff/societybot/societybot/notifier"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string
	DB        *database.DB

	PlayerRepository     repositories.PlayerRepository
	CompanyRepository    repositories.CompanyRepository
	ItemRepository       repositories.ItemRepository
	InventoryRepository  repositories.InventoryRepository
	MarketRepository     repositories.MarketRepository
	OrderRepository      repositories.OrderRepository
	GovernmentRepository repositories.GovernmentRepository

	Catalog    *catalog.Catalog
	Ledger     *ledger.Ledger
	NPCMarket  *npcmarket.Market
	OrderBook  *orderbook.Book
	Trade      *trade.Engine
	Production *production.Pipeline
	Notifier   *notifier.DMNotifier
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(gateway.IntentGuilds, gateway.IntentGuildMessages)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	b.Notifier.SetClient(client)
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("SocietyBot is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity("the markets"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}
