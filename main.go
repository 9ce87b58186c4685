package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/societybot/societybot"
	"github.com/ellavondegurechaff/societybot/societybot/catalog"
	"github.com/ellavondegurechaff/societybot/societybot/commands"
	"github.com/ellavondegurechaff/societybot/societybot/database"
	"github.com/ellavondegurechaff/societybot/societybot/database/repositories"
	"github.com/ellavondegurechaff/societybot/societybot/economy/ledger"
	"github.com/ellavondegurechaff/societybot/societybot/economy/npcmarket"
	"github.com/ellavondegurechaff/societybot/societybot/economy/orderbook"
	"github.com/ellavondegurechaff/societybot/societybot/economy/production"
	"github.com/ellavondegurechaff/societybot/societybot/economy/trade"
	"github.com/ellavondegurechaff/societybot/societybot/handlers"
	"github.com/ellavondegurechaff/societybot/societybot/logger"
	"github.com/ellavondegurechaff/societybot/societybot/notifier"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting SocietyBot",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := societybot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}

	b := societybot.New(*cfg, version, commit)
	b.DB = db

	b.PlayerRepository = repositories.NewPlayerRepository(db.BunDB())
	b.CompanyRepository = repositories.NewCompanyRepository(db.BunDB())
	b.ItemRepository = repositories.NewItemRepository(db.BunDB())
	b.InventoryRepository = repositories.NewInventoryRepository(db.BunDB())
	b.MarketRepository = repositories.NewMarketRepository(db.BunDB())
	b.OrderRepository = repositories.NewOrderRepository(db.BunDB())
	b.GovernmentRepository = repositories.NewGovernmentRepository(db.BunDB())

	cat, err := catalog.Load(ctx, b.ItemRepository)
	if err != nil {
		slog.Error("Failed to load item catalog",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}
	b.Catalog = cat
	logger.LogSystem("Item catalog loaded", slog.Int("items", len(cat.All())))

	b.Notifier = notifier.New()
	b.Ledger = ledger.New(b.PlayerRepository, b.CompanyRepository, b.GovernmentRepository)
	b.NPCMarket = npcmarket.New(cat, b.MarketRepository)
	b.OrderBook = orderbook.New(b.OrderRepository)
	b.Trade = trade.New(b.Ledger, b.NPCMarket, b.OrderBook, b.PlayerRepository, b.InventoryRepository, cat, b.Notifier)
	b.Production = production.New(b.CompanyRepository, b.InventoryRepository, cat)

	h := handler.New()
	h.Command("/buy", handlers.WrapWithLogging("buy", commands.BuyHandler(b)))
	h.Command("/sell", handlers.WrapWithLogging("sell", commands.SellHandler(b)))
	h.Command("/work", handlers.WrapWithLogging("work", commands.WorkHandler(b)))
	h.Command("/items", handlers.WrapWithLogging("items", commands.ItemsHandler(b)))
	h.Command("/stats", handlers.WrapWithLogging("stats", commands.StatsHandler(b)))

	// Subcommands route as path segments; the handlers dispatch internally
	// on the subcommand name.
	ordersHandler := commands.OrdersHandler(b)
	h.Route("/orders", func(r handler.Router) {
		r.Command("/view", handlers.WrapWithLogging("orders view", ordersHandler))
		r.Command("/remove", handlers.WrapWithLogging("orders remove", ordersHandler))
	})

	companyHandler := commands.CompanyHandler(b)
	h.Route("/company", func(r handler.Router) {
		r.Command("/create", handlers.WrapWithLogging("company create", companyHandler))
		r.Command("/setitems", handlers.WrapWithLogging("company setitems", companyHandler))
		r.Command("/disband", handlers.WrapWithLogging("company disband", companyHandler))
		r.Command("/join", handlers.WrapWithLogging("company join", companyHandler))
		r.Command("/leave", handlers.WrapWithLogging("company leave", companyHandler))
	})

	governmentHandler := commands.GovernmentHandler(b)
	h.Route("/government", func(r handler.Router) {
		r.Command("/view", handlers.WrapWithLogging("government view", governmentHandler))
		r.Command("/subsidize", handlers.WrapWithLogging("government subsidize", governmentHandler))
		r.Command("/sponsor", handlers.WrapWithLogging("government sponsor", governmentHandler))
	})

	taxesHandler := commands.TaxesHandler(b)
	h.Route("/taxes", func(r handler.Router) {
		r.Command("/view", handlers.WrapWithLogging("taxes view", taxesHandler))
		r.Command("/pay", handlers.WrapWithLogging("taxes pay", taxesHandler))
		r.Command("/rate", handlers.WrapWithLogging("taxes rate", taxesHandler))
	})

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("status", "failed"),
			)
		}
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = b.Client.OpenGateway(ctx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	slog.Info("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...")
}
