// Command migrate imports the retired MongoDB deployment of the bot into
// PostgreSQL: players, companies, items and NPC market state. Safe to re-run;
// every insert is an upsert keyed on the legacy identity.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ellavondegurechaff/societybot/societybot"
	"github.com/ellavondegurechaff/societybot/societybot/database"
	"github.com/ellavondegurechaff/societybot/societybot/logger"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	configPath := flag.String("config", "config.toml", "path to config")
	mongoURI := flag.String("mongo-uri", "mongodb://localhost:27017", "legacy MongoDB connection string")
	mongoDB := flag.String("mongo-db", "societybot", "legacy MongoDB database name")
	batchSize := flag.Int("batch-size", 1000, "rows per insert batch")
	flag.Parse()

	cfg, err := societybot.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed", slog.Any("error", err))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(-1)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(*mongoURI))
	if err != nil {
		slog.Error("MongoDB connection failed", slog.Any("error", err))
		os.Exit(-1)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			slog.Error("MongoDB disconnect failed", slog.Any("error", err))
		}
	}()

	if err := client.Ping(ctx, nil); err != nil {
		slog.Error("MongoDB unreachable", slog.Any("error", err))
		os.Exit(-1)
	}

	legacy := client.Database(*mongoDB)
	if !collectionExists(ctx, legacy, "players") {
		slog.Warn("Legacy players collection not found; check -mongo-db",
			slog.String("database", *mongoDB))
	}

	m := newMigrator(db.BunDB(), legacy, *batchSize)

	start := time.Now()
	if err := m.Run(ctx); err != nil {
		slog.Error("Migration failed", slog.Any("error", err))
		os.Exit(-1)
	}

	slog.Info("Migration completed",
		slog.String("type", "db"),
		slog.Duration("took", time.Since(start)))
}

// sanity probe so a typo'd database name fails loudly instead of importing
// zero rows from empty collections.
func collectionExists(ctx context.Context, db *mongo.Database, name string) bool {
	names, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	return err == nil && len(names) > 0
}
