package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ellavondegurechaff/societybot/societybot/database/models"
)

type migrator struct {
	pg        *bun.DB
	mongo     *mongo.Database
	batchSize int

	// legacy collection names, overridable for odd deployments
	collNames map[string]string
}

func newMigrator(pg *bun.DB, mongoDB *mongo.Database, batchSize int) *migrator {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &migrator{
		pg:        pg,
		mongo:     mongoDB,
		batchSize: batchSize,
		collNames: map[string]string{
			"players":   "players",
			"companies": "companies",
			"items":     "items",
			"market":    "market_items",
		},
	}
}

func (m *migrator) Run(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"items", m.importItems},
		{"players", m.importPlayers},
		{"companies", m.importCompanies},
		{"market", m.importMarket},
	}

	for _, step := range steps {
		start := time.Now()
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("importing %s: %w", step.name, err)
		}
		slog.Info("Import step finished",
			slog.String("type", "db"),
			slog.String("step", step.name),
			slog.Duration("took", time.Since(start)))
	}
	return nil
}

// Legacy document shapes. The old bot stored everything as loosely typed
// documents; unknown fields are dropped on purpose.

type mongoPlayer struct {
	UserID                int64   `bson:"user_id"`
	GuildID               int64   `bson:"guild_id"`
	Money                 float64 `bson:"money"`
	Debt                  float64 `bson:"debt"`
	TaxesOwed             float64 `bson:"taxes"`
	Hunger                int     `bson:"hunger"`
	Thirst                int     `bson:"thirst"`
	Health                int     `bson:"health"`
	Job                   string  `bson:"job"`
	CompanyEntrepreneurID *int64  `bson:"company_entrepreneur_id"`
}

type mongoCompany struct {
	EntrepreneurID  int64   `bson:"entrepreneur_id"`
	GuildID         int64   `bson:"guild_id"`
	Name            string  `bson:"name"`
	Capital         float64 `bson:"capital"`
	Wage            float64 `bson:"worker_wage"`
	TaxesOwed       float64 `bson:"taxes"`
	ProducibleItems string  `bson:"producible_items"`
	Worksteps       string  `bson:"worksteps"`
}

type mongoItem struct {
	ItemTag     string  `bson:"item_tag"`
	Producible  bool    `bson:"producible"`
	Ingredients string  `bson:"ingredients"`
	Worksteps   int     `bson:"worksteps"`
	BasePrice   float64 `bson:"base_price"`
	Durability  *int    `bson:"durability"`
}

type mongoMarketItem struct {
	GuildID   int64   `bson:"guild_id"`
	ItemTag   string  `bson:"item_tag"`
	MinPrice  float64 `bson:"min_price"`
	MaxPrice  float64 `bson:"max_price"`
	Stockpile int     `bson:"stockpile"`
}

func (m *migrator) importPlayers(ctx context.Context) error {
	col := m.mongo.Collection(m.collNames["players"])
	cur, err := col.Find(ctx, bson.D{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	var batch []*models.Player
	now := time.Now()
	for cur.Next(ctx) {
		var mp mongoPlayer
		if err := cur.Decode(&mp); err != nil {
			continue
		}
		batch = append(batch, &models.Player{
			UserID:                mp.UserID,
			GuildID:               mp.GuildID,
			Money:                 mp.Money,
			Debt:                  mp.Debt,
			TaxesOwed:             mp.TaxesOwed,
			Hunger:                mp.Hunger,
			Thirst:                mp.Thirst,
			Health:                mp.Health,
			Job:                   mp.Job,
			CompanyEntrepreneurID: mp.CompanyEntrepreneurID,
			CreatedAt:             now,
			UpdatedAt:             now,
		})
		if len(batch) >= m.batchSize {
			if err := m.flushPlayers(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return m.flushPlayers(ctx, batch)
	}
	return nil
}

func (m *migrator) flushPlayers(ctx context.Context, players []*models.Player) error {
	_, err := m.pg.NewInsert().
		Model(&players).
		On("CONFLICT (guild_id, user_id) DO UPDATE").
		Set("money = EXCLUDED.money").
		Set("debt = EXCLUDED.debt").
		Set("taxes_owed = EXCLUDED.taxes_owed").
		Set("hunger = EXCLUDED.hunger").
		Set("thirst = EXCLUDED.thirst").
		Set("health = EXCLUDED.health").
		Set("job = EXCLUDED.job").
		Set("company_entrepreneur_id = EXCLUDED.company_entrepreneur_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (m *migrator) importCompanies(ctx context.Context) error {
	col := m.mongo.Collection(m.collNames["companies"])
	cur, err := col.Find(ctx, bson.D{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	var batch []*models.Company
	now := time.Now()
	for cur.Next(ctx) {
		var mc mongoCompany
		if err := cur.Decode(&mc); err != nil {
			continue
		}
		batch = append(batch, &models.Company{
			EntrepreneurID:  mc.EntrepreneurID,
			GuildID:         mc.GuildID,
			Name:            mc.Name,
			Capital:         mc.Capital,
			Wage:            mc.Wage,
			TaxesOwed:       mc.TaxesOwed,
			ProducibleItems: mc.ProducibleItems,
			Worksteps:       mc.Worksteps,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if len(batch) >= m.batchSize {
			if err := m.flushCompanies(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return m.flushCompanies(ctx, batch)
	}
	return nil
}

func (m *migrator) flushCompanies(ctx context.Context, companies []*models.Company) error {
	_, err := m.pg.NewInsert().
		Model(&companies).
		On("CONFLICT (guild_id, entrepreneur_id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("capital = EXCLUDED.capital").
		Set("wage = EXCLUDED.wage").
		Set("taxes_owed = EXCLUDED.taxes_owed").
		Set("producible_items = EXCLUDED.producible_items").
		Set("worksteps = EXCLUDED.worksteps").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (m *migrator) importItems(ctx context.Context) error {
	col := m.mongo.Collection(m.collNames["items"])
	cur, err := col.Find(ctx, bson.D{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	var batch []*models.Item
	for cur.Next(ctx) {
		var mi mongoItem
		if err := cur.Decode(&mi); err != nil {
			continue
		}
		if mi.ItemTag == "" {
			continue
		}
		batch = append(batch, &models.Item{
			ItemTag:     mi.ItemTag,
			Producible:  mi.Producible,
			Ingredients: mi.Ingredients,
			Worksteps:   mi.Worksteps,
			BasePrice:   mi.BasePrice,
			Durability:  mi.Durability,
		})
		if len(batch) >= m.batchSize {
			if err := m.flushItems(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return m.flushItems(ctx, batch)
	}
	return nil
}

func (m *migrator) flushItems(ctx context.Context, items []*models.Item) error {
	// The catalog is authoritative once seeded: legacy rows only fill gaps.
	_, err := m.pg.NewInsert().
		Model(&items).
		On("CONFLICT (item_tag) DO NOTHING").
		Exec(ctx)
	return err
}

func (m *migrator) importMarket(ctx context.Context) error {
	col := m.mongo.Collection(m.collNames["market"])
	cur, err := col.Find(ctx, bson.D{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	var batch []*models.MarketItem
	for cur.Next(ctx) {
		var mm mongoMarketItem
		if err := cur.Decode(&mm); err != nil {
			continue
		}
		if mm.ItemTag == "" {
			continue
		}
		batch = append(batch, &models.MarketItem{
			GuildID:   mm.GuildID,
			ItemTag:   mm.ItemTag,
			MinPrice:  mm.MinPrice,
			MaxPrice:  mm.MaxPrice,
			Stockpile: mm.Stockpile,
		})
		if len(batch) >= m.batchSize {
			if err := m.flushMarket(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return m.flushMarket(ctx, batch)
	}
	return nil
}

func (m *migrator) flushMarket(ctx context.Context, rows []*models.MarketItem) error {
	_, err := m.pg.NewInsert().
		Model(&rows).
		On("CONFLICT (guild_id, item_tag) DO UPDATE").
		Set("min_price = EXCLUDED.min_price").
		Set("max_price = EXCLUDED.max_price").
		Set("stockpile = EXCLUDED.stockpile").
		Exec(ctx)
	return err
}
