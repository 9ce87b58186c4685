package repositories

import (
	"context"

	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/uptrace/bun"
)

type MarketRepository interface {
	Get(ctx context.Context, guildID int64, itemTag string) (*models.MarketItem, error)
	Create(ctx context.Context, item *models.MarketItem) error
	Update(ctx context.Context, item *models.MarketItem) error
}

type marketRepository struct {
	db *bun.DB
}

func NewMarketRepository(db *bun.DB) MarketRepository {
	return &marketRepository{db: db}
}

func (r *marketRepository) Get(ctx context.Context, guildID int64, itemTag string) (*models.MarketItem, error) {
	item := new(models.MarketItem)
	err := r.db.NewSelect().
		Model(item).
		Where("guild_id = ? AND item_tag = ?", guildID, itemTag).
		Scan(ctx)
	if err != nil {
		return nil, translateNoRows(err)
	}
	return item, nil
}

func (r *marketRepository) Create(ctx context.Context, item *models.MarketItem) error {
	_, err := r.db.NewInsert().
		Model(item).
		On("CONFLICT (guild_id, item_tag) DO NOTHING").
		Exec(ctx)
	return err
}

func (r *marketRepository) Update(ctx context.Context, item *models.MarketItem) error {
	_, err := r.db.NewUpdate().
		Model(item).
		WherePK().
		Exec(ctx)
	return err
}
