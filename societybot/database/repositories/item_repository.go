package repositories

import (
	"context"

	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/uptrace/bun"
)

type ItemRepository interface {
	GetByTag(ctx context.Context, itemTag string) (*models.Item, error)
	GetAll(ctx context.Context) ([]*models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	Count(ctx context.Context) (int, error)
}

type itemRepository struct {
	db *bun.DB
}

func NewItemRepository(db *bun.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) GetByTag(ctx context.Context, itemTag string) (*models.Item, error) {
	item := new(models.Item)
	err := r.db.NewSelect().
		Model(item).
		Where("item_tag = ?", itemTag).
		Scan(ctx)
	if err != nil {
		return nil, translateNoRows(err)
	}
	return item, nil
}

func (r *itemRepository) GetAll(ctx context.Context) ([]*models.Item, error) {
	var items []*models.Item
	err := r.db.NewSelect().
		Model(&items).
		Order("item_tag ASC").
		Scan(ctx)
	return items, err
}

func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	_, err := r.db.NewInsert().
		Model(item).
		On("CONFLICT (item_tag) DO NOTHING").
		Exec(ctx)
	return err
}

func (r *itemRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().
		Model((*models.Item)(nil)).
		Count(ctx)
}
