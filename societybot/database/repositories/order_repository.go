package repositories

import (
	"context"
	"time"

	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/uptrace/bun"
)

type OrderRepository interface {
	// GetOwn returns the caller's live order at exactly this key, if any.
	// Used for the merge-on-duplicate-price rule.
	GetOwn(ctx context.Context, guildID, ownerID int64, isCompany bool, side models.OrderSide, itemTag string, unitPrice float64) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id int64) error
	// Matchable returns live candidate orders for a request against the
	// given side: sell candidates priced at or under the limit in ascending
	// price order, buy candidates priced at or over the limit in descending
	// price order. Ties are broken by insertion order (oldest first).
	Matchable(ctx context.Context, guildID int64, side models.OrderSide, itemTag string, limit float64, now time.Time) ([]*models.Order, error)
	ListByOwner(ctx context.Context, guildID, ownerID int64, isCompany bool, now time.Time) ([]*models.Order, error)
	ListByItem(ctx context.Context, guildID int64, itemTag string, now time.Time) ([]*models.Order, error)
	// DeleteOwn removes the owner's orders for an item, optionally narrowed
	// to one price point, and reports how many rows went away.
	DeleteOwn(ctx context.Context, guildID, ownerID int64, isCompany bool, itemTag string, unitPrice *float64) (int64, error)
	// DeleteExpired lazily sweeps orders whose expiry has passed.
	DeleteExpired(ctx context.Context, guildID int64, itemTag string, now time.Time) (int64, error)
}

type orderRepository struct {
	db *bun.DB
}

func NewOrderRepository(db *bun.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) GetOwn(ctx context.Context, guildID, ownerID int64, isCompany bool, side models.OrderSide, itemTag string, unitPrice float64) (*models.Order, error) {
	order := new(models.Order)
	err := r.db.NewSelect().
		Model(order).
		Where("guild_id = ? AND owner_id = ? AND is_company = ? AND side = ? AND item_tag = ? AND unit_price = ?",
			guildID, ownerID, isCompany, side, itemTag, unitPrice).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, translateNoRows(err)
	}
	return order, nil
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	order.CreatedAt = time.Now()
	_, err := r.db.NewInsert().Model(order).Exec(ctx)
	return err
}

func (r *orderRepository) Update(ctx context.Context, order *models.Order) error {
	_, err := r.db.NewUpdate().
		Model(order).
		WherePK().
		Exec(ctx)
	return err
}

func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*models.Order)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *orderRepository) Matchable(ctx context.Context, guildID int64, side models.OrderSide, itemTag string, limit float64, now time.Time) ([]*models.Order, error) {
	var orders []*models.Order
	q := r.db.NewSelect().
		Model(&orders).
		Where("guild_id = ? AND side = ? AND item_tag = ? AND expires_at > ?", guildID, side, itemTag, now)
	if side == models.OrderSideSell {
		q = q.Where("unit_price <= ?", limit).
			Order("unit_price ASC", "id ASC")
	} else {
		q = q.Where("unit_price >= ?", limit).
			Order("unit_price DESC", "id ASC")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ListByOwner(ctx context.Context, guildID, ownerID int64, isCompany bool, now time.Time) ([]*models.Order, error) {
	var orders []*models.Order
	err := r.db.NewSelect().
		Model(&orders).
		Where("guild_id = ? AND owner_id = ? AND is_company = ? AND expires_at > ?", guildID, ownerID, isCompany, now).
		Order("item_tag ASC", "unit_price ASC").
		Scan(ctx)
	return orders, err
}

func (r *orderRepository) ListByItem(ctx context.Context, guildID int64, itemTag string, now time.Time) ([]*models.Order, error) {
	var orders []*models.Order
	err := r.db.NewSelect().
		Model(&orders).
		Where("guild_id = ? AND item_tag = ? AND expires_at > ?", guildID, itemTag, now).
		Order("side ASC", "unit_price ASC").
		Scan(ctx)
	return orders, err
}

func (r *orderRepository) DeleteOwn(ctx context.Context, guildID, ownerID int64, isCompany bool, itemTag string, unitPrice *float64) (int64, error) {
	q := r.db.NewDelete().
		Model((*models.Order)(nil)).
		Where("guild_id = ? AND owner_id = ? AND is_company = ? AND item_tag = ?", guildID, ownerID, isCompany, itemTag)
	if unitPrice != nil {
		q = q.Where("unit_price = ?", *unitPrice)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *orderRepository) DeleteExpired(ctx context.Context, guildID int64, itemTag string, now time.Time) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*models.Order)(nil)).
		Where("guild_id = ? AND item_tag = ? AND expires_at <= ?", guildID, itemTag, now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
