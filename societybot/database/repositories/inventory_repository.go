package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/uptrace/bun"
)

type InventoryRepository interface {
	Get(ctx context.Context, guildID, ownerID int64, isCompany bool, itemTag string) (*models.InventoryLine, error)
	List(ctx context.Context, guildID, ownerID int64, isCompany bool) ([]*models.InventoryLine, error)
	// Add upserts amount onto the owner's stack. durability is only applied
	// when the stack is created; existing stacks keep their wear state.
	Add(ctx context.Context, guildID, ownerID int64, isCompany bool, itemTag string, amount int, durability *int) error
	// Remove takes amount off the stack and deletes the row when it hits
	// zero. It fails without mutating if the stack is missing or short.
	Remove(ctx context.Context, guildID, ownerID int64, isCompany bool, itemTag string, amount int) error
	Update(ctx context.Context, line *models.InventoryLine) error
	Delete(ctx context.Context, line *models.InventoryLine) error
	DeleteAllForOwner(ctx context.Context, guildID, ownerID int64, isCompany bool) error
}

type inventoryRepository struct {
	db *bun.DB
}

func NewInventoryRepository(db *bun.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Get(ctx context.Context, guildID, ownerID int64, isCompany bool, itemTag string) (*models.InventoryLine, error) {
	line := new(models.InventoryLine)
	err := r.db.NewSelect().
		Model(line).
		Where("guild_id = ? AND owner_id = ? AND is_company = ? AND item_tag = ?",
			guildID, ownerID, isCompany, itemTag).
		Scan(ctx)
	if err != nil {
		return nil, translateNoRows(err)
	}
	return line, nil
}

func (r *inventoryRepository) List(ctx context.Context, guildID, ownerID int64, isCompany bool) ([]*models.InventoryLine, error) {
	var lines []*models.InventoryLine
	err := r.db.NewSelect().
		Model(&lines).
		Where("guild_id = ? AND owner_id = ? AND is_company = ?", guildID, ownerID, isCompany).
		Order("item_tag ASC").
		Scan(ctx)
	return lines, err
}

func (r *inventoryRepository) Add(ctx context.Context, guildID, ownerID int64, isCompany bool, itemTag string, amount int, durability *int) error {
	if amount <= 0 {
		return fmt.Errorf("inventory add: non-positive amount %d", amount)
	}
	line := &models.InventoryLine{
		GuildID:    guildID,
		OwnerID:    ownerID,
		IsCompany:  isCompany,
		ItemTag:    itemTag,
		Amount:     amount,
		Durability: durability,
		UpdatedAt:  time.Now(),
	}
	_, err := r.db.NewInsert().
		Model(line).
		On("CONFLICT (guild_id, owner_id, is_company, item_tag) DO UPDATE").
		Set("amount = inventory_lines.amount + EXCLUDED.amount").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *inventoryRepository) Remove(ctx context.Context, guildID, ownerID int64, isCompany bool, itemTag string, amount int) error {
	line, err := r.Get(ctx, guildID, ownerID, isCompany, itemTag)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("inventory remove: no %s held: %w", itemTag, ErrNotFound)
		}
		return err
	}
	if line.Amount < amount {
		return fmt.Errorf("inventory remove: %d of %s held, %d requested", line.Amount, itemTag, amount)
	}

	line.Amount -= amount
	if line.Amount <= 0 {
		return r.Delete(ctx, line)
	}
	return r.Update(ctx, line)
}

func (r *inventoryRepository) Update(ctx context.Context, line *models.InventoryLine) error {
	line.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(line).
		WherePK().
		Exec(ctx)
	return err
}

func (r *inventoryRepository) Delete(ctx context.Context, line *models.InventoryLine) error {
	_, err := r.db.NewDelete().
		Model(line).
		WherePK().
		Exec(ctx)
	return err
}

func (r *inventoryRepository) DeleteAllForOwner(ctx context.Context, guildID, ownerID int64, isCompany bool) error {
	_, err := r.db.NewDelete().
		Model((*models.InventoryLine)(nil)).
		Where("guild_id = ? AND owner_id = ? AND is_company = ?", guildID, ownerID, isCompany).
		Exec(ctx)
	return err
}
