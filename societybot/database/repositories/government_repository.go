package repositories

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/uptrace/bun"
)

type GovernmentRepository interface {
	// GetOrCreate returns the guild's government, lazily creating it with
	// the default tax and interest rates on first reference.
	GetOrCreate(ctx context.Context, guildID int64) (*models.Government, error)
	Update(ctx context.Context, gov *models.Government) error
	AddTreasury(ctx context.Context, guildID int64, delta float64) error
	// SpendTreasury atomically debits the treasury, refusing the whole
	// amount when the balance is short. Returns whether it spent.
	SpendTreasury(ctx context.Context, guildID int64, amount float64) (bool, error)
	AddGamblingPool(ctx context.Context, guildID int64, delta float64) error
	// AccrueGDP adds amount to the guild's GDP entry for the given calendar
	// day, creating the entry at zero first if needed. Entries only grow.
	AccrueGDP(ctx context.Context, guildID int64, day string, amount float64) error
	GetGdp(ctx context.Context, guildID int64, day string) (*models.GdpEntry, error)
	ListGdp(ctx context.Context, guildID int64) ([]*models.GdpEntry, error)
}

type governmentRepository struct {
	db *bun.DB
}

func NewGovernmentRepository(db *bun.DB) GovernmentRepository {
	return &governmentRepository{db: db}
}

func (r *governmentRepository) GetOrCreate(ctx context.Context, guildID int64) (*models.Government, error) {
	gov := new(models.Government)
	err := r.db.NewSelect().
		Model(gov).
		Where("guild_id = ?", guildID).
		Scan(ctx)
	if err == nil {
		return gov, nil
	}
	if !errors.Is(translateNoRows(err), ErrNotFound) {
		return nil, err
	}

	gov = models.NewDefaultGovernment(guildID)
	if _, err := r.db.NewInsert().
		Model(gov).
		On("CONFLICT (guild_id) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, err
	}
	slog.Debug("Created default government",
		slog.String("type", "db"),
		slog.Int64("guild_id", guildID))
	return gov, nil
}

func (r *governmentRepository) Update(ctx context.Context, gov *models.Government) error {
	_, err := r.db.NewUpdate().
		Model(gov).
		WherePK().
		Exec(ctx)
	return err
}

func (r *governmentRepository) AddTreasury(ctx context.Context, guildID int64, delta float64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Government)(nil)).
		Set("treasury = round((treasury + ?)::numeric, 2)", delta).
		Where("guild_id = ?", guildID).
		Exec(ctx)
	return err
}

func (r *governmentRepository) SpendTreasury(ctx context.Context, guildID int64, amount float64) (bool, error) {
	// The balance guard lives in the WHERE clause so concurrent spends
	// cannot both pass a read-then-write check.
	res, err := r.db.NewUpdate().
		Model((*models.Government)(nil)).
		Set("treasury = round((treasury - ?)::numeric, 2)", amount).
		Where("guild_id = ? AND treasury >= ?", guildID, amount).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *governmentRepository) AddGamblingPool(ctx context.Context, guildID int64, delta float64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Government)(nil)).
		Set("gambling_pool = round((gambling_pool + ?)::numeric, 2)", delta).
		Where("guild_id = ?", guildID).
		Exec(ctx)
	return err
}

func (r *governmentRepository) AccrueGDP(ctx context.Context, guildID int64, day string, amount float64) error {
	entry := &models.GdpEntry{
		GuildID: guildID,
		Day:     day,
		Value:   amount,
	}
	_, err := r.db.NewInsert().
		Model(entry).
		On("CONFLICT (guild_id, day) DO UPDATE").
		Set("value = round((gdp_entries.value + EXCLUDED.value)::numeric, 2)").
		Exec(ctx)
	return err
}

func (r *governmentRepository) GetGdp(ctx context.Context, guildID int64, day string) (*models.GdpEntry, error) {
	entry := new(models.GdpEntry)
	err := r.db.NewSelect().
		Model(entry).
		Where("guild_id = ? AND day = ?", guildID, day).
		Scan(ctx)
	if err != nil {
		return nil, translateNoRows(err)
	}
	return entry, nil
}

func (r *governmentRepository) ListGdp(ctx context.Context, guildID int64) ([]*models.GdpEntry, error) {
	var entries []*models.GdpEntry
	err := r.db.NewSelect().
		Model(&entries).
		Where("guild_id = ?", guildID).
		Order("day ASC").
		Scan(ctx)
	return entries, err
}
