package repositories

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/uptrace/bun"
)

type PlayerRepository interface {
	GetByUserID(ctx context.Context, guildID, userID int64) (*models.Player, error)
	// GetOrCreate returns the player's account, lazily creating it with the
	// documented defaults on first reference.
	GetOrCreate(ctx context.Context, guildID, userID int64) (*models.Player, error)
	Create(ctx context.Context, player *models.Player) error
	Update(ctx context.Context, player *models.Player) error
	AddMoney(ctx context.Context, guildID, userID int64, delta float64) error
	AddTaxesOwed(ctx context.Context, guildID, userID int64, delta float64) error
	// ListTaxOwing returns the guild's players with a positive tax debt,
	// largest debtors first.
	ListTaxOwing(ctx context.Context, guildID int64) ([]*models.Player, error)
	Exists(ctx context.Context, guildID, userID int64) (bool, error)
	Delete(ctx context.Context, guildID, userID int64) error
	// ReleaseEmployees clears the job and company reference of every player
	// employed by the given entrepreneur's company.
	ReleaseEmployees(ctx context.Context, guildID, entrepreneurID int64) error
}

type playerRepository struct {
	db *bun.DB
}

func NewPlayerRepository(db *bun.DB) PlayerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) GetByUserID(ctx context.Context, guildID, userID int64) (*models.Player, error) {
	player := new(models.Player)
	err := r.db.NewSelect().
		Model(player).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Scan(ctx)
	if err != nil {
		return nil, translateNoRows(err)
	}
	return player, nil
}

func (r *playerRepository) GetOrCreate(ctx context.Context, guildID, userID int64) (*models.Player, error) {
	player, err := r.GetByUserID(ctx, guildID, userID)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	player = models.NewDefaultPlayer(userID, guildID)
	if err := r.Create(ctx, player); err != nil {
		return nil, err
	}
	slog.Debug("Created default player account",
		slog.String("type", "db"),
		slog.Int64("guild_id", guildID),
		slog.Int64("user_id", userID))
	return player, nil
}

func (r *playerRepository) Create(ctx context.Context, player *models.Player) error {
	player.CreatedAt = time.Now()
	player.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(player).Exec(ctx)
	return err
}

func (r *playerRepository) Update(ctx context.Context, player *models.Player) error {
	player.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(player).
		WherePK().
		Exec(ctx)
	return err
}

func (r *playerRepository) AddMoney(ctx context.Context, guildID, userID int64, delta float64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Player)(nil)).
		Set("money = round((money + ?)::numeric, 2)", delta).
		Set("updated_at = ?", time.Now()).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Exec(ctx)
	return err
}

func (r *playerRepository) AddTaxesOwed(ctx context.Context, guildID, userID int64, delta float64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Player)(nil)).
		Set("taxes_owed = round((taxes_owed + ?)::numeric, 2)", delta).
		Set("updated_at = ?", time.Now()).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Exec(ctx)
	return err
}

func (r *playerRepository) ListTaxOwing(ctx context.Context, guildID int64) ([]*models.Player, error) {
	var players []*models.Player
	err := r.db.NewSelect().
		Model(&players).
		Where("guild_id = ? AND taxes_owed > 0", guildID).
		Order("taxes_owed DESC").
		Scan(ctx)
	return players, err
}

func (r *playerRepository) Exists(ctx context.Context, guildID, userID int64) (bool, error) {
	return r.db.NewSelect().
		Model((*models.Player)(nil)).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Exists(ctx)
}

func (r *playerRepository) Delete(ctx context.Context, guildID, userID int64) error {
	_, err := r.db.NewDelete().
		Model((*models.Player)(nil)).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Exec(ctx)
	return err
}

func (r *playerRepository) ReleaseEmployees(ctx context.Context, guildID, entrepreneurID int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Player)(nil)).
		Set("job = ''").
		Set("company_entrepreneur_id = NULL").
		Set("updated_at = ?", time.Now()).
		Where("guild_id = ? AND company_entrepreneur_id = ?", guildID, entrepreneurID).
		Exec(ctx)
	return err
}
