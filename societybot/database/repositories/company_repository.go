package repositories

import (
	"context"
	"time"

	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/uptrace/bun"
)

type CompanyRepository interface {
	GetByEntrepreneur(ctx context.Context, guildID, entrepreneurID int64) (*models.Company, error)
	Create(ctx context.Context, company *models.Company) error
	Update(ctx context.Context, company *models.Company) error
	AddCapital(ctx context.Context, guildID, entrepreneurID int64, delta float64) error
	AddTaxesOwed(ctx context.Context, guildID, entrepreneurID int64, delta float64) error
	// ListTaxOwing returns the guild's companies with a positive tax debt,
	// largest debtors first.
	ListTaxOwing(ctx context.Context, guildID int64) ([]*models.Company, error)
	Exists(ctx context.Context, guildID, entrepreneurID int64) (bool, error)
	Delete(ctx context.Context, guildID, entrepreneurID int64) error
}

type companyRepository struct {
	db *bun.DB
}

func NewCompanyRepository(db *bun.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) GetByEntrepreneur(ctx context.Context, guildID, entrepreneurID int64) (*models.Company, error) {
	company := new(models.Company)
	err := r.db.NewSelect().
		Model(company).
		Where("guild_id = ? AND entrepreneur_id = ?", guildID, entrepreneurID).
		Scan(ctx)
	if err != nil {
		return nil, translateNoRows(err)
	}
	return company, nil
}

func (r *companyRepository) Create(ctx context.Context, company *models.Company) error {
	company.CreatedAt = time.Now()
	company.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(company).Exec(ctx)
	return err
}

func (r *companyRepository) Update(ctx context.Context, company *models.Company) error {
	company.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(company).
		WherePK().
		Exec(ctx)
	return err
}

func (r *companyRepository) AddCapital(ctx context.Context, guildID, entrepreneurID int64, delta float64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Company)(nil)).
		Set("capital = round((capital + ?)::numeric, 2)", delta).
		Set("updated_at = ?", time.Now()).
		Where("guild_id = ? AND entrepreneur_id = ?", guildID, entrepreneurID).
		Exec(ctx)
	return err
}

func (r *companyRepository) AddTaxesOwed(ctx context.Context, guildID, entrepreneurID int64, delta float64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Company)(nil)).
		Set("taxes_owed = round((taxes_owed + ?)::numeric, 2)", delta).
		Set("updated_at = ?", time.Now()).
		Where("guild_id = ? AND entrepreneur_id = ?", guildID, entrepreneurID).
		Exec(ctx)
	return err
}

func (r *companyRepository) ListTaxOwing(ctx context.Context, guildID int64) ([]*models.Company, error) {
	var companies []*models.Company
	err := r.db.NewSelect().
		Model(&companies).
		Where("guild_id = ? AND taxes_owed > 0", guildID).
		Order("taxes_owed DESC").
		Scan(ctx)
	return companies, err
}

func (r *companyRepository) Exists(ctx context.Context, guildID, entrepreneurID int64) (bool, error) {
	return r.db.NewSelect().
		Model((*models.Company)(nil)).
		Where("guild_id = ? AND entrepreneur_id = ?", guildID, entrepreneurID).
		Exists(ctx)
}

func (r *companyRepository) Delete(ctx context.Context, guildID, entrepreneurID int64) error {
	_, err := r.db.NewDelete().
		Model((*models.Company)(nil)).
		Where("guild_id = ? AND entrepreneur_id = ?", guildID, entrepreneurID).
		Exec(ctx)
	return err
}
