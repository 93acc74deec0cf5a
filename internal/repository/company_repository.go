package repository

import (
	"context"

	"fatturaflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CompanyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCompanyRepository(db *pgxpool.Pool, logger *zap.Logger) *CompanyRepository {
	return &CompanyRepository{
		db:     db,
		logger: logger,
	}
}

func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	query := squirrel.Insert("companies").
		Columns("id", "name", "email", "password", "own_tax_id", "fiscal_code", "created_at", "updated_at").
		Values(company.ID, company.Name, company.Email, company.Password, company.OwnTaxID, company.FiscalCode, company.CreatedAt, company.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *CompanyRepository) GetByEmail(ctx context.Context, email string) (*models.Company, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

func (r *CompanyRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Company, error) {
	query := squirrel.Select("id", "name", "email", "password", "own_tax_id", "fiscal_code", "created_at", "updated_at").
		From("companies").
		Where(where).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var company models.Company
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&company.ID, &company.Name, &company.Email, &company.Password,
		&company.OwnTaxID, &company.FiscalCode, &company.CreatedAt, &company.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &company, nil
}

func (r *CompanyRepository) UpdateOwnTaxID(ctx context.Context, id uuid.UUID, ownTaxID string) error {
	query := squirrel.Update("companies").
		Set("own_tax_id", ownTaxID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
