package repository

import (
	"context"
	"errors"

	"fatturaflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CounterpartyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCounterpartyRepository(db *pgxpool.Pool, logger *zap.Logger) *CounterpartyRepository {
	return &CounterpartyRepository{
		db:     db,
		logger: logger,
	}
}

func (r *CounterpartyRepository) Create(ctx context.Context, cp *models.Counterparty) error {
	query := squirrel.Insert("counterparties").
		Columns("id", "company_id", "name", "tax_id", "fiscal_code", "address", "city",
			"province", "postal_code", "country_code", "created_at", "updated_at").
		Values(cp.ID, cp.CompanyID, cp.Name, cp.TaxID, cp.FiscalCode, cp.Address, cp.City,
			cp.Province, cp.PostalCode, cp.CountryCode, cp.CreatedAt, cp.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// FindByTaxID returns the company-scoped counterparty with the given tax id,
// or nil when none exists. Used by the import lookup-or-create sequence.
func (r *CounterpartyRepository) FindByTaxID(ctx context.Context, companyID uuid.UUID, taxID string) (*models.Counterparty, error) {
	query := squirrel.Select("id", "company_id", "name", "tax_id", "fiscal_code", "address",
		"city", "province", "postal_code", "country_code", "created_at", "updated_at").
		From("counterparties").
		Where(squirrel.Eq{"company_id": companyID, "tax_id": taxID}).
		OrderBy("created_at ASC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var cp models.Counterparty
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&cp.ID, &cp.CompanyID, &cp.Name, &cp.TaxID, &cp.FiscalCode, &cp.Address,
		&cp.City, &cp.Province, &cp.PostalCode, &cp.CountryCode, &cp.CreatedAt, &cp.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &cp, nil
}

func (r *CounterpartyRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	query := squirrel.Update("counterparties").
		Set("name", name).
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
