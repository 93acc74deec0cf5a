package repository

import (
	"context"

	"fatturaflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type BatchRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewBatchRepository(db *pgxpool.Pool, logger *zap.Logger) *BatchRepository {
	return &BatchRepository{
		db:     db,
		logger: logger,
	}
}

func (r *BatchRepository) Create(ctx context.Context, batch *models.ImportBatch) error {
	query := squirrel.Insert("import_batches").
		Columns("id", "company_id", "status", "total_files", "imported", "duplicates", "quarantined", "created_at", "updated_at").
		Values(batch.ID, batch.CompanyID, batch.Status, batch.TotalFiles, batch.Imported, batch.Duplicates, batch.Quarantined, batch.CreatedAt, batch.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *BatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	query := squirrel.Select("id", "company_id", "status", "total_files", "imported", "duplicates", "quarantined", "created_at", "updated_at").
		From("import_batches").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var batch models.ImportBatch
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&batch.ID, &batch.CompanyID, &batch.Status, &batch.TotalFiles,
		&batch.Imported, &batch.Duplicates, &batch.Quarantined, &batch.CreatedAt, &batch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &batch, nil
}

func (r *BatchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.BatchStatus) error {
	query := squirrel.Update("import_batches").
		Set("status", status).
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

// UpdateCounters settles the batch tallies when importing completes.
func (r *BatchRepository) UpdateCounters(ctx context.Context, id uuid.UUID, imported, duplicates, quarantined int, status models.BatchStatus) error {
	query := squirrel.Update("import_batches").
		Set("imported", imported).
		Set("duplicates", duplicates).
		Set("quarantined", quarantined).
		Set("status", status).
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
