package repository

import (
	"context"
	"encoding/json"
	"errors"

	"fatturaflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ImportFileRepository persists the per-document audit trail. Quarantined
// rows double as the quarantine store: the parsed invoice JSON is kept so a
// retry can skip re-extraction.
type ImportFileRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewImportFileRepository(db *pgxpool.Pool, logger *zap.Logger) *ImportFileRepository {
	return &ImportFileRepository{
		db:     db,
		logger: logger,
	}
}

var importFileColumns = []string{
	"id", "company_id", "batch_id", "filename", "storage_path", "status",
	"error_code", "error_message", "had_replacement", "parsed_invoice",
	"invoice_id", "created_at", "updated_at",
}

func (r *ImportFileRepository) Create(ctx context.Context, file *models.ImportFile) error {
	parsed, err := marshalParsed(file.ParsedInvoice)
	if err != nil {
		return err
	}

	query := squirrel.Insert("import_files").
		Columns(importFileColumns...).
		Values(file.ID, file.CompanyID, file.BatchID, file.Filename, file.StoragePath,
			file.Status, file.ErrorCode, file.ErrorMessage, file.HadReplacement,
			parsed, file.InvoiceID, file.CreatedAt, file.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ImportFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ImportFile, error) {
	query := squirrel.Select(importFileColumns...).
		From("import_files").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	file, err := scanImportFile(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (r *ImportFileRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*models.ImportFile, error) {
	return r.list(ctx, squirrel.Eq{"batch_id": batchID})
}

// ListQuarantined returns the active quarantine view for a company;
// archived and resolved items are excluded.
func (r *ImportFileRepository) ListQuarantined(ctx context.Context, companyID uuid.UUID) ([]*models.ImportFile, error) {
	return r.list(ctx, squirrel.Eq{"company_id": companyID, "status": models.FileQuarantined})
}

func (r *ImportFileRepository) list(ctx context.Context, where squirrel.Eq) ([]*models.ImportFile, error) {
	query := squirrel.Select(importFileColumns...).
		From("import_files").
		Where(where).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*models.ImportFile
	for rows.Next() {
		file, err := scanImportFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, nil
}

// UpdateOutcome records a document's terminal state for this run: status,
// error detail and the invoice link when one was created.
func (r *ImportFileRepository) UpdateOutcome(ctx context.Context, id uuid.UUID, status models.FileStatus, errorCode, errorMessage string, invoiceID *uuid.UUID) error {
	query := squirrel.Update("import_files").
		Set("status", status).
		Set("error_code", errorCode).
		Set("error_message", errorMessage).
		Set("invoice_id", invoiceID).
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

// UpdateParsedInvoice stores (or replaces) the recovered invoice JSON and
// the replacement-character warning flag.
func (r *ImportFileRepository) UpdateParsedInvoice(ctx context.Context, id uuid.UUID, inv *models.ParsedInvoice, hadReplacement bool) error {
	parsed, err := marshalParsed(inv)
	if err != nil {
		return err
	}

	query := squirrel.Update("import_files").
		Set("parsed_invoice", parsed).
		Set("had_replacement", hadReplacement).
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

func marshalParsed(inv *models.ParsedInvoice) ([]byte, error) {
	if inv == nil {
		return nil, nil
	}
	return json.Marshal(inv)
}

func scanImportFile(row pgx.Row) (*models.ImportFile, error) {
	var (
		file   models.ImportFile
		parsed []byte
	)
	err := row.Scan(
		&file.ID, &file.CompanyID, &file.BatchID, &file.Filename, &file.StoragePath,
		&file.Status, &file.ErrorCode, &file.ErrorMessage, &file.HadReplacement,
		&parsed, &file.InvoiceID, &file.CreatedAt, &file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(parsed) > 0 {
		var inv models.ParsedInvoice
		if err := json.Unmarshal(parsed, &inv); err != nil {
			return nil, err
		}
		file.ParsedInvoice = &inv
	}
	return &file, nil
}

// UpdateError refreshes the error detail of an item that stays quarantined
// after a failed retry.
func (r *ImportFileRepository) UpdateError(ctx context.Context, id uuid.UUID, errorCode, errorMessage string) error {
	query := squirrel.Update("import_files").
		Set("error_code", errorCode).
		Set("error_message", errorMessage).
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
