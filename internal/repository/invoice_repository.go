package repository

import (
	"context"
	"errors"
	"fmt"

	"fatturaflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type InvoiceRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewInvoiceRepository(db *pgxpool.Pool, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

var invoiceColumns = []string{
	"id", "company_id", "counterparty_id", "direction", "number", "date",
	"document_type", "currency", "counterparty_tax_id", "total_amount",
	"taxable_amount", "tax_amount", "payment_due_date", "payment_method",
	"payment_iban", "created_at", "updated_at",
}

// Create persists the invoice and its line items in one transaction.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice, lines []models.InvoiceLine) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := squirrel.Insert("invoices").
		Columns(invoiceColumns...).
		Values(invoice.ID, invoice.CompanyID, invoice.CounterpartyID, invoice.Direction,
			invoice.Number, invoice.Date, invoice.DocumentType, invoice.Currency,
			invoice.CounterpartyTaxID, invoice.TotalAmount, invoice.TaxableAmount,
			invoice.TaxAmount, invoice.PaymentDueDate, invoice.PaymentMethod,
			invoice.PaymentIBAN, invoice.CreatedAt, invoice.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	for _, line := range lines {
		lineQuery := squirrel.Insert("invoice_lines").
			Columns("id", "invoice_id", "line_number", "description", "quantity",
				"unit_price", "total_price", "vat_rate", "unit_of_measure").
			Values(line.ID, invoice.ID, line.LineNumber, line.Description, line.Quantity,
				line.UnitPrice, line.TotalPrice, line.VatRate, line.UnitOfMeasure).
			PlaceholderFormat(squirrel.Dollar)

		sql, args, err := lineQuery.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("failed to insert invoice line: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ExistsByNaturalKey is the deduplication gate: exact string match on
// (number, counterparty tax id) within the company scope, no normalization.
func (r *InvoiceRepository) ExistsByNaturalKey(ctx context.Context, companyID uuid.UUID, number, counterpartyTaxID string) (bool, error) {
	query := squirrel.Select("1").
		From("invoices").
		Where(squirrel.Eq{
			"company_id":          companyID,
			"number":              number,
			"counterparty_tax_id": counterpartyTaxID,
		}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	var one int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByNaturalKey returns the already-imported invoice a duplicate links to.
func (r *InvoiceRepository) GetByNaturalKey(ctx context.Context, companyID uuid.UUID, number, counterpartyTaxID string) (*models.Invoice, error) {
	query := squirrel.Select(invoiceColumns...).
		From("invoices").
		Where(squirrel.Eq{
			"company_id":          companyID,
			"number":              number,
			"counterparty_tax_id": counterpartyTaxID,
		}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var inv models.Invoice
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&inv.ID, &inv.CompanyID, &inv.CounterpartyID, &inv.Direction, &inv.Number,
		&inv.Date, &inv.DocumentType, &inv.Currency, &inv.CounterpartyTaxID,
		&inv.TotalAmount, &inv.TaxableAmount, &inv.TaxAmount, &inv.PaymentDueDate,
		&inv.PaymentMethod, &inv.PaymentIBAN, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &inv, nil
}

func (r *InvoiceRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	query := squirrel.Select(invoiceColumns...).
		From("invoices").
		Where(squirrel.Eq{"company_id": companyID}).
		OrderBy("date DESC, created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
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

	var invoices []*models.Invoice
	for rows.Next() {
		var inv models.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.CompanyID, &inv.CounterpartyID, &inv.Direction, &inv.Number,
			&inv.Date, &inv.DocumentType, &inv.Currency, &inv.CounterpartyTaxID,
			&inv.TotalAmount, &inv.TaxableAmount, &inv.TaxAmount, &inv.PaymentDueDate,
			&inv.PaymentMethod, &inv.PaymentIBAN, &inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		invoices = append(invoices, &inv)
	}

	return invoices, nil
}
