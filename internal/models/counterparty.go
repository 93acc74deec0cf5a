package models

import (
	"time"

	"github.com/google/uuid"
)

// Counterparty is the other trading party of an invoice, scoped to a company.
// Rows are created lazily during import (lookup-or-create on tax id).
type Counterparty struct {
	ID          uuid.UUID `db:"id"`
	CompanyID   uuid.UUID `db:"company_id"`
	Name        string    `db:"name"`
	TaxID       string    `db:"tax_id"`
	FiscalCode  string    `db:"fiscal_code"`
	Address     string    `db:"address"`
	City        string    `db:"city"`
	Province    string    `db:"province"`
	PostalCode  string    `db:"postal_code"`
	CountryCode string    `db:"country_code"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
