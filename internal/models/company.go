package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is an importing company account. OwnTaxID is the pivot value for
// direction classification; it may be empty until company setup is complete.
type Company struct {
	ID         uuid.UUID `db:"id"`
	Name       string    `db:"name"`
	Email      string    `db:"email"`
	Password   string    `db:"password"`
	OwnTaxID   string    `db:"own_tax_id"`
	FiscalCode string    `db:"fiscal_code"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
