package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction is the trade direction of an invoice from the importing
// company's perspective.
type Direction string

const (
	DirectionActive  Direction = "active"  // sale issued by the company
	DirectionPassive Direction = "passive" // purchase received by the company
	DirectionUnknown Direction = "unknown" // neither party matches the company
)

// Party is one of the two trading parties extracted from an invoice document.
type Party struct {
	Name        string `json:"name"`
	TaxID       string `json:"tax_id"`
	FiscalCode  string `json:"fiscal_code,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	Province    string `json:"province,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// Payment is one payment instruction row.
type Payment struct {
	Method  string          `json:"method"`
	DueDate *time.Time      `json:"due_date,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
	IBAN    string          `json:"iban,omitempty"`
}

// Line is one invoice line item.
type Line struct {
	LineNumber    int             `json:"line_number"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	VatRate       decimal.Decimal `json:"vat_rate"`
	UnitOfMeasure string          `json:"unit_of_measure,omitempty"`
}

// VatSummary is one VAT recap row (DatiRiepilogo).
type VatSummary struct {
	VatRate         decimal.Decimal `json:"vat_rate"`
	TaxableAmount   decimal.Decimal `json:"taxable_amount"`
	VatAmount       decimal.Decimal `json:"vat_amount"`
	ExemptionNature string          `json:"exemption_nature,omitempty"`
}

// ParsedInvoice is the canonical extraction result of one document.
// Instances are immutable after extraction; a re-import produces a new one.
type ParsedInvoice struct {
	InvoiceNumber string    `json:"invoice_number"`
	InvoiceDate   time.Time `json:"invoice_date"`
	DocumentType  string    `json:"document_type"`
	Currency      string    `json:"currency"`

	Supplier Party `json:"supplier"`
	Buyer    Party `json:"buyer"`

	TotalAmount   decimal.Decimal `json:"total_amount"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`

	Payments     []Payment    `json:"payments,omitempty"`
	Lines        []Line       `json:"lines,omitempty"`
	VatSummaries []VatSummary `json:"vat_summaries,omitempty"`

	DeliveryNoteNumbers []string `json:"delivery_note_numbers,omitempty"`
	OrderNumbers        []string `json:"order_numbers,omitempty"`
}

// PrimaryPayment returns the first payment carrying a due date, else the
// first payment, else nil.
func (p *ParsedInvoice) PrimaryPayment() *Payment {
	for i := range p.Payments {
		if p.Payments[i].DueDate != nil {
			return &p.Payments[i]
		}
	}
	if len(p.Payments) > 0 {
		return &p.Payments[0]
	}
	return nil
}

// Counterparty returns the trading party opposite the importing company
// for the given direction: the supplier of a purchase, the buyer of a sale.
func (p *ParsedInvoice) Counterparty(dir Direction) Party {
	if dir == DirectionActive {
		return p.Buyer
	}
	return p.Supplier
}

// Invoice is a persisted invoice record.
type Invoice struct {
	ID                uuid.UUID       `db:"id"`
	CompanyID         uuid.UUID       `db:"company_id"`
	CounterpartyID    uuid.UUID       `db:"counterparty_id"`
	Direction         Direction       `db:"direction"`
	Number            string          `db:"number"`
	Date              time.Time       `db:"date"`
	DocumentType      string          `db:"document_type"`
	Currency          string          `db:"currency"`
	CounterpartyTaxID string          `db:"counterparty_tax_id"`
	TotalAmount       decimal.Decimal `db:"total_amount"`
	TaxableAmount     decimal.Decimal `db:"taxable_amount"`
	TaxAmount         decimal.Decimal `db:"tax_amount"`
	PaymentDueDate    *time.Time      `db:"payment_due_date"`
	PaymentMethod     string          `db:"payment_method"`
	PaymentIBAN       string          `db:"payment_iban"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// InvoiceLine is a persisted line item owned by an invoice.
type InvoiceLine struct {
	ID            uuid.UUID       `db:"id"`
	InvoiceID     uuid.UUID       `db:"invoice_id"`
	LineNumber    int             `db:"line_number"`
	Description   string          `db:"description"`
	Quantity      decimal.Decimal `db:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price"`
	TotalPrice    decimal.Decimal `db:"total_price"`
	VatRate       decimal.Decimal `db:"vat_rate"`
	UnitOfMeasure string          `db:"unit_of_measure"`
}
