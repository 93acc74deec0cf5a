package dto

// InvoiceSummary is the preview of a parsed (not yet persisted) invoice.
type InvoiceSummary struct {
	Number        string `json:"number"`
	Date          string `json:"date,omitempty"`
	DocumentType  string `json:"document_type,omitempty"`
	Currency      string `json:"currency,omitempty"`
	SupplierName  string `json:"supplier_name"`
	SupplierTaxID string `json:"supplier_tax_id"`
	BuyerName     string `json:"buyer_name"`
	BuyerTaxID    string `json:"buyer_tax_id"`
	TotalAmount   string `json:"total_amount"`
	TaxableAmount string `json:"taxable_amount"`
	TaxAmount     string `json:"tax_amount"`
	LineCount     int    `json:"line_count"`
}

// InvoiceResponse is a persisted invoice record.
type InvoiceResponse struct {
	ID                string `json:"id"`
	Direction         string `json:"direction"`
	Number            string `json:"number"`
	Date              string `json:"date,omitempty"`
	DocumentType      string `json:"document_type,omitempty"`
	Currency          string `json:"currency,omitempty"`
	CounterpartyTaxID string `json:"counterparty_tax_id"`
	TotalAmount       string `json:"total_amount"`
	TaxableAmount     string `json:"taxable_amount"`
	TaxAmount         string `json:"tax_amount"`
	PaymentDueDate    string `json:"payment_due_date,omitempty"`
	PaymentMethod     string `json:"payment_method,omitempty"`
	CreatedAt         string `json:"created_at"`
}
