package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapFallbackInvoice(t *testing.T) {
	reply := `{
		"invoice_number": "2024/300",
		"invoice_date": "2024-05-01",
		"document_type": "TD01",
		"currency": "EUR",
		"supplier": {"name": "Fornitore SRL", "tax_id": "IT11111111111", "country_code": "it"},
		"buyer": {"name": "Cliente SPA", "tax_id": "22222222222", "country_code": "IT"},
		"taxable_amount": "100.00",
		"tax_amount": "22.00",
		"total_amount": "122,00",
		"payment_due_date": "2024-06-01",
		"payment_method": "MP05",
		"payment_amount": ""
	}`

	inv, err := mapFallbackInvoice(reply)
	require.NoError(t, err)

	assert.Equal(t, "2024/300", inv.InvoiceNumber)
	assert.Equal(t, "2024-05-01", inv.InvoiceDate.Format("2006-01-02"))
	// Tax ids come back normalized like the tag extractor produces them.
	assert.Equal(t, "11111111111", inv.Supplier.TaxID)
	assert.Equal(t, "22222222222", inv.Buyer.TaxID)
	assert.Equal(t, "IT", inv.Supplier.CountryCode)
	// Comma decimal separator is tolerated.
	assert.Equal(t, "122.00", inv.TotalAmount.StringFixed(2))

	require.Len(t, inv.Payments, 1)
	require.NotNil(t, inv.Payments[0].DueDate)
	assert.Equal(t, "2024-06-01", inv.Payments[0].DueDate.Format("2006-01-02"))
	// Missing payment amount defaults to the document total.
	assert.Equal(t, "122.00", inv.Payments[0].Amount.StringFixed(2))
}

func TestMapFallbackInvoiceForeignTaxIDPrefixed(t *testing.T) {
	// A foreign party keeps its country prefix, matching the form the tag
	// extractor stores: recovered and extracted copies of the same invoice
	// must land on the same dedup key.
	reply := `{
		"invoice_number": "RE-77",
		"invoice_date": "2024-05-01",
		"supplier": {"name": "Lieferant GmbH", "tax_id": "DE123456789", "country_code": "DE"},
		"buyer": {"name": "Cliente SPA", "tax_id": "22222222222", "country_code": "IT"},
		"taxable_amount": "100.00",
		"tax_amount": "0",
		"total_amount": "100.00"
	}`

	inv, err := mapFallbackInvoice(reply)
	require.NoError(t, err)

	assert.Equal(t, "DE123456789", inv.Supplier.TaxID)
	assert.Equal(t, "22222222222", inv.Buyer.TaxID)
}

func TestMapFallbackInvoiceStripsCodeFence(t *testing.T) {
	reply := "```json\n{\"invoice_number\": \"1\", \"supplier\": {\"tax_id\": \"11111111111\"}, \"buyer\": {}, \"taxable_amount\": \"10\", \"tax_amount\": \"2.2\", \"total_amount\": \"\"}\n```"

	inv, err := mapFallbackInvoice(reply)
	require.NoError(t, err)

	assert.Equal(t, "1", inv.InvoiceNumber)
	// Zero total is recomputed from taxable + tax.
	assert.Equal(t, "12.20", inv.TotalAmount.StringFixed(2))
}

func TestMapFallbackInvoiceRejectsUnusableReplies(t *testing.T) {
	_, err := mapFallbackInvoice("sorry, I cannot parse this document")
	assert.Error(t, err)

	// Valid JSON but no identifying fields is just as useless.
	_, err = mapFallbackInvoice(`{"invoice_number": "", "supplier": {}, "buyer": {}}`)
	assert.Error(t, err)
}
