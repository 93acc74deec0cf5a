package fattura

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fatturaflow/internal/models"
)

func TestAnalyzeRecognizesInvoice(t *testing.T) {
	got := Analyze([]byte(sampleInvoice), "IT98765432109_00042.xml")

	require.NotNil(t, got.Invoice)
	assert.Empty(t, got.ErrorCode)
	assert.False(t, got.HadReplacement)
	assert.Equal(t, "2024/42", got.Invoice.InvoiceNumber)
}

func TestAnalyzeSurfacesReplacementScar(t *testing.T) {
	// A replacement character left by an earlier transport must be
	// reported even though sanitation drops it from the text.
	scarred := strings.Replace(sampleInvoice, "Rossi &amp; Figli SRL", "Rossi�SRL", 1)
	require.NotEqual(t, sampleInvoice, scarred)

	got := Analyze([]byte(scarred), "inv.xml")

	require.NotNil(t, got.Invoice)
	assert.True(t, got.HadReplacement)
	assert.Equal(t, "RossiSRL", got.Invoice.Supplier.Name)
	assert.NotContains(t, got.Text, "�")
}

func TestAnalyzeRepairedLatinBytesNotFlagged(t *testing.T) {
	// A mojibake byte repaired losslessly is not a scar: nothing was lost.
	repaired := strings.Replace(sampleInvoice, "Consulenza tecnica", "Attivit\xe0 varie", 1)

	got := Analyze([]byte(repaired), "inv.xml")

	require.NotNil(t, got.Invoice)
	assert.False(t, got.HadReplacement)
	assert.Equal(t, "Attività varie", got.Invoice.Lines[0].Description)
}

func TestAnalyzeNoMarker(t *testing.T) {
	got := Analyze([]byte{0x30, 0x82, 0x01, 0x00}, "garbage.xml.p7m")

	assert.Nil(t, got.Invoice)
	assert.Equal(t, models.CodeNoXMLMarkerFound, got.ErrorCode)
	assert.NotEmpty(t, got.ErrorMessage)
}
