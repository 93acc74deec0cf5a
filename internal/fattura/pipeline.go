package fattura

import (
	"fatturaflow/internal/models"
)

// Analysis is the outcome of running one raw document through payload
// extraction, sanitation and invoice extraction. Exactly one of three
// shapes: Invoice set (recognized), Text set without Invoice (candidate
// for AI fallback), or ErrorCode set (no recoverable text at all).
type Analysis struct {
	Text           string
	HadReplacement bool
	Invoice        *models.ParsedInvoice
	ErrorCode      string
	ErrorMessage   string
}

// Analyze runs the full extraction pipeline over one document. Pure over
// its inputs: safe to call concurrently for different documents. Order of
// the sanitation passes is load-bearing: encoding repair, replacement and
// control stripping, then namespace normalization.
func Analyze(raw []byte, filename string) Analysis {
	text, err := ExtractPayload(raw, filename)
	if err != nil {
		return Analysis{
			ErrorCode:    models.CodeNoXMLMarkerFound,
			ErrorMessage: err.Error(),
		}
	}

	text, hadReplacement := RepairEncoding(text)
	text, fromSanitize := SanitizeXML(text)
	hadReplacement = hadReplacement || fromSanitize
	text = NormalizeNamespaces(text)

	inv := ParseInvoice(text)
	return Analysis{
		Text:           text,
		HadReplacement: hadReplacement,
		Invoice:        inv,
	}
}
