package fattura

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fatturaflow/internal/models"
)

// homeCountry is the default country for tax identifiers: identifiers
// declared under it are stored bare, foreign ones get the country prefix.
const homeCountry = "IT"

var tagRegexps sync.Map // tag name -> *regexp.Regexp

func tagRe(tag string) *regexp.Regexp {
	if re, ok := tagRegexps.Load(tag); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?s)<` + tag + `(?:\s[^>]*)?>(.*?)</` + tag + `>`)
	tagRegexps.Store(tag, re)
	return re
}

// tagValue returns the innermost text of the first occurrence of tag in
// src, or "".
func tagValue(src, tag string) string {
	if m := tagRe(tag).FindStringSubmatch(src); m != nil {
		return m[1]
	}
	return ""
}

// tagBlocks returns the inner text of every non-overlapping occurrence of
// the repeating block tag in src.
func tagBlocks(src, tag string) []string {
	matches := tagRe(tag).FindAllStringSubmatch(src, -1)
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, m[1])
	}
	return blocks
}

func fieldText(src, tag string) string {
	return SanitizeText(tagValue(src, tag))
}

// parseAmount tolerates comma decimal separators and surrounding noise.
// Unparseable values become zero rather than failing the document.
func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseInvoice walks sanitized, namespace-normalized XML and populates the
// invoice model by targeted tag extraction; there is no general DOM and no
// schema validation. The minimal validity gate is the presence of both the
// header and body blocks: missing either returns nil. Any panic during
// extraction also returns nil; the caller treats nil as "structure invalid".
func ParseInvoice(xmlText string) (inv *models.ParsedInvoice) {
	defer func() {
		if recover() != nil {
			inv = nil
		}
	}()

	header := tagValue(xmlText, "FatturaElettronicaHeader")
	body := tagValue(xmlText, "FatturaElettronicaBody")
	if header == "" || body == "" {
		return nil
	}

	general := tagValue(body, "DatiGeneraliDocumento")

	inv = &models.ParsedInvoice{
		InvoiceNumber: fieldText(general, "Numero"),
		InvoiceDate:   parseDate(tagValue(general, "Data")),
		DocumentType:  fieldText(general, "TipoDocumento"),
		Currency:      fieldText(general, "Divisa"),
		Supplier:      parseParty(tagValue(header, "CedentePrestatore")),
		Buyer:         parseParty(tagValue(header, "CessionarioCommittente")),
		Lines:         parseLines(body),
		VatSummaries:  parseVatSummaries(body),
	}

	// Taxable and tax totals are recomputed from the recap rows: the
	// per-row figures are more reliably present than the document-level
	// totals across source systems.
	for _, v := range inv.VatSummaries {
		inv.TaxableAmount = inv.TaxableAmount.Add(v.TaxableAmount)
		inv.TaxAmount = inv.TaxAmount.Add(v.VatAmount)
	}
	inv.TotalAmount = parseAmount(tagValue(general, "ImportoTotaleDocumento"))
	if inv.TotalAmount.IsZero() {
		inv.TotalAmount = inv.TaxableAmount.Add(inv.TaxAmount)
	}

	inv.Payments = parsePayments(xmlText, body, inv.TotalAmount)
	inv.DeliveryNoteNumbers = refNumbers(body, "DatiDDT", "NumeroDDT")
	inv.OrderNumbers = refNumbers(body, "DatiOrdineAcquisto", "IdDocumento")

	return inv
}

func parseParty(block string) models.Party {
	anag := tagValue(block, "DatiAnagrafici")
	registry := tagValue(anag, "Anagrafica")

	name := fieldText(registry, "Denominazione")
	if name == "" {
		first := fieldText(registry, "Nome")
		last := fieldText(registry, "Cognome")
		name = strings.TrimSpace(first + " " + last)
	}

	fiscal := tagValue(anag, "IdFiscaleIVA")
	country := strings.ToUpper(fieldText(fiscal, "IdPaese"))
	code := fieldText(fiscal, "IdCodice")
	taxID := code
	if code != "" && country != "" && country != homeCountry {
		taxID = country + code
	}

	seat := tagValue(block, "Sede")
	return models.Party{
		Name:        name,
		TaxID:       taxID,
		FiscalCode:  fieldText(anag, "CodiceFiscale"),
		Address:     fieldText(seat, "Indirizzo"),
		City:        fieldText(seat, "Comune"),
		Province:    fieldText(seat, "Provincia"),
		PostalCode:  fieldText(seat, "CAP"),
		CountryCode: strings.ToUpper(fieldText(seat, "Nazione")),
	}
}

func parseLines(body string) []models.Line {
	blocks := tagBlocks(body, "DettaglioLinee")
	lines := make([]models.Line, 0, len(blocks))
	for _, b := range blocks {
		num, _ := strconv.Atoi(strings.TrimSpace(tagValue(b, "NumeroLinea")))
		lines = append(lines, models.Line{
			LineNumber:    num,
			Description:   fieldText(b, "Descrizione"),
			Quantity:      parseAmount(tagValue(b, "Quantita")),
			UnitPrice:     parseAmount(tagValue(b, "PrezzoUnitario")),
			TotalPrice:    parseAmount(tagValue(b, "PrezzoTotale")),
			VatRate:       parseAmount(tagValue(b, "AliquotaIVA")),
			UnitOfMeasure: fieldText(b, "UnitaMisura"),
		})
	}
	return lines
}

func parseVatSummaries(body string) []models.VatSummary {
	blocks := tagBlocks(body, "DatiRiepilogo")
	summaries := make([]models.VatSummary, 0, len(blocks))
	for _, b := range blocks {
		summaries = append(summaries, models.VatSummary{
			VatRate:         parseAmount(tagValue(b, "AliquotaIVA")),
			TaxableAmount:   parseAmount(tagValue(b, "ImponibileImporto")),
			VatAmount:       parseAmount(tagValue(b, "Imposta")),
			ExemptionNature: fieldText(b, "Natura"),
		})
	}
	return summaries
}

// parsePayments scans payment-detail blocks across the whole document, not
// just under the payment section: namespace corruption can relocate them.
// When no detail block exists it falls back to the aggregate payment block
// and synthesizes a single payment defaulting to the document total.
func parsePayments(xmlText, body string, total decimal.Decimal) []models.Payment {
	blocks := tagBlocks(xmlText, "DettaglioPagamento")
	payments := make([]models.Payment, 0, len(blocks))
	for _, b := range blocks {
		payments = append(payments, models.Payment{
			Method:  fieldText(b, "ModalitaPagamento"),
			DueDate: optionalDate(tagValue(b, "DataScadenzaPagamento")),
			Amount:  parseAmount(tagValue(b, "ImportoPagamento")),
			IBAN:    fieldText(b, "IBAN"),
		})
	}
	if len(payments) > 0 {
		return payments
	}

	aggregate := tagValue(body, "DatiPagamento")
	if aggregate == "" {
		return nil
	}
	amount := parseAmount(tagValue(aggregate, "ImportoPagamento"))
	if amount.IsZero() {
		amount = total
	}
	return []models.Payment{{
		Method:  fieldText(aggregate, "ModalitaPagamento"),
		DueDate: optionalDate(tagValue(aggregate, "DataScadenzaPagamento")),
		Amount:  amount,
		IBAN:    fieldText(aggregate, "IBAN"),
	}}
}

func refNumbers(body, blockTag, numberTag string) []string {
	var refs []string
	for _, b := range tagBlocks(body, blockTag) {
		if n := fieldText(b, numberTag); n != "" {
			refs = append(refs, n)
		}
	}
	return refs
}

func optionalDate(s string) *time.Time {
	t := parseDate(s)
	if t.IsZero() {
		return nil
	}
	return &t
}
