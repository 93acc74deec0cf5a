package fattura

import (
	"strings"

	"fatturaflow/internal/models"
)

// Classifier decides the trade direction of an invoice by comparing both
// parties' tax identifiers against the importing company's own identifier.
type Classifier struct {
	// Default is returned when the company's own tax id is not configured.
	// Business policy, kept configurable: silently defaulting misclassifies
	// any batch run before company setup is complete.
	Default models.Direction
}

func NewClassifier(def models.Direction) Classifier {
	if def != models.DirectionActive && def != models.DirectionPassive {
		def = models.DirectionPassive
	}
	return Classifier{Default: def}
}

// Classify is total and deterministic: exactly one of active, passive or
// unknown for any input. Matching is exact on normalized identifiers, never
// substring: unknown must surface rather than silently picking a side.
func (c Classifier) Classify(inv *models.ParsedInvoice, ownTaxID string) models.Direction {
	own := NormalizeTaxID(ownTaxID)
	if own == "" {
		return c.Default
	}
	if NormalizeTaxID(inv.Buyer.TaxID) == own {
		return models.DirectionPassive
	}
	if NormalizeTaxID(inv.Supplier.TaxID) == own {
		return models.DirectionActive
	}
	return models.DirectionUnknown
}

// NormalizeTaxID strips a leading 2-letter country prefix, drops every
// non-alphanumeric character and upper-cases, so "IT 12345678901" and
// "12345678901" compare equal.
func NormalizeTaxID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 2 && isASCIILetter(id[0]) && isASCIILetter(id[1]) {
		id = id[2:]
	}
	var sb strings.Builder
	sb.Grow(len(id))
	for i := 0; i < len(id); i++ {
		b := id[i]
		switch {
		case b >= '0' && b <= '9':
			sb.WriteByte(b)
		case b >= 'A' && b <= 'Z':
			sb.WriteByte(b)
		case b >= 'a' && b <= 'z':
			sb.WriteByte(b - 'a' + 'A')
		}
	}
	return sb.String()
}

// ComposeTaxID builds the stored form of a tax identifier from a separate
// country and code: the bare normalized code for home-country parties,
// country-prefixed otherwise, matching how tag extraction stores them. The
// code is normalized first, so a country already embedded in it is not
// doubled.
func ComposeTaxID(country, code string) string {
	code = NormalizeTaxID(code)
	country = strings.ToUpper(strings.TrimSpace(country))
	if code != "" && country != "" && country != homeCountry {
		return country + code
	}
	return code
}

func isASCIILetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
