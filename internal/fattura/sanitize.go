package fattura

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// latinRepairs maps Latin-1/Windows-1252 bytes that leak into UTF-8 text
// to their correct characters. Anything invalid and not listed here is
// dropped outright.
var latinRepairs = map[byte]string{
	0xB0: "°", // degree sign
	0xE0: "à",
	0xE8: "è",
	0xE9: "é",
	0xEC: "ì",
	0xF2: "ò",
	0xF9: "ù",
	0xC8: "È",
	0xC9: "É",
	0x91: "'",
	0x92: "'",
	0x93: "\"",
	0x94: "\"",
	0xA0: " ",
}

// RepairEncoding fixes stray Latin-1 bytes that leaked into UTF-8 text,
// strips control characters (except tab, LF, CR) and the Unicode
// replacement character. The returned flag reports whether a genuine
// replacement character was dropped: unlike a repaired Latin-1 byte, it
// marks text some earlier transport already lost. Idempotent: repaired
// output passes through unchanged with a false flag.
func RepairEncoding(s string) (string, bool) {
	var sb strings.Builder
	sb.Grow(len(s))
	hadReplacement := false
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			if repl, ok := latinRepairs[s[0]]; ok {
				sb.WriteString(repl)
			}
			s = s[1:]
			continue
		}
		s = s[size:]
		if r == '�' {
			hadReplacement = true
			continue
		}
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String(), hadReplacement
}

// SanitizeXML removes the Unicode replacement character and remaining
// control characters. The returned flag reports whether a replacement
// character was present: it signals likely information loss upstream and
// is surfaced to the operator as a soft warning.
func SanitizeXML(s string) (string, bool) {
	hadReplacement := strings.ContainsRune(s, '�')
	cleaned := strings.Map(func(r rune) rune {
		if r == '�' {
			return -1
		}
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
	return cleaned, hadReplacement
}

var (
	cdataRe     = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	xmlnsRe     = regexp.MustCompile(`\s+xmlns(?::[A-Za-z0-9._-]+)?\s*=\s*(?:"[^"]*"|'[^']*')`)
	prefixRe    = regexp.MustCompile(`<\s*(/?)[A-Za-z0-9._-]+:`)
	digitTailRe = regexp.MustCompile(`</[0-9]+\s*([A-Za-z])`)
)

// NormalizeNamespaces makes downstream tag extraction prefix-agnostic:
// CDATA sections are unwrapped, xmlns declarations removed, namespace
// prefixes stripped from opening and closing tags, and the corruption
// pattern where a leading digit replaces a dropped prefix colon on a
// closing tag is repaired. Idempotent.
func NormalizeNamespaces(s string) string {
	s = cdataRe.ReplaceAllString(s, "$1")
	s = xmlnsRe.ReplaceAllString(s, "")
	s = prefixRe.ReplaceAllString(s, "<$1")
	s = digitTailRe.ReplaceAllString(s, "</$1")
	return s
}

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)

// DecodeEntities decodes the five standard XML entities. The ampersand is
// decoded last so "&amp;lt;" yields "&lt;" and not "<".
func DecodeEntities(s string) string {
	s = entityReplacer.Replace(s)
	return strings.ReplaceAll(s, "&amp;", "&")
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// SanitizeText prepares an extracted field value for persistence: entity
// decode, whitespace collapse, trim, and a second encoding-repair pass for
// replacement-character scarring left by earlier transports.
func SanitizeText(s string) string {
	s, _ = RepairEncoding(s)
	s = DecodeEntities(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
