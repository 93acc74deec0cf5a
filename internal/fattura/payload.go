package fattura

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrNoXMLMarker is returned when a signed envelope contains no recognizable
// invoice root marker anywhere in its payload.
var ErrNoXMLMarker = errors.New("no xml marker found in signed envelope")

const rootElement = "FatturaElettronica"
const bodyElement = "FatturaElettronicaBody"

// Namespace prefix spellings observed on FatturaElettronica roots in the
// wild. The empty string covers unprefixed documents.
var knownPrefixes = []string{"", "p:", "ns2:", "ns3:", "ns4:", "a:", "b:", "q1:", "nil:"}

var openPrefixRe = regexp.MustCompile(`<([A-Za-z0-9]+:)?` + rootElement + `[\s>]`)

// ExtractPayload recovers a best-effort XML text payload from raw file
// bytes. Plain .xml files pass through as-is; .p7m signed envelopes are
// scanned for the embedded XML without parsing the CMS structure. The only
// failure mode is ErrNoXMLMarker; every decode step is recovered.
func ExtractPayload(raw []byte, filename string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("payload extraction panicked: %v", r)
		}
	}()

	if strings.HasSuffix(strings.ToLower(filename), ".p7m") {
		return extractFromEnvelope(raw)
	}
	return string(raw), nil
}

// extractFromEnvelope digs the XML out of a DER-encoded CMS envelope by
// marker search. Signature padding routinely interleaves control bytes
// inside tag names, so everything below 0x20 (except tab/LF/CR) is dropped
// before decoding.
func extractFromEnvelope(raw []byte) (string, error) {
	// Some transports base64-encode the whole envelope. A DER envelope
	// starts with 0x30; an uppercase ASCII letter means base64 text.
	if len(raw) > 0 && raw[0] >= 'A' && raw[0] <= 'Z' {
		if decoded, err := base64.StdEncoding.DecodeString(compactBase64(raw)); err == nil {
			raw = decoded
		}
	}

	start := earliestMarker(raw)
	if start < 0 {
		return "", ErrNoXMLMarker
	}

	text := decodeFiltered(raw[start:])

	closing := "</" + rootElement + ">"
	if idx, tag := earliestClose(text, rootElement); idx >= 0 {
		return text[:idx+len(tag)], nil
	}

	// No recognizable root close: the body sub-element is more reliably
	// terminated, so cut there and synthesize the outer closing tag using
	// whatever prefix the opening tag carries.
	if idx, tag := earliestClose(text, bodyElement); idx >= 0 {
		if m := openPrefixRe.FindStringSubmatch(text); m != nil {
			closing = "</" + m[1] + rootElement + ">"
		}
		return text[:idx+len(tag)] + closing, nil
	}

	return text, nil
}

// earliestMarker returns the offset of the first known root-element opening
// in buf, or -1. The XML declaration counts as an opening.
func earliestMarker(buf []byte) int {
	best := -1
	markers := make([][]byte, 0, len(knownPrefixes)+1)
	markers = append(markers, []byte("<?xml"))
	for _, p := range knownPrefixes {
		markers = append(markers, []byte("<"+p+rootElement))
	}
	for _, m := range markers {
		if idx := bytes.Index(buf, m); idx >= 0 && (best < 0 || idx < best) {
			best = idx
		}
	}
	return best
}

// earliestClose locates the first closing tag of element under any known
// prefix spelling. Returns the offset and matched tag, or (-1, "").
func earliestClose(text, element string) (int, string) {
	best, tag := -1, ""
	for _, p := range knownPrefixes {
		candidate := "</" + p + element + ">"
		if idx := strings.Index(text, candidate); idx >= 0 && (best < 0 || idx < best) {
			best, tag = idx, candidate
		}
	}
	return best, tag
}

// decodeFiltered drops control bytes (except tab, LF, CR) and invalid UTF-8
// sequences. It never fails: bad bytes are skipped, not reported.
func decodeFiltered(buf []byte) string {
	filtered := make([]byte, 0, len(buf))
	for _, b := range buf {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			continue
		}
		filtered = append(filtered, b)
	}

	if utf8.Valid(filtered) {
		return string(filtered)
	}
	var sb strings.Builder
	sb.Grow(len(filtered))
	for len(filtered) > 0 {
		r, size := utf8.DecodeRune(filtered)
		if r == utf8.RuneError && size == 1 {
			filtered = filtered[1:]
			continue
		}
		sb.WriteRune(r)
		filtered = filtered[size:]
	}
	return sb.String()
}

// compactBase64 strips whitespace so wrapped base64 decodes in one shot.
func compactBase64(raw []byte) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, b := range raw {
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		sb.WriteByte(b)
	}
	return sb.String()
}
