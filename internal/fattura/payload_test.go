package fattura

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signedXML = `<?xml version="1.0" encoding="UTF-8"?>
<p:FatturaElettronica versione="FPR12">
<FatturaElettronicaHeader><CedentePrestatore/></FatturaElettronicaHeader>
<FatturaElettronicaBody><DatiGenerali/></FatturaElettronicaBody>
</p:FatturaElettronica>`

// derWrap simulates a CMS envelope: DER header bytes before the payload,
// signature bytes after it.
func derWrap(payload []byte) []byte {
	out := []byte{0x30, 0x82, 0x1a, 0x04, 0x06, 0x09, 0x2a, 0x86}
	out = append(out, payload...)
	out = append(out, 0x00, 0x04, 0x82, 0xff, 0xfe, 0x30)
	return out
}

func TestExtractPayloadPlainXML(t *testing.T) {
	text, err := ExtractPayload([]byte(signedXML), "IT01234567890_00001.xml")
	require.NoError(t, err)
	assert.Equal(t, signedXML, text)
}

func TestExtractEnvelopeStripsControlBytes(t *testing.T) {
	// Inject control bytes inside tag names, the way signature padding does.
	corrupted := []byte("<?xml version=\"1.0\"?>\n<p:Fattura\x01\x02Elettronica>" +
		"<FatturaElettronicaHeader/><FatturaElettronicaBody/>" +
		"</p:Fattura\x05Elettronica>")

	text, err := ExtractPayload(derWrap(corrupted), "invoice.xml.p7m")
	require.NoError(t, err)

	want := "<?xml version=\"1.0\"?>\n<p:FatturaElettronica>" +
		"<FatturaElettronicaHeader/><FatturaElettronicaBody/>" +
		"</p:FatturaElettronica>"
	assert.Equal(t, want, text)
}

func TestExtractEnvelopeKeepsWhitespaceControls(t *testing.T) {
	text, err := ExtractPayload(derWrap([]byte(signedXML)), "invoice.xml.p7m")
	require.NoError(t, err)
	assert.Equal(t, signedXML, text)
}

func TestExtractEnvelopeBase64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(derWrap([]byte(signedXML)))
	// First byte uppercase ASCII triggers the base64 heuristic.
	require.True(t, encoded[0] >= 'A' && encoded[0] <= 'Z')

	text, err := ExtractPayload([]byte(encoded), "invoice.xml.p7m")
	require.NoError(t, err)
	assert.Equal(t, signedXML, text)
}

func TestExtractEnvelopeNoMarker(t *testing.T) {
	_, err := ExtractPayload([]byte{0x30, 0x82, 0x00, 0x01, 0x02}, "garbage.p7m")
	assert.ErrorIs(t, err, ErrNoXMLMarker)
}

func TestExtractEnvelopeBodyFallback(t *testing.T) {
	// Root closing tag destroyed by the signature: fall back to the body
	// close and synthesize the outer closing tag with the opening prefix.
	truncated := []byte("<ns2:FatturaElettronica versione=\"FPR12\">" +
		"<FatturaElettronicaHeader/>" +
		"<ns2:FatturaElettronicaBody><DatiGenerali/></ns2:FatturaElettronicaBody>" +
		"\x04\x82garbage")

	text, err := ExtractPayload(derWrap(truncated), "invoice.xml.p7m")
	require.NoError(t, err)
	assert.Contains(t, text, "</ns2:FatturaElettronicaBody>")
	assert.True(t, len(text) > 0 && text[len(text)-1] == '>')
	assert.Contains(t, text, "</ns2:FatturaElettronica>")
	assert.NotContains(t, text, "garbage")
}

func TestExtractEnvelopeUnprefixedRoot(t *testing.T) {
	plain := []byte("<FatturaElettronica><FatturaElettronicaHeader/>" +
		"<FatturaElettronicaBody/></FatturaElettronica>")
	text, err := ExtractPayload(derWrap(plain), "invoice.p7m")
	require.NoError(t, err)
	assert.Equal(t, string(plain), text)
}
