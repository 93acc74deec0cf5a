package fattura

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairEncodingLatinLeaks(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantHad bool
	}{
		{"degree sign", "Societ\xe0 a 20\xb0", "Società a 20°", false},
		{"accented vowels", "citt\xe0 perch\xe9 cos\xec pu\xf2 pi\xf9", "città perché così può più", false},
		{"curly quotes", "\x91quoted\x92 \x93double\x94", "'quoted' \"double\"", false},
		{"unknown byte dropped", "ab\xffcd", "abcd", false},
		{"control stripped", "a\x00b\x1fc", "abc", false},
		{"whitespace controls kept", "a\tb\nc\r", "a\tb\nc\r", false},
		{"replacement char stripped and flagged", "a�b", "ab", true},
		{"valid utf8 untouched", "già però — ok", "già però — ok", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, had := RepairEncoding(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantHad, had)
		})
	}
}

func TestRepairEncodingIdempotent(t *testing.T) {
	in := "Societ\xe0 \x93Rossi\x94 \xb0C \x00�"
	once, had := RepairEncoding(in)
	assert.True(t, had)
	again, had := RepairEncoding(once)
	assert.Equal(t, once, again)
	assert.False(t, had)
}

func TestSanitizeXMLReportsReplacement(t *testing.T) {
	out, had := SanitizeXML("abc�def\x01")
	assert.Equal(t, "abcdef", out)
	assert.True(t, had)

	out, had = SanitizeXML("clean text")
	assert.Equal(t, "clean text", out)
	assert.False(t, had)
}

func TestSanitizeXMLRoundTrip(t *testing.T) {
	// Sanitizing already-sanitized text is a no-op.
	clean := "<FatturaElettronica><Numero>42</Numero></FatturaElettronica>"
	out, had := SanitizeXML(clean)
	assert.Equal(t, clean, out)
	assert.False(t, had)
}

func TestNormalizeNamespaces(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"strips xmlns declarations",
			`<p:FatturaElettronica xmlns:p="http://ivaservizi.agenziaentrate.gov.it/docs/xsd/fatture/v1.2" xmlns="urn:default">x</p:FatturaElettronica>`,
			`<FatturaElettronica>x</FatturaElettronica>`,
		},
		{
			"strips arbitrary prefixes",
			`<ns2:Numero>1</ns2:Numero><whatever:Data>2024-01-01</whatever:Data>`,
			`<Numero>1</Numero><Data>2024-01-01</Data>`,
		},
		{
			"repairs digit-corrupted closing tag",
			`<Numero>1</2Numero>`,
			`<Numero>1</Numero>`,
		},
		{
			"unwraps cdata before prefix stripping",
			`<p:Descrizione><![CDATA[5 < 7 & co]]></p:Descrizione>`,
			`<Descrizione>5 < 7 & co</Descrizione>`,
		},
		{
			"single-quoted xmlns",
			`<a:Tag xmlns:a='urn:x'>v</a:Tag>`,
			`<Tag>v</Tag>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeNamespaces(tt.in))
		})
	}
}

func TestNormalizeNamespacesIdempotent(t *testing.T) {
	inputs := []string{
		`<p:FatturaElettronica xmlns:p="urn:x"><ns3:Numero>1</ns3:Numero></p:FatturaElettronica>`,
		`<Numero>1</2Numero>`,
		`plain text without any tags`,
		``,
	}
	for _, in := range inputs {
		once := NormalizeNamespaces(in)
		assert.Equal(t, once, NormalizeNamespaces(once), "input: %q", in)
	}
}

func TestDecodeEntities(t *testing.T) {
	assert.Equal(t, `a < b > "c" 'd' & e`, DecodeEntities(`a &lt; b &gt; &quot;c&quot; &apos;d&apos; &amp; e`))
	// Ampersand decoded last: a double-encoded entity must not decode twice.
	assert.Equal(t, "&lt;", DecodeEntities("&amp;lt;"))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Rossi & Figli SRL", SanitizeText("  Rossi\n\t&amp;   Figli\r\nSRL  "))
	assert.Equal(t, "già", SanitizeText("gi\xe0"))
	assert.Equal(t, "", SanitizeText("  �  "))
}
