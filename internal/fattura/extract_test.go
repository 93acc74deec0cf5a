package fattura

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInvoice = `<?xml version="1.0" encoding="UTF-8"?>
<FatturaElettronica versione="FPR12">
  <FatturaElettronicaHeader>
    <CedentePrestatore>
      <DatiAnagrafici>
        <IdFiscaleIVA><IdPaese>IT</IdPaese><IdCodice>98765432109</IdCodice></IdFiscaleIVA>
        <CodiceFiscale>98765432109</CodiceFiscale>
        <Anagrafica><Denominazione>Rossi &amp; Figli SRL</Denominazione></Anagrafica>
      </DatiAnagrafici>
      <Sede>
        <Indirizzo>Via Roma 1</Indirizzo>
        <CAP>20121</CAP>
        <Comune>Milano</Comune>
        <Provincia>MI</Provincia>
        <Nazione>IT</Nazione>
      </Sede>
    </CedentePrestatore>
    <CessionarioCommittente>
      <DatiAnagrafici>
        <IdFiscaleIVA><IdPaese>IT</IdPaese><IdCodice>12345678901</IdCodice></IdFiscaleIVA>
        <Anagrafica><Nome>Mario</Nome><Cognome>Bianchi</Cognome></Anagrafica>
      </DatiAnagrafici>
      <Sede>
        <Indirizzo>Corso Italia 5</Indirizzo>
        <CAP>10121</CAP>
        <Comune>Torino</Comune>
        <Provincia>TO</Provincia>
        <Nazione>IT</Nazione>
      </Sede>
    </CessionarioCommittente>
  </FatturaElettronicaHeader>
  <FatturaElettronicaBody>
    <DatiGenerali>
      <DatiGeneraliDocumento>
        <TipoDocumento>TD01</TipoDocumento>
        <Divisa>EUR</Divisa>
        <Data>2024-03-15</Data>
        <Numero>2024/42</Numero>
        <ImportoTotaleDocumento>122.00</ImportoTotaleDocumento>
      </DatiGeneraliDocumento>
      <DatiDDT><NumeroDDT>DDT-7</NumeroDDT></DatiDDT>
      <DatiOrdineAcquisto><IdDocumento>ORD-99</IdDocumento></DatiOrdineAcquisto>
    </DatiGenerali>
    <DatiBeniServizi>
      <DettaglioLinee>
        <NumeroLinea>1</NumeroLinea>
        <Descrizione>Consulenza tecnica</Descrizione>
        <Quantita>2.00</Quantita>
        <UnitaMisura>ORE</UnitaMisura>
        <PrezzoUnitario>40.00</PrezzoUnitario>
        <PrezzoTotale>80.00</PrezzoTotale>
        <AliquotaIVA>22.00</AliquotaIVA>
      </DettaglioLinee>
      <DettaglioLinee>
        <NumeroLinea>2</NumeroLinea>
        <Descrizione>Materiale</Descrizione>
        <Quantita>1.00</Quantita>
        <PrezzoUnitario>20.00</PrezzoUnitario>
        <PrezzoTotale>20.00</PrezzoTotale>
        <AliquotaIVA>22.00</AliquotaIVA>
      </DettaglioLinee>
      <DatiRiepilogo>
        <AliquotaIVA>22.00</AliquotaIVA>
        <ImponibileImporto>100.00</ImponibileImporto>
        <Imposta>22.00</Imposta>
      </DatiRiepilogo>
    </DatiBeniServizi>
    <DatiPagamento>
      <DettaglioPagamento>
        <ModalitaPagamento>MP05</ModalitaPagamento>
        <ImportoPagamento>61.00</ImportoPagamento>
      </DettaglioPagamento>
      <DettaglioPagamento>
        <ModalitaPagamento>MP05</ModalitaPagamento>
        <DataScadenzaPagamento>2024-04-30</DataScadenzaPagamento>
        <ImportoPagamento>61.00</ImportoPagamento>
        <IBAN>IT60X0542811101000000123456</IBAN>
      </DettaglioPagamento>
    </DatiPagamento>
  </FatturaElettronicaBody>
</FatturaElettronica>`

func TestParseInvoice(t *testing.T) {
	inv := ParseInvoice(sampleInvoice)
	require.NotNil(t, inv)

	assert.Equal(t, "2024/42", inv.InvoiceNumber)
	assert.Equal(t, "2024-03-15", inv.InvoiceDate.Format("2006-01-02"))
	assert.Equal(t, "TD01", inv.DocumentType)
	assert.Equal(t, "EUR", inv.Currency)

	assert.Equal(t, "Rossi & Figli SRL", inv.Supplier.Name)
	assert.Equal(t, "98765432109", inv.Supplier.TaxID) // home country, stored bare
	assert.Equal(t, "Milano", inv.Supplier.City)
	assert.Equal(t, "MI", inv.Supplier.Province)

	assert.Equal(t, "Mario Bianchi", inv.Buyer.Name) // Nome+Cognome fallback
	assert.Equal(t, "12345678901", inv.Buyer.TaxID)

	require.Len(t, inv.Lines, 2)
	assert.Equal(t, 1, inv.Lines[0].LineNumber)
	assert.Equal(t, "Consulenza tecnica", inv.Lines[0].Description)
	assert.Equal(t, "ORE", inv.Lines[0].UnitOfMeasure)
	assert.True(t, inv.Lines[0].TotalPrice.Equal(decimal.RequireFromString("80.00")))

	require.Len(t, inv.VatSummaries, 1)
	assert.True(t, inv.TaxableAmount.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, inv.TaxAmount.Equal(decimal.RequireFromString("22.00")))
	assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("122.00")))

	require.Len(t, inv.Payments, 2)
	primary := inv.PrimaryPayment()
	require.NotNil(t, primary)
	require.NotNil(t, primary.DueDate)
	assert.Equal(t, "2024-04-30", primary.DueDate.Format("2006-01-02"))
	assert.Equal(t, "IT60X0542811101000000123456", primary.IBAN)

	assert.Equal(t, []string{"DDT-7"}, inv.DeliveryNoteNumbers)
	assert.Equal(t, []string{"ORD-99"}, inv.OrderNumbers)
}

func TestParseInvoiceMissingBlocks(t *testing.T) {
	assert.Nil(t, ParseInvoice("<FatturaElettronicaHeader>only header</FatturaElettronicaHeader>"))
	assert.Nil(t, ParseInvoice("<FatturaElettronicaBody>only body</FatturaElettronicaBody>"))
	assert.Nil(t, ParseInvoice("not xml at all"))
	assert.Nil(t, ParseInvoice(""))
}

func TestParseInvoiceForeignTaxIDPrefixed(t *testing.T) {
	doc := `<FatturaElettronicaHeader>
  <CedentePrestatore><DatiAnagrafici>
    <IdFiscaleIVA><IdPaese>DE</IdPaese><IdCodice>123456789</IdCodice></IdFiscaleIVA>
    <Anagrafica><Denominazione>GmbH</Denominazione></Anagrafica>
  </DatiAnagrafici></CedentePrestatore>
  <CessionarioCommittente><DatiAnagrafici>
    <IdFiscaleIVA><IdPaese>IT</IdPaese><IdCodice>12345678901</IdCodice></IdFiscaleIVA>
    <Anagrafica><Denominazione>SRL</Denominazione></Anagrafica>
  </DatiAnagrafici></CessionarioCommittente>
</FatturaElettronicaHeader>
<FatturaElettronicaBody>
  <DatiGeneraliDocumento><Numero>7</Numero><Data>2024-01-10</Data></DatiGeneraliDocumento>
</FatturaElettronicaBody>`

	inv := ParseInvoice(doc)
	require.NotNil(t, inv)
	assert.Equal(t, "DE123456789", inv.Supplier.TaxID)
	assert.Equal(t, "12345678901", inv.Buyer.TaxID)
}

func TestParseInvoicePaymentFallback(t *testing.T) {
	// No DettaglioPagamento anywhere: synthesize one payment from the
	// aggregate block, defaulting its amount to the document total.
	doc := `<FatturaElettronicaHeader><CedentePrestatore/></FatturaElettronicaHeader>
<FatturaElettronicaBody>
  <DatiGeneraliDocumento>
    <Numero>9</Numero><Data>2024-02-01</Data>
    <ImportoTotaleDocumento>250.00</ImportoTotaleDocumento>
  </DatiGeneraliDocumento>
  <DatiPagamento><ModalitaPagamento>MP01</ModalitaPagamento></DatiPagamento>
</FatturaElettronicaBody>`

	inv := ParseInvoice(doc)
	require.NotNil(t, inv)
	require.Len(t, inv.Payments, 1)
	assert.Equal(t, "MP01", inv.Payments[0].Method)
	assert.True(t, inv.Payments[0].Amount.Equal(decimal.RequireFromString("250.00")))
	assert.Nil(t, inv.Payments[0].DueDate)
}

func TestParseInvoiceRecomputesTotalsFromRecap(t *testing.T) {
	// Document-level total missing: total falls back to taxable + tax
	// summed over the recap rows.
	doc := `<FatturaElettronicaHeader><CedentePrestatore/></FatturaElettronicaHeader>
<FatturaElettronicaBody>
  <DatiGeneraliDocumento><Numero>3</Numero><Data>2024-05-01</Data></DatiGeneraliDocumento>
  <DatiRiepilogo><AliquotaIVA>22.00</AliquotaIVA><ImponibileImporto>50,00</ImponibileImporto><Imposta>11,00</Imposta></DatiRiepilogo>
  <DatiRiepilogo><AliquotaIVA>0</AliquotaIVA><ImponibileImporto>10.00</ImponibileImporto><Imposta>0</Imposta><Natura>N2.2</Natura></DatiRiepilogo>
</FatturaElettronicaBody>`

	inv := ParseInvoice(doc)
	require.NotNil(t, inv)
	assert.True(t, inv.TaxableAmount.Equal(decimal.RequireFromString("60.00")))
	assert.True(t, inv.TaxAmount.Equal(decimal.RequireFromString("11.00")))
	assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("71.00")))
	assert.Equal(t, "N2.2", inv.VatSummaries[1].ExemptionNature)
}
