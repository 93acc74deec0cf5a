package models

import (
	"time"

	"github.com/google/uuid"
)

// Stage error codes surfaced to operators. Stable strings: the UI and the
// retry tooling match on them.
const (
	CodeNoXMLMarkerFound    = "NoXmlMarkerFound"
	CodeXMLStructureInvalid = "XmlStructureInvalid"
	CodeDirectionUnknown    = "DirectionUnknown"
	CodePersistenceFailed   = "PersistenceFailed"
)

// RawDocument is one uploaded file (or one ZIP entry) entering the pipeline.
// Ephemeral: owned by the orchestrator for the duration of one import run.
type RawDocument struct {
	Filename string
	Bytes    []byte
	MimeHint string
}

type FileStatus string

const (
	FilePending     FileStatus = "pending"
	FileImported    FileStatus = "imported"
	FileDuplicate   FileStatus = "duplicate"
	FileQuarantined FileStatus = "quarantined"
	FileArchived    FileStatus = "archived"
)

// ImportFile is the audit record for one document: it maps the stored
// original bytes to an outcome, and doubles as the quarantine item when
// Status is FileQuarantined. ParsedInvoice is retained whenever extraction
// succeeded so a later stage failure can be retried without re-parsing.
type ImportFile struct {
	ID             uuid.UUID      `db:"id"`
	CompanyID      uuid.UUID      `db:"company_id"`
	BatchID        uuid.UUID      `db:"batch_id"`
	Filename       string         `db:"filename"`
	StoragePath    string         `db:"storage_path"`
	Status         FileStatus     `db:"status"`
	ErrorCode      string         `db:"error_code"`
	ErrorMessage   string         `db:"error_message"`
	HadReplacement bool           `db:"had_replacement"`
	ParsedInvoice  *ParsedInvoice `db:"parsed_invoice"`
	InvoiceID      *uuid.UUID     `db:"invoice_id"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}
