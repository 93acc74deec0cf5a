package models

import (
	"time"

	"github.com/google/uuid"
)

type BatchStatus string

const (
	BatchReceived             BatchStatus = "received"
	BatchAnalyzing            BatchStatus = "analyzing"
	BatchAwaitingConfirmation BatchStatus = "awaiting_confirmation"
	BatchImporting            BatchStatus = "importing"
	BatchCompleted            BatchStatus = "completed"
)

// ImportBatch is one upload run. Counters are settled when the batch
// completes; imported + duplicates + quarantined always equals TotalFiles.
type ImportBatch struct {
	ID          uuid.UUID   `db:"id"`
	CompanyID   uuid.UUID   `db:"company_id"`
	Status      BatchStatus `db:"status"`
	TotalFiles  int         `db:"total_files"`
	Imported    int         `db:"imported"`
	Duplicates  int         `db:"duplicates"`
	Quarantined int         `db:"quarantined"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}
