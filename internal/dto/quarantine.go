package dto

type QuarantineItemResponse struct {
	ID             string `json:"id"`
	Filename       string `json:"filename"`
	ErrorCode      string `json:"error_code"`
	ErrorMessage   string `json:"error_message"`
	HadReplacement bool   `json:"had_replacement,omitempty"`
	HasRecovered   bool   `json:"has_recovered_invoice"`
	StoragePath    string `json:"storage_path"`
	CreatedAt      string `json:"created_at"`
}

// RetryResponse reports the outcome of one quarantine retry: either the
// item was imported (InvoiceID set, or Duplicate true), or it stays
// quarantined with refreshed error detail.
type RetryResponse struct {
	Status       string `json:"status"`
	InvoiceID    string `json:"invoice_id,omitempty"`
	Duplicate    bool   `json:"duplicate,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}
