package dto

// RecognizedFile is a document whose invoice was successfully extracted
// during analysis, either by the tag extractor or by the AI fallback.
type RecognizedFile struct {
	FileID         string         `json:"file_id"`
	Filename       string         `json:"filename"`
	Source         string         `json:"source"` // "extractor" or "ai"
	HadReplacement bool           `json:"had_replacement,omitempty"`
	Invoice        InvoiceSummary `json:"invoice"`
}

// FailedFile is a document that yielded no usable invoice during analysis.
type FailedFile struct {
	FileID       string `json:"file_id"`
	Filename     string `json:"filename"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// BatchPreviewResponse is the analysis result shown to the operator before
// confirmation. Recognized + Failed + FallbackPending account for every
// uploaded document.
type BatchPreviewResponse struct {
	BatchID         string           `json:"batch_id"`
	Status          string           `json:"status"`
	TotalFiles      int              `json:"total_files"`
	Recognized      []RecognizedFile `json:"recognized"`
	FallbackPending int              `json:"fallback_pending"`
	Failed          []FailedFile     `json:"failed"`
}

// ImportReportResponse is the aggregate outcome of one confirmed batch.
type ImportReportResponse struct {
	BatchID            string                   `json:"batch_id"`
	TotalFiles         int                      `json:"total_files"`
	Imported           int                      `json:"imported"`
	Duplicates         int                      `json:"duplicates"`
	Quarantined        int                      `json:"quarantined"`
	ActiveCount        int                      `json:"active_count"`
	PassiveCount       int                      `json:"passive_count"`
	UpcomingDueActive  string                   `json:"upcoming_due_active"`
	UpcomingDuePassive string                   `json:"upcoming_due_passive"`
	Quarantine         []QuarantineItemResponse `json:"quarantine"`
}
