package service

import (
	"context"
	"errors"

	"fatturaflow/internal/dto"
	"fatturaflow/internal/fattura"
	"fatturaflow/internal/models"
	"fatturaflow/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrItemNotFound       = errors.New("quarantine item not found")
	ErrItemNotQuarantined = errors.New("item is not quarantined")
)

// QuarantineService manages parked documents: listing, retrying after the
// operator fixed something, archiving, and handing back the original bytes.
type QuarantineService struct {
	companies CompanyStore
	files     FileStore
	blobs     storage.BlobStore
	importer  *ImportService
	fallback  FallbackParser
	logger    *zap.Logger
}

func NewQuarantineService(
	companies CompanyStore,
	files FileStore,
	blobs storage.BlobStore,
	importer *ImportService,
	fallback FallbackParser,
	logger *zap.Logger,
) *QuarantineService {
	return &QuarantineService{
		companies: companies,
		files:     files,
		blobs:     blobs,
		importer:  importer,
		fallback:  fallback,
		logger:    logger,
	}
}

func (s *QuarantineService) List(ctx context.Context, companyID uuid.UUID) ([]dto.QuarantineItemResponse, error) {
	files, err := s.files.ListQuarantined(ctx, companyID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.QuarantineItemResponse, 0, len(files))
	for _, file := range files {
		items = append(items, quarantineItem(file))
	}
	return items, nil
}

// Retry re-runs the pipeline for one quarantined document. Extraction is
// repeated only when no parsed invoice survived the original run: a
// document parked for a late-stage failure (unknown direction, persistence)
// goes straight back to classification against the company's current state.
func (s *QuarantineService) Retry(ctx context.Context, companyID, itemID uuid.UUID) (*dto.RetryResponse, error) {
	file, err := s.files.GetByID(ctx, itemID)
	if err != nil || file == nil || file.CompanyID != companyID {
		return nil, ErrItemNotFound
	}
	if file.Status != models.FileQuarantined {
		return nil, ErrItemNotQuarantined
	}

	if file.ParsedInvoice == nil {
		inv, hadReplacement, errCode, errMsg := s.reExtract(ctx, file)
		if inv == nil {
			if err := s.files.UpdateError(ctx, file.ID, errCode, errMsg); err != nil {
				s.logger.Warn("Failed to refresh quarantine error", zap.Error(err))
			}
			return &dto.RetryResponse{
				Status:       string(models.FileQuarantined),
				ErrorCode:    errCode,
				ErrorMessage: errMsg,
			}, nil
		}
		if err := s.files.UpdateParsedInvoice(ctx, file.ID, inv, hadReplacement); err != nil {
			return nil, err
		}
		file.ParsedInvoice = inv
		file.HadReplacement = hadReplacement
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	outcome := s.importer.ImportDocument(ctx, company, file)

	resp := &dto.RetryResponse{Status: string(outcome.Status)}
	switch outcome.Status {
	case models.FileImported:
		resp.InvoiceID = outcome.InvoiceID.String()
		s.logger.Info("Quarantine retry succeeded",
			zap.String("file_id", file.ID.String()),
			zap.String("invoice_id", resp.InvoiceID))
	case models.FileDuplicate:
		resp.Duplicate = true
		if outcome.InvoiceID != nil {
			resp.InvoiceID = outcome.InvoiceID.String()
		}
	case models.FileQuarantined:
		resp.ErrorCode = outcome.ErrorCode
		resp.ErrorMessage = outcome.ErrorMessage
	}
	return resp, nil
}

// reExtract pulls the original bytes back from blob storage and runs the
// extraction pipeline again, consulting the AI fallback synchronously when
// tag extraction still yields no structure. The bool reports whether this
// fresh pass saw a replacement scar in the text.
func (s *QuarantineService) reExtract(ctx context.Context, file *models.ImportFile) (*models.ParsedInvoice, bool, string, string) {
	raw, err := s.blobs.Get(ctx, file.StoragePath)
	if err != nil {
		return nil, false, models.CodePersistenceFailed, "failed to read stored document: " + err.Error()
	}

	analysis := fattura.Analyze(raw, file.Filename)
	if analysis.Invoice != nil {
		return analysis.Invoice, analysis.HadReplacement, "", ""
	}
	if analysis.ErrorCode != "" {
		return nil, analysis.HadReplacement, analysis.ErrorCode, analysis.ErrorMessage
	}

	if s.fallback != nil {
		if inv, err := s.fallback.Parse(ctx, analysis.Text); err == nil && inv != nil {
			return inv, analysis.HadReplacement, "", ""
		}
	}
	return nil, analysis.HadReplacement, models.CodeXMLStructureInvalid, "document text did not yield an invoice structure"
}

// Archive removes an item from the active quarantine without importing it.
// The stored bytes stay in place.
func (s *QuarantineService) Archive(ctx context.Context, companyID, itemID uuid.UUID) error {
	file, err := s.files.GetByID(ctx, itemID)
	if err != nil || file == nil || file.CompanyID != companyID {
		return ErrItemNotFound
	}
	if file.Status != models.FileQuarantined {
		return ErrItemNotQuarantined
	}
	return s.files.UpdateOutcome(ctx, file.ID, models.FileArchived, file.ErrorCode, file.ErrorMessage, nil)
}

// Download returns the original document bytes for manual inspection.
func (s *QuarantineService) Download(ctx context.Context, companyID, itemID uuid.UUID) (string, []byte, error) {
	file, err := s.files.GetByID(ctx, itemID)
	if err != nil || file == nil || file.CompanyID != companyID {
		return "", nil, ErrItemNotFound
	}
	raw, err := s.blobs.Get(ctx, file.StoragePath)
	if err != nil {
		return "", nil, err
	}
	return file.Filename, raw, nil
}
