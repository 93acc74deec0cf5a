package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"fatturaflow/internal/dto"
	"fatturaflow/internal/fattura"
	"fatturaflow/internal/models"
	"fatturaflow/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrBatchNotFound  = errors.New("batch not found")
	ErrBatchNotReady  = errors.New("batch is not awaiting confirmation")
	ErrEmptyBatch     = errors.New("no documents in batch")
	ErrCompanyScope   = errors.New("batch does not belong to company")
	ErrTooManyEntries = errors.New("zip archive has too many entries")
)

// Stores consumed by the orchestrator. Declared here, on the consumer side,
// so the import flow can be exercised against fakes.

type CompanyStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
}

type BatchStore interface {
	Create(ctx context.Context, batch *models.ImportBatch) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.BatchStatus) error
	UpdateCounters(ctx context.Context, id uuid.UUID, imported, duplicates, quarantined int, status models.BatchStatus) error
}

type FileStore interface {
	Create(ctx context.Context, file *models.ImportFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ImportFile, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*models.ImportFile, error)
	ListQuarantined(ctx context.Context, companyID uuid.UUID) ([]*models.ImportFile, error)
	UpdateOutcome(ctx context.Context, id uuid.UUID, status models.FileStatus, errorCode, errorMessage string, invoiceID *uuid.UUID) error
	UpdateParsedInvoice(ctx context.Context, id uuid.UUID, inv *models.ParsedInvoice, hadReplacement bool) error
	UpdateError(ctx context.Context, id uuid.UUID, errorCode, errorMessage string) error
}

type InvoiceStore interface {
	Create(ctx context.Context, invoice *models.Invoice, lines []models.InvoiceLine) error
	ExistsByNaturalKey(ctx context.Context, companyID uuid.UUID, number, counterpartyTaxID string) (bool, error)
	GetByNaturalKey(ctx context.Context, companyID uuid.UUID, number, counterpartyTaxID string) (*models.Invoice, error)
}

type CounterpartyStore interface {
	Create(ctx context.Context, cp *models.Counterparty) error
	FindByTaxID(ctx context.Context, companyID uuid.UUID, taxID string) (*models.Counterparty, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
}

// FallbackParser recovers a structured invoice from text the tag extractor
// could not handle. Best-effort: an error means "no result", never fatal.
type FallbackParser interface {
	Parse(ctx context.Context, xmlText string) (*models.ParsedInvoice, error)
}

// RegistryLookup enriches a counterparty from an external tax registry.
// Best-effort like FallbackParser.
type RegistryLookup interface {
	Lookup(ctx context.Context, taxID, countryCode string) (*RegistryInfo, error)
}

type fallbackTask struct {
	fileID uuid.UUID
	text   string
}

// ImportService drives one batch of documents end to end: extraction,
// classification, deduplication, persistence, with a quarantine branch from
// every stage. Analysis runs per-document concurrently; the importing phase
// is sequential because counterparty lookup-or-create is check-then-act.
type ImportService struct {
	companies      CompanyStore
	batches        BatchStore
	files          FileStore
	invoices       InvoiceStore
	counterparties CounterpartyStore
	blobs          storage.BlobStore
	fallback       FallbackParser
	registry       RegistryLookup
	classifier     fattura.Classifier
	maxZipEntries  int
	logger         *zap.Logger

	tasks       chan fallbackTask
	results     chan fallbackResult
	workerWg    sync.WaitGroup
	collectorWg sync.WaitGroup
}

type fallbackResult struct {
	fileID  uuid.UUID
	invoice *models.ParsedInvoice
}

func NewImportService(
	companies CompanyStore,
	batches BatchStore,
	files FileStore,
	invoices InvoiceStore,
	counterparties CounterpartyStore,
	blobs storage.BlobStore,
	fallback FallbackParser,
	registry RegistryLookup,
	classifier fattura.Classifier,
	maxZipEntries int,
	logger *zap.Logger,
) *ImportService {
	if maxZipEntries <= 0 {
		maxZipEntries = 200
	}
	return &ImportService{
		companies:      companies,
		batches:        batches,
		files:          files,
		invoices:       invoices,
		counterparties: counterparties,
		blobs:          blobs,
		fallback:       fallback,
		registry:       registry,
		classifier:     classifier,
		maxZipEntries:  maxZipEntries,
		logger:         logger,
		tasks:          make(chan fallbackTask, 64),
		results:        make(chan fallbackResult, 64),
	}
}

// Start launches the AI-fallback workers and the result collector. The
// fallback path is decoupled from analysis so its network latency never
// blocks batch preview; results land on the file rows as they arrive.
func (s *ImportService) Start(ctx context.Context, workers int) {
	if s.fallback == nil {
		return
	}
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		s.workerWg.Add(1)
		go s.fallbackWorker(ctx)
	}
	// The results channel closes exactly once, after every worker is done.
	go func() {
		s.workerWg.Wait()
		close(s.results)
	}()
	s.collectorWg.Add(1)
	go s.collectFallbackResults(ctx)
}

// Stop waits for in-flight fallback work to drain. Call at most once,
// after no more batches will be created.
func (s *ImportService) Stop() {
	if s.fallback == nil {
		return
	}
	close(s.tasks)
	s.collectorWg.Wait()
}

func (s *ImportService) fallbackWorker(ctx context.Context) {
	defer s.workerWg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-s.tasks:
			if !ok {
				return
			}
			inv, err := s.fallback.Parse(ctx, task.text)
			if err != nil {
				s.logger.Warn("AI fallback parse failed",
					zap.String("file_id", task.fileID.String()),
					zap.Error(err))
				continue
			}
			select {
			case s.results <- fallbackResult{fileID: task.fileID, invoice: inv}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *ImportService) collectFallbackResults(ctx context.Context) {
	defer s.collectorWg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-s.results:
			if !ok {
				return
			}
			if res.invoice == nil {
				continue
			}
			if err := s.files.UpdateParsedInvoice(ctx, res.fileID, res.invoice, false); err != nil {
				s.logger.Warn("Failed to store AI-recovered invoice",
					zap.String("file_id", res.fileID.String()),
					zap.Error(err))
			}
		}
	}
}

// CreateBatch stores every document's original bytes, analyzes each one and
// returns the preview. Documents yielding text but no invoice are queued
// for the AI fallback; documents yielding nothing are quarantined at once.
func (s *ImportService) CreateBatch(ctx context.Context, companyID uuid.UUID, docs []models.RawDocument) (*dto.BatchPreviewResponse, error) {
	docs, err := expandArchives(docs, s.maxZipEntries)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrEmptyBatch
	}

	now := time.Now()
	batch := &models.ImportBatch{
		ID:         uuid.New(),
		CompanyID:  companyID,
		Status:     models.BatchReceived,
		TotalFiles: len(docs),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.batches.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}
	if err := s.batches.UpdateStatus(ctx, batch.ID, models.BatchAnalyzing); err != nil {
		return nil, err
	}

	// Extraction and sanitation are pure over immutable inputs: analyze
	// documents concurrently.
	analyses := make([]fattura.Analysis, len(docs))
	paths := make([]string, len(docs))
	storeErrs := make([]error, len(docs))
	var wg sync.WaitGroup
	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc := docs[i]
			// Original bytes go to durable storage before any parsing:
			// this is what guarantees the retry path.
			blobPath := path.Join(companyID.String(), batch.ID.String(),
				uuid.New().String()+"_"+path.Base(doc.Filename))
			if err := s.blobs.Put(ctx, blobPath, doc.Bytes, doc.MimeHint); err != nil {
				storeErrs[i] = err
				return
			}
			paths[i] = blobPath
			analyses[i] = fattura.Analyze(doc.Bytes, doc.Filename)
		}(i)
	}
	wg.Wait()

	preview := &dto.BatchPreviewResponse{
		BatchID:    batch.ID.String(),
		TotalFiles: len(docs),
		Recognized: []dto.RecognizedFile{},
		Failed:     []dto.FailedFile{},
	}

	for i, doc := range docs {
		file := &models.ImportFile{
			ID:          uuid.New(),
			CompanyID:   companyID,
			BatchID:     batch.ID,
			Filename:    doc.Filename,
			StoragePath: paths[i],
			Status:      models.FilePending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		switch {
		case storeErrs[i] != nil:
			file.Status = models.FileQuarantined
			file.ErrorCode = models.CodePersistenceFailed
			file.ErrorMessage = storeErrs[i].Error()
		case analyses[i].ErrorCode != "":
			file.Status = models.FileQuarantined
			file.ErrorCode = analyses[i].ErrorCode
			file.ErrorMessage = analyses[i].ErrorMessage
		default:
			file.HadReplacement = analyses[i].HadReplacement
			file.ParsedInvoice = analyses[i].Invoice
		}

		if err := s.files.Create(ctx, file); err != nil {
			return nil, fmt.Errorf("failed to record file: %w", err)
		}

		switch {
		case file.Status == models.FileQuarantined:
			preview.Failed = append(preview.Failed, dto.FailedFile{
				FileID:       file.ID.String(),
				Filename:     file.Filename,
				ErrorCode:    file.ErrorCode,
				ErrorMessage: file.ErrorMessage,
			})
		case file.ParsedInvoice != nil:
			preview.Recognized = append(preview.Recognized, dto.RecognizedFile{
				FileID:         file.ID.String(),
				Filename:       file.Filename,
				Source:         "extractor",
				HadReplacement: file.HadReplacement,
				Invoice:        invoiceSummary(file.ParsedInvoice),
			})
		default:
			preview.FallbackPending++
			s.submitFallback(file.ID, analyses[i].Text)
		}
	}

	if err := s.batches.UpdateStatus(ctx, batch.ID, models.BatchAwaitingConfirmation); err != nil {
		return nil, err
	}
	preview.Status = string(models.BatchAwaitingConfirmation)

	s.logger.Info("Batch analyzed",
		zap.String("batch_id", batch.ID.String()),
		zap.Int("total", len(docs)),
		zap.Int("recognized", len(preview.Recognized)),
		zap.Int("fallback_pending", preview.FallbackPending),
		zap.Int("failed", len(preview.Failed)),
	)

	return preview, nil
}

func (s *ImportService) submitFallback(fileID uuid.UUID, text string) {
	if s.fallback == nil {
		return
	}
	select {
	case s.tasks <- fallbackTask{fileID: fileID, text: text}:
	default:
		s.logger.Warn("Fallback queue full, dropping candidate",
			zap.String("file_id", fileID.String()))
	}
}

// GetBatch returns the current preview of an analyzed batch, including any
// invoices the AI fallback has recovered since analysis.
func (s *ImportService) GetBatch(ctx context.Context, companyID, batchID uuid.UUID) (*dto.BatchPreviewResponse, error) {
	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, ErrBatchNotFound
	}
	if batch.CompanyID != companyID {
		return nil, ErrCompanyScope
	}

	files, err := s.files.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	preview := &dto.BatchPreviewResponse{
		BatchID:    batch.ID.String(),
		Status:     string(batch.Status),
		TotalFiles: batch.TotalFiles,
		Recognized: []dto.RecognizedFile{},
		Failed:     []dto.FailedFile{},
	}
	for _, file := range files {
		switch {
		case file.Status == models.FileQuarantined:
			preview.Failed = append(preview.Failed, dto.FailedFile{
				FileID:       file.ID.String(),
				Filename:     file.Filename,
				ErrorCode:    file.ErrorCode,
				ErrorMessage: file.ErrorMessage,
			})
		case file.ParsedInvoice != nil:
			preview.Recognized = append(preview.Recognized, dto.RecognizedFile{
				FileID:         file.ID.String(),
				Filename:       file.Filename,
				Source:         "extractor",
				HadReplacement: file.HadReplacement,
				Invoice:        invoiceSummary(file.ParsedInvoice),
			})
		case file.Status == models.FilePending:
			preview.FallbackPending++
		}
	}
	return preview, nil
}

// Confirm runs the importing phase over every pending document of the
// batch, sequentially, and settles the batch report. Every document ends
// imported, duplicate or quarantined: the report accounts for 100% of the
// batch.
func (s *ImportService) Confirm(ctx context.Context, companyID, batchID uuid.UUID) (*dto.ImportReportResponse, error) {
	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, ErrBatchNotFound
	}
	if batch.CompanyID != companyID {
		return nil, ErrCompanyScope
	}
	if batch.Status != models.BatchAwaitingConfirmation {
		return nil, ErrBatchNotReady
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	if err := s.batches.UpdateStatus(ctx, batchID, models.BatchImporting); err != nil {
		return nil, err
	}

	files, err := s.files.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	report := &dto.ImportReportResponse{
		BatchID:    batch.ID.String(),
		TotalFiles: batch.TotalFiles,
		Quarantine: []dto.QuarantineItemResponse{},
	}
	upcomingActive := decimal.Zero
	upcomingPassive := decimal.Zero
	dueHorizon := time.Now().AddDate(0, 0, 30)

	for _, file := range files {
		if file.Status != models.FilePending {
			if file.Status == models.FileQuarantined {
				report.Quarantined++
				report.Quarantine = append(report.Quarantine, quarantineItem(file))
			}
			continue
		}

		outcome := s.ImportDocument(ctx, company, file)
		switch outcome.Status {
		case models.FileImported:
			report.Imported++
			if outcome.Direction == models.DirectionActive {
				report.ActiveCount++
			} else {
				report.PassiveCount++
			}
			if outcome.DueDate != nil && outcome.DueDate.Before(dueHorizon) {
				if outcome.Direction == models.DirectionActive {
					upcomingActive = upcomingActive.Add(outcome.DueAmount)
				} else {
					upcomingPassive = upcomingPassive.Add(outcome.DueAmount)
				}
			}
		case models.FileDuplicate:
			report.Duplicates++
		case models.FileQuarantined:
			report.Quarantined++
			file.ErrorCode = outcome.ErrorCode
			file.ErrorMessage = outcome.ErrorMessage
			file.Status = models.FileQuarantined
			report.Quarantine = append(report.Quarantine, quarantineItem(file))
		}
	}

	report.UpcomingDueActive = upcomingActive.StringFixed(2)
	report.UpcomingDuePassive = upcomingPassive.StringFixed(2)

	if err := s.batches.UpdateCounters(ctx, batchID, report.Imported, report.Duplicates, report.Quarantined, models.BatchCompleted); err != nil {
		return nil, err
	}

	s.logger.Info("Batch imported",
		zap.String("batch_id", batchID.String()),
		zap.Int("imported", report.Imported),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("quarantined", report.Quarantined),
	)

	return report, nil
}

// Outcome is the terminal state of one document's importing run.
type Outcome struct {
	Status       models.FileStatus
	InvoiceID    *uuid.UUID
	Direction    models.Direction
	ErrorCode    string
	ErrorMessage string
	DueDate      *time.Time
	DueAmount    decimal.Decimal
}

// ImportDocument classifies, dedup-checks and persists one extracted
// document, updating its audit row. Shared by batch confirmation and the
// quarantine retry path; the caller guarantees file.ParsedInvoice is set
// for anything that should get past the structure gate.
func (s *ImportService) ImportDocument(ctx context.Context, company *models.Company, file *models.ImportFile) Outcome {
	inv := file.ParsedInvoice
	if inv == nil {
		return s.quarantine(ctx, file, models.CodeXMLStructureInvalid,
			"document text did not yield an invoice structure")
	}

	dir := s.classifier.Classify(inv, company.OwnTaxID)
	if dir == models.DirectionUnknown {
		msg := fmt.Sprintf("own tax id %q matches neither supplier %q nor buyer %q",
			company.OwnTaxID, inv.Supplier.TaxID, inv.Buyer.TaxID)
		return s.quarantine(ctx, file, models.CodeDirectionUnknown, msg)
	}

	counterparty := inv.Counterparty(dir)
	if counterparty.TaxID == "" {
		// The natural key degenerates to (company, number): duplicate
		// detection still runs but is weaker than usual.
		s.logger.Warn("Counterparty tax id is empty, dedup key is weak",
			zap.String("file_id", file.ID.String()),
			zap.String("number", inv.InvoiceNumber))
	}

	exists, err := s.invoices.ExistsByNaturalKey(ctx, company.ID, inv.InvoiceNumber, counterparty.TaxID)
	if err != nil {
		return s.quarantine(ctx, file, models.CodePersistenceFailed, err.Error())
	}
	if exists {
		var existingID *uuid.UUID
		if existing, err := s.invoices.GetByNaturalKey(ctx, company.ID, inv.InvoiceNumber, counterparty.TaxID); err == nil && existing != nil {
			existingID = &existing.ID
		}
		if err := s.files.UpdateOutcome(ctx, file.ID, models.FileDuplicate, "", "", existingID); err != nil {
			s.logger.Warn("Failed to record duplicate outcome", zap.Error(err))
		}
		return Outcome{Status: models.FileDuplicate, InvoiceID: existingID, Direction: dir}
	}

	cp, err := s.upsertCounterparty(ctx, company.ID, counterparty)
	if err != nil {
		return s.quarantine(ctx, file, models.CodePersistenceFailed, err.Error())
	}

	now := time.Now()
	record := &models.Invoice{
		ID:                uuid.New(),
		CompanyID:         company.ID,
		CounterpartyID:    cp.ID,
		Direction:         dir,
		Number:            inv.InvoiceNumber,
		Date:              inv.InvoiceDate,
		DocumentType:      inv.DocumentType,
		Currency:          inv.Currency,
		CounterpartyTaxID: counterparty.TaxID,
		TotalAmount:       inv.TotalAmount,
		TaxableAmount:     inv.TaxableAmount,
		TaxAmount:         inv.TaxAmount,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if primary := inv.PrimaryPayment(); primary != nil {
		record.PaymentDueDate = primary.DueDate
		record.PaymentMethod = primary.Method
		record.PaymentIBAN = primary.IBAN
	}

	lines := make([]models.InvoiceLine, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, models.InvoiceLine{
			ID:            uuid.New(),
			InvoiceID:     record.ID,
			LineNumber:    l.LineNumber,
			Description:   l.Description,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			TotalPrice:    l.TotalPrice,
			VatRate:       l.VatRate,
			UnitOfMeasure: l.UnitOfMeasure,
		})
	}

	if err := s.invoices.Create(ctx, record, lines); err != nil {
		return s.quarantine(ctx, file, models.CodePersistenceFailed, err.Error())
	}

	if err := s.files.UpdateOutcome(ctx, file.ID, models.FileImported, "", "", &record.ID); err != nil {
		s.logger.Warn("Failed to record import outcome", zap.Error(err))
	}

	outcome := Outcome{Status: models.FileImported, InvoiceID: &record.ID, Direction: dir}
	if primary := inv.PrimaryPayment(); primary != nil && primary.DueDate != nil {
		outcome.DueDate = primary.DueDate
		outcome.DueAmount = primary.Amount
	}
	return outcome
}

func (s *ImportService) quarantine(ctx context.Context, file *models.ImportFile, code, message string) Outcome {
	if err := s.files.UpdateOutcome(ctx, file.ID, models.FileQuarantined, code, message, nil); err != nil {
		s.logger.Warn("Failed to record quarantine outcome",
			zap.String("file_id", file.ID.String()),
			zap.Error(err))
	}
	return Outcome{Status: models.FileQuarantined, ErrorCode: code, ErrorMessage: message}
}

// upsertCounterparty is the check-then-act sequence that keeps the
// importing phase sequential: two concurrent imports of the same new
// counterparty would both observe "not found" and create duplicates.
func (s *ImportService) upsertCounterparty(ctx context.Context, companyID uuid.UUID, party models.Party) (*models.Counterparty, error) {
	existing, err := s.counterparties.FindByTaxID(ctx, companyID, party.TaxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Name == "" && party.Name != "" {
			if err := s.counterparties.UpdateName(ctx, existing.ID, party.Name); err != nil {
				s.logger.Warn("Failed to backfill counterparty name", zap.Error(err))
			}
			existing.Name = party.Name
		}
		return existing, nil
	}

	name := party.Name
	if name == "" && s.registry != nil {
		// Best-effort enrichment; a registry failure never blocks import.
		if info, err := s.registry.Lookup(ctx, party.TaxID, party.CountryCode); err == nil && info != nil {
			name = info.Name
		}
	}

	now := time.Now()
	cp := &models.Counterparty{
		ID:          uuid.New(),
		CompanyID:   companyID,
		Name:        name,
		TaxID:       party.TaxID,
		FiscalCode:  party.FiscalCode,
		Address:     party.Address,
		City:        party.City,
		Province:    party.Province,
		PostalCode:  party.PostalCode,
		CountryCode: party.CountryCode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.counterparties.Create(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// expandArchives flattens ZIP uploads into individual documents before the
// pipeline. One level only: zips inside zips are passed through untouched
// and will fail extraction downstream.
func expandArchives(docs []models.RawDocument, maxEntries int) ([]models.RawDocument, error) {
	out := make([]models.RawDocument, 0, len(docs))
	for _, doc := range docs {
		if !strings.HasSuffix(strings.ToLower(doc.Filename), ".zip") {
			out = append(out, doc)
			continue
		}

		reader, err := zip.NewReader(bytes.NewReader(doc.Bytes), int64(len(doc.Bytes)))
		if err != nil {
			// Not a readable archive: let the pipeline quarantine it.
			out = append(out, doc)
			continue
		}
		if len(reader.File) > maxEntries {
			return nil, fmt.Errorf("%w: %s has %d entries", ErrTooManyEntries, doc.Filename, len(reader.File))
		}
		for _, entry := range reader.File {
			if entry.FileInfo().IsDir() {
				continue
			}
			rc, err := entry.Open()
			if err != nil {
				continue
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				continue
			}
			out = append(out, models.RawDocument{
				Filename: path.Base(entry.Name),
				Bytes:    data,
				MimeHint: "application/xml",
			})
		}
	}
	return out, nil
}

func invoiceSummary(inv *models.ParsedInvoice) dto.InvoiceSummary {
	summary := dto.InvoiceSummary{
		Number:        inv.InvoiceNumber,
		DocumentType:  inv.DocumentType,
		Currency:      inv.Currency,
		SupplierName:  inv.Supplier.Name,
		SupplierTaxID: inv.Supplier.TaxID,
		BuyerName:     inv.Buyer.Name,
		BuyerTaxID:    inv.Buyer.TaxID,
		TotalAmount:   inv.TotalAmount.StringFixed(2),
		TaxableAmount: inv.TaxableAmount.StringFixed(2),
		TaxAmount:     inv.TaxAmount.StringFixed(2),
		LineCount:     len(inv.Lines),
	}
	if !inv.InvoiceDate.IsZero() {
		summary.Date = inv.InvoiceDate.Format("2006-01-02")
	}
	return summary
}

func quarantineItem(file *models.ImportFile) dto.QuarantineItemResponse {
	return dto.QuarantineItemResponse{
		ID:             file.ID.String(),
		Filename:       file.Filename,
		ErrorCode:      file.ErrorCode,
		ErrorMessage:   file.ErrorMessage,
		HadReplacement: file.HadReplacement,
		HasRecovered:   file.ParsedInvoice != nil,
		StoragePath:    file.StoragePath,
		CreatedAt:      file.CreatedAt.Format(time.RFC3339),
	}
}
