package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fatturaflow/internal/models"

	"github.com/google/uuid"
)

type fakeCompanyStore struct {
	companies map[uuid.UUID]*models.Company
}

func newFakeCompanyStore(companies ...*models.Company) *fakeCompanyStore {
	s := &fakeCompanyStore{companies: make(map[uuid.UUID]*models.Company)}
	for _, c := range companies {
		s.companies[c.ID] = c
	}
	return s
}

func (s *fakeCompanyStore) GetByID(_ context.Context, id uuid.UUID) (*models.Company, error) {
	c, ok := s.companies[id]
	if !ok {
		return nil, errors.New("company not found")
	}
	return c, nil
}

type fakeBatchStore struct {
	batches map[uuid.UUID]*models.ImportBatch
}

func newFakeBatchStore() *fakeBatchStore {
	return &fakeBatchStore{batches: make(map[uuid.UUID]*models.ImportBatch)}
}

func (s *fakeBatchStore) Create(_ context.Context, batch *models.ImportBatch) error {
	copied := *batch
	s.batches[batch.ID] = &copied
	return nil
}

func (s *fakeBatchStore) GetByID(_ context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	b, ok := s.batches[id]
	if !ok {
		return nil, errors.New("batch not found")
	}
	copied := *b
	return &copied, nil
}

func (s *fakeBatchStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.BatchStatus) error {
	b, ok := s.batches[id]
	if !ok {
		return errors.New("batch not found")
	}
	b.Status = status
	return nil
}

func (s *fakeBatchStore) UpdateCounters(_ context.Context, id uuid.UUID, imported, duplicates, quarantined int, status models.BatchStatus) error {
	b, ok := s.batches[id]
	if !ok {
		return errors.New("batch not found")
	}
	b.Imported = imported
	b.Duplicates = duplicates
	b.Quarantined = quarantined
	b.Status = status
	return nil
}

type fakeFileStore struct {
	files map[uuid.UUID]*models.ImportFile
	order []uuid.UUID
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: make(map[uuid.UUID]*models.ImportFile)}
}

func (s *fakeFileStore) Create(_ context.Context, file *models.ImportFile) error {
	copied := *file
	s.files[file.ID] = &copied
	s.order = append(s.order, file.ID)
	return nil
}

func (s *fakeFileStore) GetByID(_ context.Context, id uuid.UUID) (*models.ImportFile, error) {
	f, ok := s.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	copied := *f
	return &copied, nil
}

func (s *fakeFileStore) ListByBatch(_ context.Context, batchID uuid.UUID) ([]*models.ImportFile, error) {
	var out []*models.ImportFile
	for _, id := range s.order {
		if s.files[id].BatchID == batchID {
			copied := *s.files[id]
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeFileStore) ListQuarantined(_ context.Context, companyID uuid.UUID) ([]*models.ImportFile, error) {
	var out []*models.ImportFile
	for _, id := range s.order {
		f := s.files[id]
		if f.CompanyID == companyID && f.Status == models.FileQuarantined {
			copied := *f
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *fakeFileStore) UpdateOutcome(_ context.Context, id uuid.UUID, status models.FileStatus, errorCode, errorMessage string, invoiceID *uuid.UUID) error {
	f, ok := s.files[id]
	if !ok {
		return errors.New("file not found")
	}
	f.Status = status
	f.ErrorCode = errorCode
	f.ErrorMessage = errorMessage
	f.InvoiceID = invoiceID
	return nil
}

func (s *fakeFileStore) UpdateParsedInvoice(_ context.Context, id uuid.UUID, inv *models.ParsedInvoice, hadReplacement bool) error {
	f, ok := s.files[id]
	if !ok {
		return errors.New("file not found")
	}
	f.ParsedInvoice = inv
	f.HadReplacement = hadReplacement
	return nil
}

func (s *fakeFileStore) UpdateError(_ context.Context, id uuid.UUID, errorCode, errorMessage string) error {
	f, ok := s.files[id]
	if !ok {
		return errors.New("file not found")
	}
	f.ErrorCode = errorCode
	f.ErrorMessage = errorMessage
	return nil
}

type naturalKey struct {
	companyID uuid.UUID
	number    string
	taxID     string
}

type fakeInvoiceStore struct {
	invoices   map[naturalKey]*models.Invoice
	lines      map[uuid.UUID][]models.InvoiceLine
	failCreate bool
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{
		invoices: make(map[naturalKey]*models.Invoice),
		lines:    make(map[uuid.UUID][]models.InvoiceLine),
	}
}

func (s *fakeInvoiceStore) Create(_ context.Context, invoice *models.Invoice, lines []models.InvoiceLine) error {
	if s.failCreate {
		return errors.New("simulated database failure")
	}
	key := naturalKey{invoice.CompanyID, invoice.Number, invoice.CounterpartyTaxID}
	if _, exists := s.invoices[key]; exists {
		return fmt.Errorf("unique constraint violation on %v", key)
	}
	copied := *invoice
	s.invoices[key] = &copied
	s.lines[invoice.ID] = lines
	return nil
}

func (s *fakeInvoiceStore) ExistsByNaturalKey(_ context.Context, companyID uuid.UUID, number, counterpartyTaxID string) (bool, error) {
	_, ok := s.invoices[naturalKey{companyID, number, counterpartyTaxID}]
	return ok, nil
}

func (s *fakeInvoiceStore) GetByNaturalKey(_ context.Context, companyID uuid.UUID, number, counterpartyTaxID string) (*models.Invoice, error) {
	inv, ok := s.invoices[naturalKey{companyID, number, counterpartyTaxID}]
	if !ok {
		return nil, nil
	}
	copied := *inv
	return &copied, nil
}

type fakeCounterpartyStore struct {
	byTaxID map[string]*models.Counterparty
}

func newFakeCounterpartyStore() *fakeCounterpartyStore {
	return &fakeCounterpartyStore{byTaxID: make(map[string]*models.Counterparty)}
}

func (s *fakeCounterpartyStore) Create(_ context.Context, cp *models.Counterparty) error {
	copied := *cp
	s.byTaxID[cp.CompanyID.String()+"/"+cp.TaxID] = &copied
	return nil
}

func (s *fakeCounterpartyStore) FindByTaxID(_ context.Context, companyID uuid.UUID, taxID string) (*models.Counterparty, error) {
	cp, ok := s.byTaxID[companyID.String()+"/"+taxID]
	if !ok {
		return nil, nil
	}
	copied := *cp
	return &copied, nil
}

func (s *fakeCounterpartyStore) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	for _, cp := range s.byTaxID {
		if cp.ID == id {
			cp.Name = name
			return nil
		}
	}
	return errors.New("counterparty not found")
}

type fakeBlobStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	gets    int
	failPut bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (s *fakeBlobStore) Put(_ context.Context, path string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return errors.New("simulated storage failure")
	}
	s.blobs[path] = append([]byte(nil), data...)
	return nil
}

func (s *fakeBlobStore) Get(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	data, ok := s.blobs[path]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return append([]byte(nil), data...), nil
}

func (s *fakeBlobStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, path)
	return nil
}
