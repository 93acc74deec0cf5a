package service

import (
	"context"
	"time"

	"fatturaflow/internal/dto"
	"fatturaflow/internal/models"
	"fatturaflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InvoiceService struct {
	invoiceRepo *repository.InvoiceRepository
	logger      *zap.Logger
}

func NewInvoiceService(invoiceRepo *repository.InvoiceRepository, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

func (s *InvoiceService) List(ctx context.Context, companyID uuid.UUID, direction string, limit, offset int) ([]dto.InvoiceResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	invoices, err := s.invoiceRepo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		if direction != "" && string(inv.Direction) != direction {
			continue
		}
		out = append(out, invoiceResponse(inv))
	}
	return out, nil
}

func invoiceResponse(inv *models.Invoice) dto.InvoiceResponse {
	resp := dto.InvoiceResponse{
		ID:                inv.ID.String(),
		Direction:         string(inv.Direction),
		Number:            inv.Number,
		DocumentType:      inv.DocumentType,
		Currency:          inv.Currency,
		CounterpartyTaxID: inv.CounterpartyTaxID,
		TotalAmount:       inv.TotalAmount.StringFixed(2),
		TaxableAmount:     inv.TaxableAmount.StringFixed(2),
		TaxAmount:         inv.TaxAmount.StringFixed(2),
		PaymentMethod:     inv.PaymentMethod,
		CreatedAt:         inv.CreatedAt.Format(time.RFC3339),
	}
	if !inv.Date.IsZero() {
		resp.Date = inv.Date.Format("2006-01-02")
	}
	if inv.PaymentDueDate != nil {
		resp.PaymentDueDate = inv.PaymentDueDate.Format("2006-01-02")
	}
	return resp
}
