package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fatturaflow/internal/fattura"
	"fatturaflow/internal/models"

	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const fallbackSystemPrompt = `You are an expert on Italian electronic invoices (FatturaPA).
You receive the raw text of a damaged or non-standard invoice document and extract its data.
Respond with ONLY a JSON object, no prose, using exactly these keys:
{
  "invoice_number": "", "invoice_date": "YYYY-MM-DD", "document_type": "", "currency": "",
  "supplier": {"name": "", "tax_id": "", "country_code": ""},
  "buyer": {"name": "", "tax_id": "", "country_code": ""},
  "taxable_amount": "0.00", "tax_amount": "0.00", "total_amount": "0.00",
  "payment_due_date": "YYYY-MM-DD", "payment_method": "", "payment_amount": "0.00"
}
Use empty strings for anything you cannot determine. Amounts use a dot as decimal separator.`

type fallbackParty struct {
	Name        string `json:"name"`
	TaxID       string `json:"tax_id"`
	CountryCode string `json:"country_code"`
}

// fallbackInvoice is the transport shape the model is asked to produce.
// Everything is a string; conversion failures degrade field by field
// rather than discarding the whole result.
type fallbackInvoice struct {
	InvoiceNumber  string        `json:"invoice_number"`
	InvoiceDate    string        `json:"invoice_date"`
	DocumentType   string        `json:"document_type"`
	Currency       string        `json:"currency"`
	Supplier       fallbackParty `json:"supplier"`
	Buyer          fallbackParty `json:"buyer"`
	TaxableAmount  string        `json:"taxable_amount"`
	TaxAmount      string        `json:"tax_amount"`
	TotalAmount    string        `json:"total_amount"`
	PaymentDueDate string        `json:"payment_due_date"`
	PaymentMethod  string        `json:"payment_method"`
	PaymentAmount  string        `json:"payment_amount"`
}

// FallbackService asks a chat model to extract an invoice from text the
// tag extractor gave up on.
type FallbackService struct {
	client      *openai.Client
	model       string
	temperature float32
	maxRetries  int
	timeout     time.Duration
	logger      *zap.Logger
}

func NewFallbackService(apiKey, baseURL, model string, temperature float32, maxRetries int, timeout time.Duration, logger *zap.Logger) *FallbackService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &FallbackService{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
		maxRetries:  maxRetries,
		timeout:     timeout,
		logger:      logger,
	}
}

// Parse sends the document text to the model and maps the JSON reply onto
// an invoice. Retries with backoff on rate limiting and on malformed JSON.
func (s *FallbackService) Parse(ctx context.Context, xmlText string) (*models.ParsedInvoice, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       s.model,
			Temperature: s.temperature,
			MaxTokens:   1500,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: fallbackSystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: xmlText},
			},
		})
		if err != nil {
			lastErr = err
			var apiErr *openai.APIError
			if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
				s.logger.Warn("Fallback model rate limited, backing off",
					zap.Int("attempt", attempt))
				select {
				case <-time.After(time.Duration(attempt) * 2 * time.Second):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				continue
			}
			return nil, fmt.Errorf("fallback completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			lastErr = errors.New("no response choices from model")
			continue
		}

		inv, err := mapFallbackInvoice(resp.Choices[0].Message.Content)
		if err != nil {
			lastErr = err
			s.logger.Warn("Fallback reply was not usable, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		return inv, nil
	}
	return nil, fmt.Errorf("fallback exhausted after %d attempts: %w", s.maxRetries, lastErr)
}

func mapFallbackInvoice(content string) (*models.ParsedInvoice, error) {
	// Models occasionally fence the JSON despite instructions.
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var raw fallbackInvoice
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse model reply: %w", err)
	}
	if raw.InvoiceNumber == "" || (raw.Supplier.TaxID == "" && raw.Buyer.TaxID == "") {
		return nil, errors.New("model reply is missing invoice number or party tax ids")
	}

	inv := &models.ParsedInvoice{
		InvoiceNumber: strings.TrimSpace(raw.InvoiceNumber),
		DocumentType:  strings.TrimSpace(raw.DocumentType),
		Currency:      strings.TrimSpace(raw.Currency),
		Supplier: models.Party{
			Name:        strings.TrimSpace(raw.Supplier.Name),
			TaxID:       fattura.ComposeTaxID(raw.Supplier.CountryCode, raw.Supplier.TaxID),
			CountryCode: strings.ToUpper(strings.TrimSpace(raw.Supplier.CountryCode)),
		},
		Buyer: models.Party{
			Name:        strings.TrimSpace(raw.Buyer.Name),
			TaxID:       fattura.ComposeTaxID(raw.Buyer.CountryCode, raw.Buyer.TaxID),
			CountryCode: strings.ToUpper(strings.TrimSpace(raw.Buyer.CountryCode)),
		},
		TaxableAmount: parseFallbackAmount(raw.TaxableAmount),
		TaxAmount:     parseFallbackAmount(raw.TaxAmount),
		TotalAmount:   parseFallbackAmount(raw.TotalAmount),
	}
	if t, err := time.Parse("2006-01-02", raw.InvoiceDate); err == nil {
		inv.InvoiceDate = t
	}
	if inv.TotalAmount.IsZero() {
		inv.TotalAmount = inv.TaxableAmount.Add(inv.TaxAmount)
	}
	if raw.PaymentMethod != "" || raw.PaymentDueDate != "" {
		payment := models.Payment{
			Method: strings.TrimSpace(raw.PaymentMethod),
			Amount: parseFallbackAmount(raw.PaymentAmount),
		}
		if t, err := time.Parse("2006-01-02", raw.PaymentDueDate); err == nil {
			payment.DueDate = &t
		}
		if payment.Amount.IsZero() {
			payment.Amount = inv.TotalAmount
		}
		inv.Payments = append(inv.Payments, payment)
	}
	return inv, nil
}

func parseFallbackAmount(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
