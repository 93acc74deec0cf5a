package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RegistryInfo is what the external tax registry knows about a party.
type RegistryInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Valid   bool   `json:"valid"`
}

// RegistryService looks counterparties up in a VIES-style validation
// endpoint. Purely best-effort: every failure degrades to "no info".
type RegistryService struct {
	baseURL    string
	client     *http.Client
	maxRetries int
	logger     *zap.Logger
}

func NewRegistryService(baseURL string, timeout time.Duration, maxRetries int, logger *zap.Logger) *RegistryService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = 2
	}
	return &RegistryService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		logger:     logger,
	}
}

func (s *RegistryService) Lookup(ctx context.Context, taxID, countryCode string) (*RegistryInfo, error) {
	if s.baseURL == "" || taxID == "" {
		return nil, nil
	}
	if countryCode == "" {
		countryCode = "IT"
	}

	url := fmt.Sprintf("%s/check/%s/%s", s.baseURL, countryCode, taxID)

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			var info RegistryInfo
			if err := json.Unmarshal(body, &info); err != nil {
				return nil, fmt.Errorf("registry returned malformed body: %w", err)
			}
			return &info, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("registry returned status %d", resp.StatusCode)
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		default:
			return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
		}
	}

	s.logger.Warn("Registry lookup gave up",
		zap.String("tax_id", taxID),
		zap.Error(lastErr))
	return nil, lastErr
}
