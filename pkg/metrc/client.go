package metrc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ClientConfig holds configuration for the Metrc reporting client
type ClientConfig struct {
	BaseURL       string
	APIKey        string
	LicenseNumber string
	Timeout       time.Duration
}

// Client reports destruction records over HTTP
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// NewClient creates a new Metrc reporting client
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type reportRequest struct {
	LicenseNumber string              `json:"license_number"`
	Records       []DestructionRecord `json:"records"`
}

// Report submits a batch of destruction records. The request is bounded
// by the client timeout and by ctx, whichever expires first.
func (c *Client) Report(ctx context.Context, records []DestructionRecord) (*ReportResult, error) {
	payload, err := json.Marshal(reportRequest{
		LicenseNumber: c.cfg.LicenseNumber,
		Records:       records,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode destruction report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/packages/adjust/destroy", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build destruction report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("destruction report call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read destruction report response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("destruction report rejected: status %d: %s", resp.StatusCode, string(body))
	}

	var result ReportResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode destruction report response: %w", err)
	}

	return &result, nil
}
