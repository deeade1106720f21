package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/splitscan/splitscan/internal/hints"
)

// LayoutConfig configures the HTTP layout-analysis client.
type LayoutConfig struct {
	BaseURL    string
	APIKey     string
	MaxRetries uint
	RetryDelay time.Duration
	Timeout    time.Duration
	HTTPClient *http.Client // optional (tests)
}

// HTTPLayoutAnalyzer implements LayoutAnalyzer against a document
// analysis service that accepts raw PDF bytes and returns detected
// pages, tables and text blocks.
type HTTPLayoutAnalyzer struct {
	baseURL    string
	apiKey     string
	maxRetries uint
	retryDelay time.Duration
	client     *http.Client
}

// NewHTTPLayoutAnalyzer creates a layout-analysis client.
func NewHTTPLayoutAnalyzer(cfg LayoutConfig) *HTTPLayoutAnalyzer {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Minute
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPLayoutAnalyzer{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		client:     httpClient,
	}
}

// wire format of the analysis service
type layoutWire struct {
	Pages  int `json:"pages"`
	Tables []struct {
		Page  int          `json:"page"`
		Index int          `json:"index"`
		Cells []hints.Cell `json:"cells"`
	} `json:"tables"`
	TextBlocks []TextBlock `json:"text_blocks"`
}

// Analyze posts the document to the analysis service, retrying
// transient failures.
func (a *HTTPLayoutAnalyzer) Analyze(ctx context.Context, fileBytes []byte) (*Layout, error) {
	var wire layoutWire

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/analyze", bytes.NewReader(fileBytes))
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
			}
			req.Header.Set("Content-Type", "application/pdf")
			if a.apiKey != "" {
				req.Header.Set("Authorization", "Bearer "+a.apiKey)
			}

			resp, err := a.client.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}
			if shouldRetryStatus(resp.StatusCode) {
				return fmt.Errorf("analysis service error (status %d): %s", resp.StatusCode, string(body))
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("analysis service error (status %d): %s", resp.StatusCode, string(body)))
			}
			if err := json.Unmarshal(body, &wire); err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to unmarshal layout: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(a.maxRetries),
		retry.Delay(a.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, &AnalysisError{Err: err}
	}

	layout := &Layout{
		Pages:      wire.Pages,
		TextBlocks: wire.TextBlocks,
	}
	for _, t := range wire.Tables {
		layout.Tables = append(layout.Tables, LayoutTable{
			Page:  t.Page,
			Table: hints.Table{Index: t.Index, Cells: t.Cells},
		})
	}
	return layout, nil
}
