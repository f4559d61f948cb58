package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lingopal-ai/lingopal-reference/internal/metrics"
)

// LanguageFormat selects the wire encoding of the target language list.
// The two observed API variants are mutually incompatible, so the choice is
// explicit configuration rather than a guess.
type LanguageFormat string

const (
	// LanguagesComma encodes the list as a comma-joined string ("es,fr,de")
	LanguagesComma LanguageFormat = "comma"
	// LanguagesJSON encodes the list as a JSON array (["es","fr","de"])
	LanguagesJSON LanguageFormat = "json"
)

// Config contains job client configuration
type Config struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	LanguageFormat LanguageFormat
	MaxConcurrent  int // concurrent artifact downloads
}

// Client is an HTTP client for the transcription/translation job API.
// Configuration is fixed at construction; the client is safe for concurrent
// use across independent jobs.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics // optional
	semaphore  chan struct{}    // bounds concurrent downloads
}

// New creates a new job client. The metrics recorder may be nil.
func New(config Config, logger *slog.Logger, m *metrics.Metrics) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	if config.LanguageFormat == "" {
		config.LanguageFormat = LanguagesComma
	}

	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 4
	}

	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
		metrics:    m,
		semaphore:  make(chan struct{}, config.MaxConcurrent),
	}, nil
}

// Health probes the API by requesting the status of an invalid job ID.
// A 404 response means the API is reachable and routing requests.
func (c *Client) Health(ctx context.Context) error {
	err := c.do(ctx, http.MethodGet, "/api/v1/jobs/invalid-job-id/status", "", nil, nil)
	if err == nil {
		// The probe is expected to fail; a success here means the API is
		// handing out status for a job that was never created.
		return fmt.Errorf("health probe unexpectedly succeeded")
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil
	}

	return fmt.Errorf("api is not reachable: %w", err)
}

// do performs a single HTTP request against the API and decodes the JSON
// response into v when v is non-nil. Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, v interface{}) error {
	url := c.config.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("X-API-Key", c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if v != nil {
		if err := json.Unmarshal(respBody, v); err != nil {
			return fmt.Errorf("failed to parse response JSON: %w", err)
		}
	}

	return nil
}
