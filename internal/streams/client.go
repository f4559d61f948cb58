package streams

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lingopal-ai/lingopal-reference/internal/client"
)

const defaultSchedulePath = "/v1/streams/schedule"

// Config contains streaming API client configuration
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// SchedulePath selects between the two observed scheduling endpoint
	// variants, /v1/streams/schedule and /v1/scheduled_streams.
	SchedulePath string
}

// Client issues one-shot calls against the live stream API
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// Request is the live stream configuration payload
type Request struct {
	IngestURL                    string   `json:"ingest_url"`
	VocalsTrack                  string   `json:"vocals_track"`
	BackgroundTrack              int      `json:"background_track"`
	Mix                          string   `json:"mix"`
	EnableCaptions708            bool     `json:"enable_captions_708"`
	EnableCaptions608            bool     `json:"enable_captions_608"`
	SrcLanguage                  string   `json:"src_language"`
	DstLanguage                  []string `json:"dst_language"`
	UseParaphrasingTranscription bool     `json:"use_paraphrasing_transcription,omitempty"`
	StartWowza                   bool     `json:"start_wowza"`
	IsHLSStream                  bool     `json:"is_hls_stream"`
	UseContextualTranslation     bool     `json:"use_contextual_translation"`
	Lipsync                      bool     `json:"lipsync"`
	ChannelUUID                  string   `json:"channel_uuid,omitempty"`
	UseReservedResources         bool     `json:"use_reserved_resources,omitempty"`
	Stitching                    bool     `json:"stitching,omitempty"`
	VoiceCloning                 bool     `json:"voice_cloning,omitempty"`
	ScheduledTime                string   `json:"scheduled_time,omitempty"` // ISO 8601
	Timezone                     string   `json:"timezone,omitempty"`       // e.g. "America/New_York"
}

// New creates a new streaming API client
func New(config Config, logger *slog.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	if config.APIKey == "" {
		return nil, fmt.Errorf("API key cannot be empty")
	}

	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	if config.SchedulePath == "" {
		config.SchedulePath = defaultSchedulePath
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}, nil
}

// Start starts a live stream immediately
func (c *Client) Start(ctx context.Context, req Request) (map[string]interface{}, error) {
	if req.IngestURL == "" {
		return nil, fmt.Errorf("ingest URL cannot be empty")
	}

	c.logger.Info("Starting stream", slog.String("ingest_url", req.IngestURL))
	return c.post(ctx, "/v1/streams/start", req)
}

// Schedule schedules a live stream for a future start time. The request must
// carry both the scheduled time and its timezone.
func (c *Client) Schedule(ctx context.Context, req Request) (map[string]interface{}, error) {
	if req.IngestURL == "" {
		return nil, fmt.Errorf("ingest URL cannot be empty")
	}

	if req.ScheduledTime == "" || req.Timezone == "" {
		return nil, fmt.Errorf("scheduled time and timezone are required")
	}

	c.logger.Info("Scheduling stream",
		slog.String("ingest_url", req.IngestURL),
		slog.String("scheduled_time", req.ScheduledTime),
		slog.String("timezone", req.Timezone),
	)
	return c.post(ctx, c.config.SchedulePath, req)
}

// post issues a JSON POST and decodes the JSON response
func (c *Client) post(ctx context.Context, path string, req Request) (map[string]interface{}, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-API-Key", c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &client.APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	return decoded, nil
}
