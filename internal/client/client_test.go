package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newTestClient creates a client against a test server with quiet logging
func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := New(Config{BaseURL: baseURL, APIKey: "test-key"}, logger, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := New(Config{}, logger, nil); err == nil {
		t.Error("Expected error for empty base URL")
	}

	c, err := New(Config{BaseURL: "http://localhost:8000/"}, logger, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if c.config.BaseURL != "http://localhost:8000" {
		t.Errorf("Expected trailing slash trimmed, got %s", c.config.BaseURL)
	}

	if c.config.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", c.config.Timeout)
	}

	if c.config.LanguageFormat != LanguagesComma {
		t.Errorf("Expected default language format comma, got %s", c.config.LanguageFormat)
	}

	if cap(c.semaphore) != 4 {
		t.Errorf("Expected default download concurrency 4, got %d", cap(c.semaphore))
	}
}

func TestAPIKeyHeader(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		json.NewEncoder(w).Encode(map[string]string{"status": "pending"})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	if _, err := c.GetJobStatus(context.Background(), "job-1"); err != nil {
		t.Fatalf("GetJobStatus failed: %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("Expected X-API-Key header test-key, got %q", gotKey)
	}
}

func TestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.GetJobStatus(context.Background(), "job-1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}

	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", apiErr.StatusCode)
	}

	if apiErr.Body != "upstream exploded" {
		t.Errorf("Expected body to carry the response, got %q", apiErr.Body)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		expectError bool
	}{
		{name: "404 means reachable", status: http.StatusNotFound, expectError: false},
		{name: "500 means unhealthy", status: http.StatusInternalServerError, expectError: true},
		{name: "unexpected success", status: http.StatusOK, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("{}"))
			}))
			defer server.Close()

			c := newTestClient(t, server.URL)
			err := c.Health(context.Background())
			if tt.expectError && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestHealthUnreachable(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1") // nothing listens here

	if err := c.Health(context.Background()); err == nil {
		t.Error("Expected error for unreachable API")
	}
}

func TestFetchResultURLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/jobs/job-1/result" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"download_urls": {"transcript": "http://files/transcript.srt", "vtt": null}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	urls, err := c.FetchResultURLs(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("FetchResultURLs failed: %v", err)
	}

	if urls["transcript"] != "http://files/transcript.srt" {
		t.Errorf("Expected transcript URL, got %q", urls["transcript"])
	}

	// A null URL is kept as an empty string and skipped downstream
	if got, ok := urls["vtt"]; !ok || got != "" {
		t.Errorf("Expected vtt key with empty URL, got %q (present=%v)", got, ok)
	}
}

func TestFetchResultURLsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	urls, err := c.FetchResultURLs(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("FetchResultURLs failed: %v", err)
	}

	if len(urls) != 0 {
		t.Errorf("Expected empty mapping, got %v", urls)
	}
}
