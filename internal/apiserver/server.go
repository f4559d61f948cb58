package apiserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lingopal-ai/lingopal-reference/internal/metrics"
)

// Config contains mock API server configuration
type Config struct {
	Address string
	Port    int
	// APIKey enables X-API-Key enforcement when non-empty
	APIKey string
	// CompleteAfter is the number of status polls before a job reports
	// completed: poll 1 is pending, later polls are processing.
	CompleteAfter int
}

type jobKind string

const (
	kindTranscription jobKind = "transcription"
	kindTranslation   jobKind = "translation"
)

// job is the server-side record of a submitted unit of work
type job struct {
	ID        string
	Kind      jobKind
	Languages []string
	CreatedAt time.Time
	Polls     int
}

// Server is the mock API server
type Server struct {
	server  *http.Server
	logger  *slog.Logger
	metrics *metrics.Metrics
	config  Config

	startTime time.Time

	mu   sync.RWMutex
	jobs map[string]*job
}

// New creates a new mock API server
func New(config Config, logger *slog.Logger, m *metrics.Metrics) *Server {
	if config.CompleteAfter <= 0 {
		config.CompleteAfter = 3
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		logger:    logger,
		metrics:   m,
		config:    config,
		startTime: time.Now(),
		jobs:      make(map[string]*job),
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Address, config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler with all routes configured. Exposed so
// tests can drive the server through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/transcribe", s.withMetrics("/api/v1/transcribe", s.requireKey(s.handleTranscribe)))
	mux.HandleFunc("/api/v1/translate", s.withMetrics("/api/v1/translate", s.requireKey(s.handleTranslate)))
	mux.HandleFunc("/api/v1/jobs/", s.withMetrics("/api/v1/jobs/{id}", s.requireKey(s.handleJob)))
	mux.HandleFunc("/api/v1/files/", s.withMetrics("/api/v1/files/{id}", s.handleFile))
	mux.HandleFunc("/v1/streams/start", s.withMetrics("/v1/streams/start", s.requireKey(s.handleStream)))
	mux.HandleFunc("/v1/streams/schedule", s.withMetrics("/v1/streams/schedule", s.requireKey(s.handleStream)))
	mux.HandleFunc("/health", s.withMetrics("/health", s.handleHealth))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// withMetrics wraps an HTTP handler with metrics collection
func (s *Server) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		ww := &responseWriter{ResponseWriter: w, statusCode: 200}
		handler(ww, r)

		duration := time.Since(startTime).Seconds()
		statusCode := fmt.Sprintf("%d", ww.statusCode)
		s.metrics.RecordHTTPRequest(r.Method, endpoint, statusCode, duration)

		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			s.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requireKey enforces the X-API-Key header when a key is configured
func (s *Server) requireKey(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.config.APIKey != "" && r.Header.Get("X-API-Key") != s.config.APIKey {
			writeError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}
		handler(w, r)
	}
}

// Start starts the mock API server
func (s *Server) Start() error {
	s.logger.Info("Starting mock API server", slog.String("address", s.server.Addr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Mock API server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the mock API server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping mock API server...")
	return s.server.Shutdown(ctx)
}

// handleTranscribe implements POST /api/v1/transcribe
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	s.handleSubmit(w, r, kindTranscription)
}

// handleTranslate implements POST /api/v1/translate
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	s.handleSubmit(w, r, kindTranslation)
}

// handleSubmit accepts either a multipart file upload or a form-encoded
// s3_presigned_url field and creates a job either way
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request, kind jobKind) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var languages []string

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeError(w, http.StatusBadRequest, "error parsing multipart form")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file upload")
			return
		}
		file.Close()
		languages = parseLanguages(r.FormValue("languages"))

	case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "error parsing form")
			return
		}
		if r.FormValue("s3_presigned_url") == "" {
			writeError(w, http.StatusBadRequest, "missing s3_presigned_url")
			return
		}
		languages = parseLanguages(r.FormValue("languages"))

	default:
		writeError(w, http.StatusBadRequest, "unsupported content type")
		return
	}

	if kind == kindTranslation && len(languages) == 0 {
		writeError(w, http.StatusBadRequest, "missing languages")
		return
	}

	j := &job{
		ID:        uuid.NewString(),
		Kind:      kind,
		Languages: languages,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.jobs[j.ID] = j
	s.mu.Unlock()

	s.logger.Info("Job created",
		slog.String("job_id", j.ID),
		slog.String("kind", string(kind)),
	)

	writeJSON(w, http.StatusOK, map[string]string{"job_id": j.ID})
}

// handleJob routes GET /api/v1/jobs/{id}/status and /api/v1/jobs/{id}/result
func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	jobID, action := parts[0], parts[1]

	s.mu.Lock()
	j, exists := s.jobs[jobID]
	if exists && action == "status" {
		j.Polls++
	}
	s.mu.Unlock()

	if !exists {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	switch action {
	case "status":
		s.handleStatus(w, r, j)
	case "result":
		s.handleResult(w, r, j)
	default:
		http.NotFound(w, r)
	}
}

// handleStatus implements GET /api/v1/jobs/{id}/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, j *job) {
	s.mu.RLock()
	polls := j.Polls
	s.mu.RUnlock()

	status := "processing"
	progress := float64(polls) / float64(s.config.CompleteAfter) * 100
	message := "job is being processed"

	switch {
	case polls <= 1:
		status = "pending"
		message = "job is queued"
	case polls >= s.config.CompleteAfter:
		status = "completed"
		progress = 100
		message = "job finished"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   status,
		"progress": progress,
		"message":  message,
	})
}

// handleResult implements GET /api/v1/jobs/{id}/result
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request, j *job) {
	s.mu.RLock()
	done := j.Polls >= s.config.CompleteAfter
	s.mu.RUnlock()

	if !done {
		writeError(w, http.StatusConflict, "job is not completed")
		return
	}

	base := "http://" + r.Host + "/api/v1/files/" + j.ID + "/"

	urls := map[string]string{}
	switch j.Kind {
	case kindTranscription:
		urls["transcript"] = base + "transcript.srt"
		urls["diarization"] = base + "diarization.srt"
		urls["vtt"] = base + "captions.vtt"
		urls["json"] = base + "words.json"
		urls["original_audio"] = base + "source.mp3"
	case kindTranslation:
		for _, lang := range j.Languages {
			urls[lang] = base + lang + ".srt"
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"download_urls": urls})
}

// handleFile implements GET /api/v1/files/{id}/{name}, serving fake artifact
// bodies so downloads have something to fetch
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/files/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	jobID, name := parts[0], parts[1]

	s.mu.RLock()
	_, exists := s.jobs[jobID]
	s.mu.RUnlock()

	if !exists {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	fmt.Fprintf(w, "mock artifact %s for job %s\n", name, jobID)
}

// handleStream implements POST /v1/streams/start and /v1/streams/schedule
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if payload["ingest_url"] == nil || payload["ingest_url"] == "" {
		writeError(w, http.StatusBadRequest, "missing ingest_url")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stream_id": uuid.NewString(),
		"status":    "scheduled",
	})
}

// handleHealth implements GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.RLock()
	jobCount := len(s.jobs)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startTime).String(),
		"jobs":      jobCount,
	})
}

// parseLanguages accepts both observed wire encodings of the language list
func parseLanguages(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if strings.HasPrefix(value, "[") {
		var languages []string
		if err := json.Unmarshal([]byte(value), &languages); err == nil {
			return languages
		}
	}

	var languages []string
	for _, part := range strings.Split(value, ",") {
		if lang := strings.TrimSpace(part); lang != "" {
			languages = append(languages, lang)
		}
	}
	return languages
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
