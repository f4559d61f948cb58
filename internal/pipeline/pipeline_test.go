package pipeline

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lingopal-ai/lingopal-reference/internal/apiserver"
	"github.com/lingopal-ai/lingopal-reference/internal/client"
	"github.com/lingopal-ai/lingopal-reference/internal/metrics"
)

// Prometheus collectors register globally, so the test binary creates them once
var testMetrics = metrics.NewMetrics()

func TestSelectSubtitle(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		want   string
		wantOK bool
	}{
		{
			name: "prefers transcript",
			files: map[string]string{
				"diarization": "out/job/diarization.srt",
				"transcript":  "out/job/transcript.srt",
				"vtt":         "out/job/vtt.vtt",
			},
			want:   "out/job/transcript.srt",
			wantOK: true,
		},
		{
			name: "falls back to diarization",
			files: map[string]string{
				"diarization": "out/job/diarization.srt",
				"vtt":         "out/job/vtt.vtt",
			},
			want:   "out/job/diarization.srt",
			wantOK: true,
		},
		{
			name: "falls back to any srt file",
			files: map[string]string{
				"vtt":      "out/job/vtt.vtt",
				"captions": "out/job/captions.srt",
			},
			want:   "out/job/captions.srt",
			wantOK: true,
		},
		{
			name: "no subtitle available",
			files: map[string]string{
				"vtt":  "out/job/vtt.vtt",
				"json": "out/job/json.json",
			},
			wantOK: false,
		},
		{
			name:   "empty mapping",
			files:  map[string]string{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectSubtitle(tt.files)
			if ok != tt.wantOK {
				t.Fatalf("SelectSubtitle ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("SelectSubtitle = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewValidation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := New(nil, logger, Config{}); err == nil {
		t.Error("Expected error when no source is configured")
	}
}

// startMockAPI runs the in-memory API server behind httptest
func startMockAPI(t *testing.T, completeAfter int) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mock := apiserver.New(apiserver.Config{CompleteAfter: completeAfter}, logger, testMetrics)

	server := httptest.NewServer(mock.Handler())
	t.Cleanup(server.Close)
	return server
}

func newPipelineClient(t *testing.T, baseURL string) *client.Client {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := client.New(client.Config{BaseURL: baseURL}, logger, nil)
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}
	return c
}

func fastPolicy() client.PollPolicy {
	return client.PollPolicy{Interval: 5 * time.Millisecond, Timeout: 5 * time.Second}
}

func TestRunTranscribeAndTranslate(t *testing.T) {
	server := startMockAPI(t, 2)

	audioPath := filepath.Join(t.TempDir(), "loop.mp3")
	if err := os.WriteFile(audioPath, []byte("fake audio"), 0644); err != nil {
		t.Fatalf("Failed to write audio file: %v", err)
	}

	outputDir := t.TempDir()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p, err := New(newPipelineClient(t, server.URL), logger, Config{
		AudioFile: audioPath,
		Languages: []string{"es", "fr", "de"},
		OutputDir: outputDir,
		Policy:    fastPolicy(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.TranscriptionJobID == "" || summary.TranslationJobID == "" {
		t.Fatalf("Expected both job IDs in summary: %+v", summary)
	}

	if summary.TranscriptionJobID == summary.TranslationJobID {
		t.Error("Expected distinct job IDs for the two legs")
	}

	// Transcription artifacts land under the transcription job directory
	transcriptPath := filepath.Join(outputDir, summary.TranscriptionJobID, "transcript.srt")
	if summary.TranscriptionFiles["transcript"] != transcriptPath {
		t.Errorf("Expected transcript at %s, got %s", transcriptPath, summary.TranscriptionFiles["transcript"])
	}

	if _, err := os.Stat(transcriptPath); err != nil {
		t.Errorf("Expected transcript file on disk: %v", err)
	}

	// Translation produces one subtitle file per target language
	for _, lang := range []string{"es", "fr", "de"} {
		path, ok := summary.TranslationFiles[lang]
		if !ok {
			t.Errorf("Expected translation file for %s, got %v", lang, summary.TranslationFiles)
			continue
		}
		if !strings.HasSuffix(path, lang+".srt") {
			t.Errorf("Expected %s subtitle to end with %s.srt, got %s", lang, lang, path)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected %s file on disk: %v", lang, err)
		}
	}
}

func TestRunTranslationOnly(t *testing.T) {
	server := startMockAPI(t, 2)

	outputDir := t.TempDir()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p, err := New(newPipelineClient(t, server.URL), logger, Config{
		SRTURL:    "https://bucket.s3.amazonaws.com/subs.srt?sig=abc",
		Languages: []string{"pt"},
		OutputDir: outputDir,
		Policy:    fastPolicy(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.TranscriptionJobID != "" {
		t.Errorf("Expected no transcription job, got %s", summary.TranscriptionJobID)
	}

	if summary.TranslationJobID == "" {
		t.Fatal("Expected a translation job ID")
	}

	if _, ok := summary.TranslationFiles["pt"]; !ok {
		t.Errorf("Expected pt translation file, got %v", summary.TranslationFiles)
	}
}
