package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestInferExtension(t *testing.T) {
	tests := []struct {
		name     string
		fileType string
		url      string
		want     string
	}{
		{name: "transcript ignores url suffix", fileType: "transcript", url: "https://bucket/file.json", want: ".srt"},
		{name: "diarization", fileType: "diarization", url: "https://bucket/file", want: ".srt"},
		{name: "srt url suffix", fileType: "es", url: "https://bucket/es.srt", want: ".srt"},
		{name: "vtt type", fileType: "vtt", url: "https://bucket/file", want: ".vtt"},
		{name: "vtt url suffix", fileType: "captions", url: "https://bucket/captions.vtt", want: ".vtt"},
		{name: "json type", fileType: "json", url: "https://bucket/file", want: ".json"},
		{name: "json url suffix", fileType: "words", url: "https://bucket/words.json", want: ".json"},
		{name: "original audio wav in url", fileType: "original_audio", url: "https://bucket/audio.wav?sig=abc", want: ".wav"},
		{name: "original audio m4a in url", fileType: "original_audio", url: "https://bucket/audio.m4a", want: ".m4a"},
		{name: "original audio defaults to mp3", fileType: "original_audio", url: "https://bucket/audio", want: ".mp3"},
		{name: "audio suffix without audio type", fileType: "source", url: "https://bucket/audio.mp3", want: ".mp3"},
		{name: "unrecognized falls back to txt", fileType: "notes", url: "https://bucket/file", want: ".txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferExtension(tt.fileType, tt.url); got != tt.want {
				t.Errorf("InferExtension(%q, %q) = %q, want %q", tt.fileType, tt.url, got, tt.want)
			}
		})
	}
}

func TestDownloadArtifacts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("content of " + r.URL.Path))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	outputDir := t.TempDir()

	urls := map[string]string{
		"transcript": server.URL + "/transcript.srt",
		"vtt":        server.URL + "/captions.vtt",
		"json":       "", // null URLs are skipped
	}

	files, err := c.DownloadArtifacts(context.Background(), "job-7", urls, outputDir)
	if err != nil {
		t.Fatalf("DownloadArtifacts failed: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("Expected 2 downloaded files, got %d: %v", len(files), files)
	}

	wantTranscript := filepath.Join(outputDir, "job-7", "transcript.srt")
	if files["transcript"] != wantTranscript {
		t.Errorf("Expected transcript at %s, got %s", wantTranscript, files["transcript"])
	}

	data, err := os.ReadFile(files["transcript"])
	if err != nil {
		t.Fatalf("Failed to read downloaded file: %v", err)
	}

	if string(data) != "content of /transcript.srt" {
		t.Errorf("Downloaded content mismatch: %q", data)
	}

	wantVTT := filepath.Join(outputDir, "job-7", "vtt.vtt")
	if files["vtt"] != wantVTT {
		t.Errorf("Expected vtt at %s, got %s", wantVTT, files["vtt"])
	}
}

func TestDownloadArtifactsPartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.srt" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		w.Write([]byte("subtitle content"))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	outputDir := t.TempDir()

	urls := map[string]string{
		"transcript":  server.URL + "/transcript.srt",
		"diarization": server.URL + "/broken.srt",
	}

	files, err := c.DownloadArtifacts(context.Background(), "job-8", urls, outputDir)
	if err == nil {
		t.Fatal("Expected error for failed artifact")
	}

	// One failed artifact must not abort the other
	if len(files) != 1 {
		t.Fatalf("Expected 1 downloaded file, got %d: %v", len(files), files)
	}

	if _, ok := files["transcript"]; !ok {
		t.Error("Expected transcript to survive the diarization failure")
	}

	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("Expected *DownloadError, got %v", err)
	}

	if dlErr.FileType != "diarization" {
		t.Errorf("Expected failure for diarization, got %s", dlErr.FileType)
	}
}

func TestDownloadArtifactsEmptyMapping(t *testing.T) {
	c := newTestClient(t, "http://localhost:1")
	outputDir := t.TempDir()

	files, err := c.DownloadArtifacts(context.Background(), "job-9", map[string]string{}, outputDir)
	if err != nil {
		t.Fatalf("DownloadArtifacts failed: %v", err)
	}

	if len(files) != 0 {
		t.Errorf("Expected no files, got %v", files)
	}

	// The job directory is still created
	if _, statErr := os.Stat(filepath.Join(outputDir, "job-9")); statErr != nil {
		t.Errorf("Expected job directory to exist: %v", statErr)
	}
}
