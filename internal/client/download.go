package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// audioSuffixes are checked in order when inferring an audio extension
var audioSuffixes = []string{".mp3", ".wav", ".m4a"}

// InferExtension derives a local file extension from the logical file type
// and the download URL. The server does not guarantee extensions, so this is
// a best-effort heuristic with a fixed precedence:
// transcript/diarization before URL suffixes, then vtt, json, audio, and a
// .txt fallback.
func InferExtension(fileType, url string) string {
	switch {
	case fileType == "transcript" || fileType == "diarization" || strings.HasSuffix(url, ".srt"):
		return ".srt"
	case fileType == "vtt" || strings.HasSuffix(url, ".vtt"):
		return ".vtt"
	case fileType == "json" || strings.HasSuffix(url, ".json"):
		return ".json"
	case fileType == "original_audio" || hasAudioSuffix(url):
		// Presigned URLs carry query strings, so match anywhere in the URL
		for _, suffix := range audioSuffixes {
			if strings.Contains(url, suffix) {
				return suffix
			}
		}
		return ".mp3"
	default:
		return ".txt"
	}
}

func hasAudioSuffix(url string) bool {
	for _, suffix := range audioSuffixes {
		if strings.HasSuffix(url, suffix) {
			return true
		}
	}
	return false
}

// DownloadArtifacts downloads every artifact with a non-empty URL into
// {outputDir}/{jobID}/{fileType}{ext}, creating the directory if absent, and
// returns a mapping from file type to local path. Artifacts are fetched with
// bounded parallelism and per-file isolation: one failed artifact does not
// abort the others. On partial failure the successfully downloaded files are
// still returned alongside the joined errors.
func (c *Client) DownloadArtifacts(ctx context.Context, jobID string, urls map[string]string, outputDir string) (map[string]string, error) {
	jobDir := filepath.Join(outputDir, jobID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create job directory %s: %w", jobDir, err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		files    = make(map[string]string)
		failures []error
	)

	for fileType, url := range urls {
		if url == "" {
			continue
		}

		wg.Add(1)
		go func(fileType, url string) {
			defer wg.Done()

			select {
			case c.semaphore <- struct{}{}:
				defer func() { <-c.semaphore }()
			case <-ctx.Done():
				mu.Lock()
				failures = append(failures, &DownloadError{FileType: fileType, URL: url, Err: ctx.Err()})
				mu.Unlock()
				return
			}

			path := filepath.Join(jobDir, fileType+InferExtension(fileType, url))

			c.logger.Info("Downloading artifact",
				slog.String("job_id", jobID),
				slog.String("file_type", fileType),
				slog.String("path", path),
			)

			size, err := c.downloadFile(ctx, url, path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if c.metrics != nil {
					c.metrics.RecordDownloadFailure()
				}
				c.logger.Warn("Artifact download failed",
					slog.String("job_id", jobID),
					slog.String("file_type", fileType),
					slog.String("error", err.Error()),
				)
				failures = append(failures, &DownloadError{FileType: fileType, URL: url, Err: err})
				return
			}

			if c.metrics != nil {
				c.metrics.RecordDownload(size)
			}
			files[fileType] = path
		}(fileType, url)
	}

	wg.Wait()

	return files, errors.Join(failures...)
}

// downloadFile fetches a single URL into a local file and returns the number
// of bytes written. Presigned URLs are already authorized, so no API key
// header is attached.
func (c *Client) downloadFile(ctx context.Context, url, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %s: %w", path, err)
	}

	size, err := io.Copy(file, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return size, nil
}
