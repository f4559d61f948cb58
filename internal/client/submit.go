package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Source identifies the input of a job: exactly one of a local file path or a
// remote presigned URL.
type Source struct {
	FilePath     string
	PresignedURL string
}

// FileSource returns a Source for a local file
func FileSource(path string) Source {
	return Source{FilePath: path}
}

// URLSource returns a Source for a presigned URL
func URLSource(url string) Source {
	return Source{PresignedURL: url}
}

// validate enforces source exclusivity before any network I/O
func (s Source) validate() error {
	if s.FilePath == "" && s.PresignedURL == "" {
		return ErrSourceMissing
	}
	if s.FilePath != "" && s.PresignedURL != "" {
		return ErrSourceConflict
	}
	if s.FilePath != "" {
		if _, err := os.Stat(s.FilePath); err != nil {
			return fmt.Errorf("source file %s: %w", s.FilePath, err)
		}
	}
	return nil
}

// jobResponse is the submit endpoint response
type jobResponse struct {
	JobID string `json:"job_id"`
}

// SubmitTranscription submits a transcription job for the given source and
// returns the job ID. A local file is uploaded as multipart form data; a
// presigned URL is passed through as a form field.
func (c *Client) SubmitTranscription(ctx context.Context, src Source) (string, error) {
	jobID, err := c.submit(ctx, "/api/v1/transcribe", src, nil)
	if err != nil {
		c.recordSubmitFailure("transcription")
		return "", err
	}

	c.recordSubmit("transcription")
	c.logger.Info("Transcription job started", slog.String("job_id", jobID))
	return jobID, nil
}

// SubmitTranslation submits a translation job for the given source and
// returns the job ID. An empty language list defaults to es, fr, de. The wire
// encoding of the list follows the configured LanguageFormat.
func (c *Client) SubmitTranslation(ctx context.Context, src Source, languages []string) (string, error) {
	if len(languages) == 0 {
		languages = []string{"es", "fr", "de"}
	}

	jobID, err := c.submit(ctx, "/api/v1/translate", src, languages)
	if err != nil {
		c.recordSubmitFailure("translation")
		return "", err
	}

	c.recordSubmit("translation")
	c.logger.Info("Translation job started",
		slog.String("job_id", jobID),
		slog.String("languages", strings.Join(languages, ",")),
	)
	return jobID, nil
}

// submit validates the source and issues the submit POST for one endpoint
func (c *Client) submit(ctx context.Context, path string, src Source, languages []string) (string, error) {
	if err := src.validate(); err != nil {
		return "", err
	}

	var (
		body        io.Reader
		contentType string
		err         error
	)

	if src.PresignedURL != "" {
		body, contentType = encodeForm(src.PresignedURL, languages, c.config.LanguageFormat)
	} else {
		body, contentType, err = encodeMultipart(src.FilePath, languages, c.config.LanguageFormat)
		if err != nil {
			return "", err
		}
	}

	var resp jobResponse
	if err := c.do(ctx, http.MethodPost, path, contentType, body, &resp); err != nil {
		return "", err
	}

	if resp.JobID == "" {
		return "", fmt.Errorf("submit response did not contain a job_id")
	}

	return resp.JobID, nil
}

// encodeForm builds a form-encoded body for presigned URL submissions
func encodeForm(presignedURL string, languages []string, format LanguageFormat) (io.Reader, string) {
	values := url.Values{}
	values.Set("s3_presigned_url", presignedURL)
	if len(languages) > 0 {
		values.Set("languages", EncodeLanguages(languages, format))
	}
	return strings.NewReader(values.Encode()), "application/x-www-form-urlencoded"
}

// encodeMultipart builds a multipart body uploading a local file
func encodeMultipart(path string, languages []string, format LanguageFormat) (io.Reader, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open source file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fileWriter, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := io.Copy(fileWriter, file); err != nil {
		return nil, "", fmt.Errorf("failed to write file data: %w", err)
	}

	if len(languages) > 0 {
		if err := writer.WriteField("languages", EncodeLanguages(languages, format)); err != nil {
			return nil, "", fmt.Errorf("failed to write languages field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

// EncodeLanguages serializes an ordered language list in the given format
func EncodeLanguages(languages []string, format LanguageFormat) string {
	if format == LanguagesJSON {
		data, _ := json.Marshal(languages)
		return string(data)
	}
	return strings.Join(languages, ",")
}

// DecodeLanguages parses a wire language value produced by either encoding,
// preserving order.
func DecodeLanguages(value string) []string {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "[") {
		var languages []string
		if err := json.Unmarshal([]byte(value), &languages); err == nil {
			return languages
		}
	}

	parts := strings.Split(value, ",")
	languages := make([]string, 0, len(parts))
	for _, part := range parts {
		if lang := strings.TrimSpace(part); lang != "" {
			languages = append(languages, lang)
		}
	}
	return languages
}

// recordSubmit records a successful submission when metrics are enabled
func (c *Client) recordSubmit(kind string) {
	if c.metrics != nil {
		c.metrics.RecordSubmit(kind)
	}
}

// recordSubmitFailure records a failed submission when metrics are enabled
func (c *Client) recordSubmitFailure(kind string) {
	if c.metrics != nil {
		c.metrics.RecordSubmitFailure(kind)
	}
}
