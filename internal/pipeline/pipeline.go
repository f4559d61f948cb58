package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lingopal-ai/lingopal-reference/internal/client"
)

// Config controls a single pipeline run. Exactly one of AudioFile and
// AudioURL starts a transcription; when both are empty, SRTURL must be set
// and the run is translation-only.
type Config struct {
	AudioFile string
	AudioURL  string
	SRTURL    string
	Languages []string
	OutputDir string
	Policy    client.PollPolicy
}

// Summary reports the jobs run and the files they produced
type Summary struct {
	TranscriptionJobID string
	TranslationJobID   string
	TranscriptionFiles map[string]string
	TranslationFiles   map[string]string
	OutputDir          string
}

// Pipeline runs transcription and translation jobs in sequence
type Pipeline struct {
	client *client.Client
	logger *slog.Logger
	config Config
}

// New creates a pipeline for the given configuration
func New(c *client.Client, logger *slog.Logger, config Config) (*Pipeline, error) {
	if config.AudioFile == "" && config.AudioURL == "" && config.SRTURL == "" {
		return nil, fmt.Errorf("an audio file, an audio URL, or an SRT URL is required")
	}

	if config.OutputDir == "" {
		config.OutputDir = "downloads"
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		client: c,
		logger: logger,
		config: config,
	}, nil
}

// Run executes the pipeline and returns a summary of the jobs and files
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	if err := p.client.Health(ctx); err != nil {
		return nil, err
	}

	summary := &Summary{OutputDir: p.config.OutputDir}

	translationSource, err := p.transcribe(ctx, summary)
	if err != nil {
		return nil, err
	}

	if err := p.translate(ctx, summary, translationSource); err != nil {
		return nil, err
	}

	p.logger.Info("Pipeline completed",
		slog.String("transcription_job_id", summary.TranscriptionJobID),
		slog.String("translation_job_id", summary.TranslationJobID),
		slog.Int("transcription_files", len(summary.TranscriptionFiles)),
		slog.Int("translation_files", len(summary.TranslationFiles)),
		slog.String("output_dir", summary.OutputDir),
	)

	return summary, nil
}

// transcribe runs the transcription leg and returns the translation source.
// When only an SRT URL is configured, transcription is skipped entirely.
func (p *Pipeline) transcribe(ctx context.Context, summary *Summary) (client.Source, error) {
	if p.config.AudioFile == "" && p.config.AudioURL == "" {
		p.logger.Info("No audio source, running translation only",
			slog.String("srt_url", p.config.SRTURL),
		)
		return client.URLSource(p.config.SRTURL), nil
	}

	var src client.Source
	if p.config.AudioURL != "" {
		src = client.URLSource(p.config.AudioURL)
	} else {
		src = client.FileSource(p.config.AudioFile)
	}

	jobID, err := p.client.SubmitTranscription(ctx, src)
	if err != nil {
		return client.Source{}, fmt.Errorf("transcription submit: %w", err)
	}
	summary.TranscriptionJobID = jobID

	result, err := p.client.PollUntilTerminal(ctx, jobID, p.config.Policy)
	if err != nil {
		return client.Source{}, err
	}
	if err := result.Err(); err != nil {
		return client.Source{}, err
	}

	urls, err := p.client.FetchResultURLs(ctx, jobID)
	if err != nil {
		return client.Source{}, fmt.Errorf("transcription result: %w", err)
	}

	files, err := p.client.DownloadArtifacts(ctx, jobID, urls, p.config.OutputDir)
	if err != nil && len(files) == 0 {
		return client.Source{}, fmt.Errorf("transcription download: %w", err)
	}
	if err != nil {
		p.logger.Warn("Some transcription artifacts failed to download",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
	}
	summary.TranscriptionFiles = files

	// A configured SRT URL overrides the downloaded subtitle file
	if p.config.SRTURL != "" {
		return client.URLSource(p.config.SRTURL), nil
	}

	srtPath, ok := SelectSubtitle(files)
	if !ok {
		return client.Source{}, fmt.Errorf("no subtitle file found in transcription results")
	}

	p.logger.Info("Selected subtitle file for translation", slog.String("path", srtPath))
	return client.FileSource(srtPath), nil
}

// translate runs the translation leg against the selected source
func (p *Pipeline) translate(ctx context.Context, summary *Summary, src client.Source) error {
	jobID, err := p.client.SubmitTranslation(ctx, src, p.config.Languages)
	if err != nil {
		return fmt.Errorf("translation submit: %w", err)
	}
	summary.TranslationJobID = jobID

	result, err := p.client.PollUntilTerminal(ctx, jobID, p.config.Policy)
	if err != nil {
		return err
	}
	if err := result.Err(); err != nil {
		return err
	}

	urls, err := p.client.FetchResultURLs(ctx, jobID)
	if err != nil {
		return fmt.Errorf("translation result: %w", err)
	}

	files, err := p.client.DownloadArtifacts(ctx, jobID, urls, p.config.OutputDir)
	if err != nil && len(files) == 0 {
		return fmt.Errorf("translation download: %w", err)
	}
	if err != nil {
		p.logger.Warn("Some translation artifacts failed to download",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
	}
	summary.TranslationFiles = files

	return nil
}

// SelectSubtitle picks the subtitle file to feed into translation, preferring
// the transcript, then diarization, then any file with an .srt extension.
func SelectSubtitle(files map[string]string) (string, bool) {
	for _, preferred := range []string{"transcript", "diarization"} {
		if path, ok := files[preferred]; ok {
			return path, true
		}
	}

	for _, path := range files {
		if strings.HasSuffix(path, ".srt") {
			return path, true
		}
	}

	return "", false
}
