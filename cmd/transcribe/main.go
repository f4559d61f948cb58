package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lingopal-ai/lingopal-reference/internal/client"
	"github.com/lingopal-ai/lingopal-reference/internal/config"
	"github.com/lingopal-ai/lingopal-reference/internal/metrics"
	"github.com/lingopal-ai/lingopal-reference/internal/pipeline"
)

const (
	serviceName    = "lingopal-transcribe"
	serviceVersion = "1.0.0"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (falls back to environment variables)")
	audioFile := flag.String("audio", "", "Path to the audio file to transcribe")
	audioURL := flag.String("audio-url", "", "Presigned URL of the audio file to transcribe")
	srtURL := flag.String("srt-url", "", "Presigned URL of an SRT file to translate (skips transcription when no audio is given)")
	languages := flag.String("languages", "", "Comma-separated target language codes (default from config)")
	outputDir := flag.String("output", "", "Directory for downloaded results (default from config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logging)

	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("api_base_url", cfg.API.BaseURL),
	)

	if *outputDir != "" {
		cfg.Download.OutputDir = *outputDir
	}

	targetLanguages := cfg.Translation.Languages
	if *languages != "" {
		targetLanguages = splitLanguages(*languages)
	}

	appMetrics := metrics.NewMetrics()

	jobClient, err := client.New(client.Config{
		BaseURL:        cfg.API.BaseURL,
		APIKey:         cfg.API.APIKey,
		Timeout:        cfg.API.GetTimeout(),
		LanguageFormat: client.LanguageFormat(cfg.API.LanguageFormat),
		MaxConcurrent:  cfg.Download.MaxConcurrent,
	}, logger, appMetrics)
	if err != nil {
		logger.Error("Failed to create job client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	audioPath := *audioFile
	if audioPath == "" && *audioURL == "" && *srtURL == "" {
		// The example scripts default to the audio file named in the
		// environment when no flag is given
		audioPath = os.Getenv("AUDIO_FILE")
	}

	run, err := pipeline.New(jobClient, logger, pipeline.Config{
		AudioFile: audioPath,
		AudioURL:  *audioURL,
		SRTURL:    *srtURL,
		Languages: targetLanguages,
		OutputDir: cfg.Download.OutputDir,
		Policy: client.PollPolicy{
			Interval:    cfg.Polling.GetInterval(),
			Timeout:     cfg.Polling.GetTimeout(),
			MaxAttempts: cfg.Polling.MaxAttempts,
		},
	})
	if err != nil {
		logger.Error("Failed to create pipeline", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	summary, err := run.Run(ctx)
	if err != nil {
		logger.Error("Pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("All jobs completed successfully",
		slog.String("transcription_job_id", summary.TranscriptionJobID),
		slog.String("translation_job_id", summary.TranslationJobID),
		slog.String("output_dir", summary.OutputDir),
	)
}

// loadConfig reads the config file when given, otherwise builds configuration
// from the environment (.env contract of the example scripts)
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.FromEnv()
}

// splitLanguages parses the -languages flag value
func splitLanguages(s string) []string {
	parts := strings.Split(s, ",")
	languages := make([]string, 0, len(parts))
	for _, part := range parts {
		if lang := strings.TrimSpace(part); lang != "" {
			languages = append(languages, lang)
		}
	}
	return languages
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
