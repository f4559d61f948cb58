package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lingopal-ai/lingopal-reference/internal/config"
	"github.com/lingopal-ai/lingopal-reference/internal/streams"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (falls back to environment variables)")
	srcLanguage := flag.String("src", "en", "Source language code")
	dstLanguages := flag.String("dst", "es", "Comma-separated destination language codes")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 && len(args) != 3 {
		usage()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	streamClient, err := streams.New(streams.Config{
		BaseURL:      cfg.Streams.BaseURL,
		APIKey:       cfg.Streams.APIKey,
		SchedulePath: cfg.Streams.SchedulePath,
	}, logger)
	if err != nil {
		logger.Error("Failed to create stream client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	req := streams.Request{
		IngestURL:         args[0],
		VocalsTrack:       "0",
		BackgroundTrack:   -1,
		Mix:               "-9,-6",
		EnableCaptions708: false,
		EnableCaptions608: false,
		SrcLanguage:       *srcLanguage,
		DstLanguage:       splitLanguages(*dstLanguages),
		Lipsync:           true,
		VoiceCloning:      true,
	}

	ctx := context.Background()

	var response map[string]interface{}
	if len(args) == 3 {
		req.ScheduledTime = args[1]
		req.Timezone = args[2]
		response, err = streamClient.Schedule(ctx, req)
	} else {
		response, err = streamClient.Start(ctx, req)
	}
	if err != nil {
		logger.Error("Stream request failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		logger.Error("Failed to print response", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  schedule [flags] <ingest_url>                              start a stream now
  schedule [flags] <ingest_url> <scheduled_time> <timezone>  schedule a stream

Examples:
  schedule "srt://your.server:7070"
  schedule "srt://your.server:7070" "2024-01-15T10:00:00" "America/New_York"

Flags:
`)
	flag.PrintDefaults()
}

// loadConfig reads the config file when given, otherwise builds configuration
// from the environment
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.FromEnv()
}

// splitLanguages parses the -dst flag value
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
