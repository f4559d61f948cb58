package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the complete client configuration
type Config struct {
	API         APIConfig         `yaml:"api"`
	Polling     PollingConfig     `yaml:"polling"`
	Download    DownloadConfig    `yaml:"download"`
	Translation TranslationConfig `yaml:"translation"`
	Streams     StreamsConfig     `yaml:"streams"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// APIConfig contains transcription/translation API configuration
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Timeout        int    `yaml:"timeout"`         // seconds
	LanguageFormat string `yaml:"language_format"` // "comma" or "json"
}

// PollingConfig contains job status polling configuration
type PollingConfig struct {
	Interval    int `yaml:"interval"`     // seconds
	Timeout     int `yaml:"timeout"`      // minutes
	MaxAttempts int `yaml:"max_attempts"` // 0 means unbounded
}

// DownloadConfig contains result download configuration
type DownloadConfig struct {
	OutputDir     string `yaml:"output_dir"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

// TranslationConfig contains translation defaults
type TranslationConfig struct {
	Languages []string `yaml:"languages"`
}

// StreamsConfig contains live stream scheduling API configuration
type StreamsConfig struct {
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	SchedulePath string `yaml:"schedule_path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// FromEnv builds a configuration from the environment variable contract used
// by the example scripts. A .env file in the working directory is loaded
// first when present; a missing .env file is not an error.
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	config := Config{
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:8000"),
			APIKey:  os.Getenv("API_KEY"),
		},
		Download: DownloadConfig{
			OutputDir: getEnv("OUTPUT_DIR", "downloads"),
		},
		Streams: StreamsConfig{
			BaseURL: getEnv("LINGOPAL_API_URL", "https://streaming.lingopal.ai"),
			APIKey:  os.Getenv("LINGOPAL_API_KEY"),
		},
	}

	if langs := os.Getenv("TRANSLATION_LANGUAGES"); langs != "" {
		config.Translation.Languages = splitLanguages(langs)
	}

	if timeout := os.Getenv("JOB_TIMEOUT"); timeout != "" {
		minutes, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid JOB_TIMEOUT %q: %w", timeout, err)
		}
		config.Polling.Timeout = minutes
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// applyDefaults fills in defaults for fields the file or environment left unset
func (c *Config) applyDefaults() {
	if c.API.Timeout == 0 {
		c.API.Timeout = 30
	}
	if c.API.LanguageFormat == "" {
		c.API.LanguageFormat = "comma"
	}
	if c.Polling.Interval == 0 {
		c.Polling.Interval = 10
	}
	if c.Polling.Timeout == 0 {
		c.Polling.Timeout = 30
	}
	if c.Download.OutputDir == "" {
		c.Download.OutputDir = "downloads"
	}
	if c.Download.MaxConcurrent == 0 {
		c.Download.MaxConcurrent = 4
	}
	if len(c.Translation.Languages) == 0 {
		c.Translation.Languages = []string{"es", "fr", "de"}
	}
	if c.Streams.SchedulePath == "" {
		c.Streams.SchedulePath = "/v1/streams/schedule"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api config: %w", err)
	}

	if err := c.Polling.Validate(); err != nil {
		return fmt.Errorf("polling config: %w", err)
	}

	if err := c.Download.Validate(); err != nil {
		return fmt.Errorf("download config: %w", err)
	}

	if err := c.Translation.Validate(); err != nil {
		return fmt.Errorf("translation config: %w", err)
	}

	if err := c.Streams.Validate(); err != nil {
		return fmt.Errorf("streams config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates API configuration
func (a *APIConfig) Validate() error {
	if a.BaseURL == "" {
		return fmt.Errorf("base_url cannot be empty")
	}

	if a.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", a.Timeout)
	}

	validFormats := map[string]bool{"comma": true, "json": true}
	if !validFormats[a.LanguageFormat] {
		return fmt.Errorf("language_format must be 'comma' or 'json', got '%s'", a.LanguageFormat)
	}

	return nil
}

// Validate validates polling configuration
func (p *PollingConfig) Validate() error {
	if p.Interval < 1 {
		return fmt.Errorf("interval must be at least 1 second, got %d", p.Interval)
	}

	if p.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 minute, got %d", p.Timeout)
	}

	if p.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts cannot be negative, got %d", p.MaxAttempts)
	}

	return nil
}

// Validate validates download configuration
func (d *DownloadConfig) Validate() error {
	if d.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}

	if d.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be at least 1, got %d", d.MaxConcurrent)
	}

	return nil
}

// Validate validates translation configuration
func (t *TranslationConfig) Validate() error {
	if len(t.Languages) == 0 {
		return fmt.Errorf("languages cannot be empty")
	}

	for _, lang := range t.Languages {
		if strings.TrimSpace(lang) == "" {
			return fmt.Errorf("languages cannot contain empty codes")
		}
	}

	return nil
}

// Validate validates streams configuration
func (s *StreamsConfig) Validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("base_url cannot be empty")
	}

	if !strings.HasPrefix(s.SchedulePath, "/") {
		return fmt.Errorf("schedule_path must start with '/', got '%s'", s.SchedulePath)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// GetTimeout returns the API request timeout as a time.Duration
func (a *APIConfig) GetTimeout() time.Duration {
	return time.Duration(a.Timeout) * time.Second
}

// GetInterval returns the polling interval as a time.Duration
func (p *PollingConfig) GetInterval() time.Duration {
	return time.Duration(p.Interval) * time.Second
}

// GetTimeout returns the overall polling budget as a time.Duration
func (p *PollingConfig) GetTimeout() time.Duration {
	return time.Duration(p.Timeout) * time.Minute
}

// getEnv returns the environment variable value or a fallback when unset
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// splitLanguages parses a comma-separated language list, trimming whitespace
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
