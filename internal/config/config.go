// Package config loads application configuration from environment
// variables (prefix TRREB) merged with an optional YAML file, and
// resolves the on-disk layout of the data directories. Configuration
// errors are the only fatal errors in the system; they surface at
// startup, never mid-batch.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Download DownloadConfig `yaml:"download" envconfig:"DOWNLOAD"`
	LLM      LLMConfig      `yaml:"llm" envconfig:"LLM"`
	Batch    BatchConfig    `yaml:"batch" envconfig:"BATCH"`
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
}

// LoggingConfig controls the slog setup.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/trrebwatch.log"`
}

// PathsConfig anchors the data directory layout.
type PathsConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data" validate:"required"`
}

// DownloadConfig controls the bulletin downloader.
type DownloadConfig struct {
	BaseURL    string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://trreb.ca/wp-content/files/market-stats/market-watch" validate:"required,url"`
	StartYear  int           `yaml:"start_year" envconfig:"START_YEAR" default:"2016" validate:"min=2000,max=2100"`
	Workers    int           `yaml:"workers" envconfig:"WORKERS" default:"5" validate:"min=1,max=32"`
	RatePerSec float64       `yaml:"rate_per_sec" envconfig:"RATE_PER_SEC" default:"2"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"60s"`
	ArchiveURL string        `yaml:"archive_url" envconfig:"ARCHIVE_URL" default:"https://trreb.ca/market-data/market-watch/"`
	Headless   bool          `yaml:"headless" envconfig:"HEADLESS" default:"true"`
}

// LLMConfig configures the chat-completions service the assisted
// extractor delegates to.
type LLMConfig struct {
	APIKey     string        `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL    string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://api.x.ai/v1" validate:"required,url"`
	Model      string        `yaml:"model" envconfig:"MODEL" default:"grok-3-mini-fast-beta" validate:"required"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"120s"`
	RatePerSec float64       `yaml:"rate_per_sec" envconfig:"RATE_PER_SEC" default:"0.5"`
}

// BatchConfig controls the per-document worker pool.
type BatchConfig struct {
	Workers   int  `yaml:"workers" envconfig:"WORKERS" default:"4" validate:"min=1,max=32"`
	Overwrite bool `yaml:"overwrite" envconfig:"OVERWRITE" default:"false"`
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	Port         int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
}

// DatabaseConfig configures the optional postgres sink. An empty DSN
// disables it.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" envconfig:"DSN"`
}

// Load builds the configuration from environment variables, then
// overlays the YAML file when one exists, validates the result and
// returns it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("TRREB", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		if err := loadFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configFile, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration with struct tags. Called by Load
// and again by commands that assemble a Config by hand.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func configFilePath() string {
	if path := os.Getenv("TRREB_CONFIG"); path != "" {
		return path
	}
	return "trrebwatch.yaml"
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
