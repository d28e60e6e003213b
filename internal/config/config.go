// Package config reads and writes the pesalens.yaml workspace configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/pesalens/pesalens/internal/analytics"
)

// FileName is the configuration file at the workspace root.
const FileName = "pesalens.yaml"

// EnvPrefix prefixes every environment override, e.g. PESALENS_LOG_LEVEL.
const EnvPrefix = "PESALENS"

// Config represents the top-level pesalens.yaml configuration.
type Config struct {
	Ingest  IngestConfig         `yaml:"ingest"`
	Server  ServerConfig         `yaml:"server"`
	Logging LoggingConfig        `yaml:"logging"`
	Bundles analytics.AllowLists `yaml:"bundles"`
	Git     GitConfig            `yaml:"git"`
}

// IngestConfig controls statement ingestion.
type IngestConfig struct {
	PreviewLimit int    `yaml:"preview_limit" validate:"gte=0"`
	RulesFile    string `yaml:"rules_file"` // relative to the workspace
}

// ServerConfig controls the HTTP query server.
type ServerConfig struct {
	Addr           string        `yaml:"addr" validate:"required,hostname_port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" validate:"gt=0"`
}

// LoggingConfig selects the log level and encoding.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name" validate:"required_if=AutoCommit true"`
	AuthorEmail string `yaml:"author_email" validate:"required_if=AutoCommit true,omitempty,email"`
}

// overrides are the settings that may come from the environment. Unset
// variables leave the file value alone.
type overrides struct {
	LogLevel     string        `envconfig:"LOG_LEVEL"`
	LogFormat    string        `envconfig:"LOG_FORMAT"`
	Addr         string        `envconfig:"ADDR"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT"`
	PreviewLimit int           `envconfig:"PREVIEW_LIMIT"`
	AutoCommit   *bool         `envconfig:"GIT_AUTO_COMMIT"`
}

// Load reads a pesalens.yaml file from disk, applies environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default() *Config {
	return &Config{
		Ingest: IngestConfig{
			PreviewLimit: 1000,
			RulesFile:    "rules.yaml",
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
			MaxUploadBytes: 32 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Bundles: analytics.DefaultAllowLists(),
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "pesalens",
			AuthorEmail: "ingest@pesalens.local",
		},
	}
}

// ApplyEnv overlays PESALENS_* environment variables.
func (c *Config) ApplyEnv() error {
	var env overrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		c.Logging.Format = env.LogFormat
	}
	if env.Addr != "" {
		c.Server.Addr = env.Addr
	}
	if env.ReadTimeout > 0 {
		c.Server.ReadTimeout = env.ReadTimeout
	}
	if env.WriteTimeout > 0 {
		c.Server.WriteTimeout = env.WriteTimeout
	}
	if env.PreviewLimit > 0 {
		c.Ingest.PreviewLimit = env.PreviewLimit
	}
	if env.AutoCommit != nil {
		c.Git.AutoCommit = *env.AutoCommit
	}
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
