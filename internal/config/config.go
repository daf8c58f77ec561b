// ABOUTME: Configuration loading and parsing for lehmate
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/2389/lehmate/internal/store"
)

// Config represents the complete lehmate configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Store     StoreConfig     `yaml:"store" toml:"store"`
	Assistant AssistantConfig `yaml:"assistant" toml:"assistant"`
	Dedupe    DedupeConfig    `yaml:"dedupe" toml:"dedupe"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr" toml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"-" toml:"-"`

	ShutdownTimeoutRaw string `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// StoreConfig selects the key-value backend.
// Platform is "web" (durable SQLite), "native" (no persistence) or "memory".
type StoreConfig struct {
	Platform string `yaml:"platform" toml:"platform"`
	Path     string `yaml:"path" toml:"path"`
	Driver   string `yaml:"driver" toml:"driver"` // "sqlite" (default) or "sqlite3"
}

// AssistantConfig holds conversation engine timing
type AssistantConfig struct {
	ReplyDelay time.Duration `yaml:"-" toml:"-"`

	ReplyDelayRaw string `yaml:"reply_delay" toml:"reply_delay"`
}

// DedupeConfig bounds the Idempotency-Key cache
type DedupeConfig struct {
	TTL     time.Duration `yaml:"-" toml:"-"`
	MaxSize int           `yaml:"max_size" toml:"max_size"`

	TTLRaw string `yaml:"ttl" toml:"ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns a configuration usable without any file.
// dataDir is where the SQLite database lives.
func Default(dataDir string) *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:           "127.0.0.1:8080",
			ShutdownTimeout:    10 * time.Second,
			ShutdownTimeoutRaw: "10s",
		},
		Store: StoreConfig{
			Platform: string(store.PlatformWeb),
			Path:     filepath.Join(dataDir, "lehmate.db"),
			Driver:   store.DriverModernc,
		},
		Assistant: AssistantConfig{
			ReplyDelay:    time.Second,
			ReplyDelayRaw: "1s",
		},
		Dedupe: DedupeConfig{
			TTL:     5 * time.Minute,
			TTLRaw:  "5m",
			MaxSize: 10_000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are parsed as TOML, anything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// Values missing from the file keep the defaults for dataDir.
func Load(path, dataDir string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data, FormatFor(path), dataDir)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Format is a configuration file syntax.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the format from a file name.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Parse decodes configuration bytes in the given format on top of the defaults.
func Parse(data []byte, format Format, dataDir string) (*Config, error) {
	expanded := expandEnvVars(string(data))

	cfg := Default(dataDir)
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Encode renders cfg in the given format, for `lehmate init`.
func Encode(cfg *Config, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, fmt.Errorf("encoding toml: %w", err)
		}
	default:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding yaml: %w", err)
		}
	}
	return buf.Bytes(), nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	platform, err := store.ParsePlatform(c.Store.Platform)
	if err != nil {
		return fmt.Errorf("store.platform: %w", err)
	}
	if platform == store.PlatformWeb && c.Store.Path == "" {
		return fmt.Errorf("store.path is required when store.platform is %q", platform)
	}
	switch c.Store.Driver {
	case "", store.DriverModernc, store.DriverCGO:
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", store.DriverModernc, store.DriverCGO, c.Store.Driver)
	}

	if c.Assistant.ReplyDelay <= 0 {
		return fmt.Errorf("assistant.reply_delay must be positive")
	}
	if c.Dedupe.TTL <= 0 {
		return fmt.Errorf("dedupe.ttl must be positive")
	}
	if c.Dedupe.MaxSize < 1 {
		return fmt.Errorf("dedupe.max_size must be at least 1")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// StoreOptions converts the store section into options for store.Open.
func (c *Config) StoreOptions() store.Options {
	platform, _ := store.ParsePlatform(c.Store.Platform)
	return store.Options{
		Platform: platform,
		Path:     c.Store.Path,
		Driver:   c.Store.Driver,
	}
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeoutRaw, &cfg.Server.ShutdownTimeout},
		{"assistant.reply_delay", cfg.Assistant.ReplyDelayRaw, &cfg.Assistant.ReplyDelay},
		{"dedupe.ttl", cfg.Dedupe.TTLRaw, &cfg.Dedupe.TTL},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}

	return nil
}
