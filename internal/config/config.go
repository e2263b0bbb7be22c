package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mcncl/jsonsheet/internal/converter"
	"github.com/mcncl/jsonsheet/internal/sheet"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for jsonsheet
type Config struct {
	Converter string        `yaml:"converter"`
	Output    OutputConfig  `yaml:"output"`
	Headers   HeadersConfig `yaml:"headers"`
	Server    ServerConfig  `yaml:"server"`
	Logging   LoggingConfig `yaml:"logging"`
}

// OutputConfig controls the generated spreadsheet
type OutputConfig struct {
	Format      string `yaml:"format"`
	SheetName   string `yaml:"sheet_name"`
	FilePattern string `yaml:"file_pattern"`
}

// HeadersConfig controls how column names are rendered in the header row
type HeadersConfig struct {
	Style string `yaml:"style"`
}

// ServerConfig holds HTTP upload server settings
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds log/slog settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Converter: "generic",
		Output: OutputConfig{
			Format:      string(sheet.FormatXLSX),
			SheetName:   sheet.DefaultSheetName,
			FilePattern: sheet.DefaultFilePattern,
		},
		Headers: HeadersConfig{
			Style: string(sheet.HeadersOriginal),
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			MaxUploadBytes:  32 << 20,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			RequestTimeout:  60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonsheet.yml", ".jsonsheet.yaml", "jsonsheet.yml", "jsonsheet.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// envOverrides maps environment variables onto config fields.
var envOverrides = []struct {
	name  string
	apply func(c *Config, v string) error
}{
	{"JSONSHEET_CONVERTER", func(c *Config, v string) error { c.Converter = v; return nil }},
	{"JSONSHEET_OUTPUT_FORMAT", func(c *Config, v string) error { c.Output.Format = v; return nil }},
	{"JSONSHEET_SHEET_NAME", func(c *Config, v string) error { c.Output.SheetName = v; return nil }},
	{"JSONSHEET_HEADERS", func(c *Config, v string) error { c.Headers.Style = v; return nil }},
	{"JSONSHEET_HOST", func(c *Config, v string) error { c.Server.Host = v; return nil }},
	{"JSONSHEET_PORT", func(c *Config, v string) error {
		p, err := strconv.Atoi(v)
		c.Server.Port = p
		return err
	}},
	{"JSONSHEET_MAX_UPLOAD_BYTES", func(c *Config, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		c.Server.MaxUploadBytes = n
		return err
	}},
	{"JSONSHEET_READ_TIMEOUT", durationOverride(func(c *Config) *time.Duration { return &c.Server.ReadTimeout })},
	{"JSONSHEET_WRITE_TIMEOUT", durationOverride(func(c *Config) *time.Duration { return &c.Server.WriteTimeout })},
	{"JSONSHEET_REQUEST_TIMEOUT", durationOverride(func(c *Config) *time.Duration { return &c.Server.RequestTimeout })},
	{"JSONSHEET_SHUTDOWN_TIMEOUT", durationOverride(func(c *Config) *time.Duration { return &c.Server.ShutdownTimeout })},
	{"LOG_LEVEL", func(c *Config, v string) error { c.Logging.Level = v; return nil }},
	{"LOG_FORMAT", func(c *Config, v string) error { c.Logging.Format = v; return nil }},
}

func durationOverride(field func(c *Config) *time.Duration) func(c *Config, v string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

// ApplyEnv overrides settings from JSONSHEET_* (and LOG_*) environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, o := range envOverrides {
		v := strings.TrimSpace(getenv(o.name))
		if v == "" {
			continue
		}
		if err := o.apply(c, v); err != nil {
			return fmt.Errorf("invalid %s: %w", o.name, err)
		}
	}
	return nil
}

// Characters excel refuses in worksheet names.
const invalidSheetChars = `:\/?*[]`

// Validate checks that every setting names something that exists.
func (c *Config) Validate() error {
	if _, err := converter.ParseKind(c.Converter); err != nil {
		return fmt.Errorf("invalid default converter: %w", err)
	}
	if !sheet.ValidFormat(sheet.Format(c.Output.Format)) {
		return fmt.Errorf("invalid output format %q: must be xlsx or csv", c.Output.Format)
	}
	if !sheet.ValidHeaderStyle(sheet.HeaderStyle(c.Headers.Style)) {
		return fmt.Errorf("invalid header style %q", c.Headers.Style)
	}
	if len(c.Output.SheetName) > 31 {
		return fmt.Errorf("sheet name %q is longer than 31 characters", c.Output.SheetName)
	}
	if strings.ContainsAny(c.Output.SheetName, invalidSheetChars) {
		return fmt.Errorf("sheet name %q must not contain any of %s", c.Output.SheetName, invalidSheetChars)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.Server.RequestTimeout)
	}
	return nil
}

// Addr returns the server listen address in host:port format.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// WriterOptions returns the sheet writer settings.
func (c *Config) WriterOptions() sheet.Options {
	return sheet.Options{
		SheetName: c.Output.SheetName,
		Headers:   sheet.HeaderStyle(c.Headers.Style),
	}
}

// CLIOverrides holds flag values; empty fields leave the loaded config untouched.
type CLIOverrides struct {
	Converter string
	Format    string
	SheetName string
	Headers   string
	Debug     bool
}

// MergeConfigs applies CLI overrides on top of a base config.
// Non-empty values from override take precedence over base values
func MergeConfigs(base *Config, override CLIOverrides) *Config {
	merged := *base

	if override.Converter != "" {
		merged.Converter = override.Converter
	}
	if override.Format != "" {
		merged.Output.Format = override.Format
	}
	if override.SheetName != "" {
		merged.Output.SheetName = override.SheetName
	}
	if override.Headers != "" {
		merged.Headers.Style = override.Headers
	}
	if override.Debug {
		merged.Logging.Level = "debug"
	}

	return &merged
}

// LoadConfigWithCLI loads the config file (if any), then the environment, then CLI flags.
func LoadConfigWithCLI(configPath string, getenv func(string) string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}

	cfg = MergeConfigs(cfg, cli)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
