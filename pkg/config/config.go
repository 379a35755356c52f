package config

import (
	"context"
	"time"
)

// Config is the complete runtime configuration of wrfconf.
type Config struct {
	Runtime   RuntimeConfig   `koanf:"runtime"   validate:"required"`
	Store     StoreConfig     `koanf:"store"     validate:"required"`
	Generator GeneratorConfig `koanf:"generator" validate:"required"`
	Wizard    WizardConfig    `koanf:"wizard"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	CLI       CLIConfig       `koanf:"cli"`
}

// RuntimeConfig controls logging.
type RuntimeConfig struct {
	LogLevel  string `koanf:"log_level"  validate:"oneof=debug info warn error disabled"`
	LogJSON   bool   `koanf:"log_json"`
	LogSource bool   `koanf:"log_source"`
}

// StoreConfig selects where the document is persisted.
type StoreConfig struct {
	Driver   string          `koanf:"driver"    validate:"oneof=file sqlite redis"`
	Path     string          `koanf:"path"`
	Key      string          `koanf:"key"       validate:"required"`
	RedisURL SensitiveString `koanf:"redis_url"`
}

// GeneratorConfig selects how namelist files are produced.
type GeneratorConfig struct {
	Mode        string        `koanf:"mode"         validate:"oneof=local remote"`
	URL         string        `koanf:"url"`
	Timeout     time.Duration `koanf:"timeout"      validate:"min=0"`
	RetryCount  int           `koanf:"retry_count"  validate:"min=0,max=10"`
	OutputDir   string        `koanf:"output_dir"`
	TemplateDir string        `koanf:"template_dir"`
}

// WizardConfig tunes the editing workflow.
type WizardConfig struct {
	SingleDomain bool `koanf:"single_domain"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host        string `koanf:"host"         validate:"required"`
	Port        int    `koanf:"port"         validate:"min=1,max=65535"`
	CORSEnabled bool   `koanf:"cors_enabled"`
}

// CLIConfig contains CLI presentation settings.
type CLIConfig struct {
	Format      string `koanf:"format"      validate:"oneof=auto json yaml table tui"`
	NoColor     bool   `koanf:"no_color"`
	Interactive bool   `koanf:"interactive"`
}

// Service loads and validates configuration.
type Service interface {
	// Load applies sources in order; later sources win. Environment
	// variables are applied last.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	Validate(config *Config) error
	// GetSource reports which source provided a key.
	GetSource(key string) SourceType
}

// Source supplies a partial configuration tree.
type Source interface {
	Load() (map[string]any, error)
	Type() SourceType
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Load loads configuration using the default service.
func Load() (*Config, error) {
	return NewService().Load(context.Background())
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Runtime: RuntimeConfig{LogLevel: "info"},
		Store: StoreConfig{
			Driver: "file",
			Key:    "global_wrf_config",
		},
		Generator: GeneratorConfig{
			Mode:       "local",
			URL:        "http://localhost:5001",
			Timeout:    30 * time.Second,
			RetryCount: 2,
		},
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        5001,
			CORSEnabled: false,
		},
		CLI: CLIConfig{Format: "auto", Interactive: true},
	}
}
