package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/nuclear-add/internal/engine"
	"github.com/GriffinCanCode/nuclear-add/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Engine    EngineConfig    `yaml:"engine" toml:"engine"`
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string   `envconfig:"PORT" yaml:"port" toml:"port"`
	Host            string   `envconfig:"HOST" yaml:"host" toml:"host"`
	CORSOrigins     []string `envconfig:"CORS_ORIGINS" yaml:"cors_origins" toml:"cors_origins"`
	ShutdownTimeout Duration `envconfig:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	MaxBodyBytes    int64    `envconfig:"MAX_BODY_BYTES" yaml:"max_body_bytes" toml:"max_body_bytes"`
}

// EngineConfig selects the default engine's policy.
type EngineConfig struct {
	PrecisionMode       string  `envconfig:"NUCLEAR_PRECISION_MODE" yaml:"precision_mode" toml:"precision_mode"`
	Backend             string  `envconfig:"NUCLEAR_BACKEND" yaml:"backend" toml:"backend"`
	Tracing             bool    `envconfig:"NUCLEAR_TRACING" yaml:"tracing" toml:"tracing"`
	Strict              bool    `envconfig:"NUCLEAR_STRICT" yaml:"strict" toml:"strict"`
	CancellationEpsilon float64 `envconfig:"NUCLEAR_CANCELLATION_EPSILON" yaml:"cancellation_epsilon" toml:"cancellation_epsilon"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level" toml:"level"`
	Format      string `envconfig:"LOG_FORMAT" yaml:"format" toml:"format"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" yaml:"enabled" toml:"enabled"`
}

// Duration is a time.Duration written as "10s" in env and files.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Load loads configuration from environment variables over the defaults.
// Unset variables keep their default.
func Load() (*Config, error) {
	cfg := Default()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile layers defaults, then the file at path, then the environment.
// The format is chosen by extension: .yaml, .yml or .toml.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: Duration(10 * time.Second),
			MaxBodyBytes:    32 << 20,
		},
		Engine: EngineConfig{
			PrecisionMode:       "compensated",
			Backend:             "sequential",
			Tracing:             true,
			Strict:              false,
			CancellationEpsilon: engine.DefaultCancellationEpsilon,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Validate checks values that the engine and logger would reject later.
func (c *Config) Validate() error {
	if _, err := c.Engine.Build(); err != nil {
		return err
	}
	if err := c.LoggerConfig().Validate(); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit needs positive rps and burst, got %d/%d",
			c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}
	return nil
}

// Build converts the settings to an immutable engine config.
func (e EngineConfig) Build() (engine.Config, error) {
	mode, err := engine.ParsePrecisionMode(e.PrecisionMode)
	if err != nil {
		return engine.Config{}, err
	}
	return engine.NewConfig(
		engine.WithPrecisionMode(mode),
		engine.WithBackend(e.Backend),
		engine.WithTracing(e.Tracing),
		engine.WithStrict(e.Strict),
		engine.WithCancellationEpsilon(e.CancellationEpsilon),
	)
}

// LoggerConfig maps the logging section onto logging.Config.
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:       c.Logging.Level,
		Format:      c.Logging.Format,
		Development: c.Logging.Development,
		OutputPaths: []string{"stderr"},
	}
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}
