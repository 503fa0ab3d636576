package engine

import (
	"fmt"
	"math"

	"github.com/GriffinCanCode/nuclear-add/internal/backend"
)

// DefaultCancellationEpsilon is the relative threshold below which a sum
// is reported as catastrophic cancellation
const DefaultCancellationEpsilon = 1e-10

// Config is an immutable computation policy. The zero value is not
// usable; build one with NewConfig or a preset.
type Config struct {
	mode    PrecisionMode
	backend string
	tracing bool
	strict  bool
	epsilon float64
}

// Option modifies a Config under construction
type Option func(*Config)

// WithPrecisionMode selects the scalar representation
func WithPrecisionMode(m PrecisionMode) Option {
	return func(c *Config) { c.mode = m }
}

// WithBackend names the registered backend used for batch paths
func WithBackend(name string) Option {
	return func(c *Config) { c.backend = name }
}

// WithTracing enables or disables anomaly recording
func WithTracing(enabled bool) Option {
	return func(c *Config) { c.tracing = enabled }
}

// WithStrict makes anomalies at Warning or above fail the call
func WithStrict(strict bool) Option {
	return func(c *Config) { c.strict = strict }
}

// WithCancellationEpsilon sets the cancellation threshold. Zero disables
// cancellation detection.
func WithCancellationEpsilon(eps float64) Option {
	return func(c *Config) { c.epsilon = eps }
}

// NewConfig applies opts over the defaults: compensated, sequential
// backend, tracing on, strict off.
func NewConfig(opts ...Option) (Config, error) {
	return DefaultConfig().With(opts...)
}

// With returns a copy of c with opts applied. c is left untouched.
func (c Config) With(opts ...Option) (Config, error) {
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if _, ok := modeNames[c.mode]; !ok {
		return fmt.Errorf("%w: precision mode %d", ErrInvalidConfig, int(c.mode))
	}
	if c.backend == "" {
		return fmt.Errorf("%w: backend name is empty", ErrInvalidConfig)
	}
	if c.epsilon < 0 || math.IsNaN(c.epsilon) || math.IsInf(c.epsilon, 0) {
		return fmt.Errorf("%w: cancellation epsilon %v", ErrInvalidConfig, c.epsilon)
	}
	return nil
}

// DefaultConfig is compensated arithmetic on the sequential backend with
// tracing enabled
func DefaultConfig() Config {
	return Config{
		mode:    Compensated,
		backend: backend.SequentialName,
		tracing: true,
		epsilon: DefaultCancellationEpsilon,
	}
}

// FastConfig trades diagnostics for speed
func FastConfig() Config {
	c := DefaultConfig()
	c.mode = Fast
	c.tracing = false
	return c
}

// ParanoidConfig traces every scalar and fails on the first warning
func ParanoidConfig() Config {
	c := DefaultConfig()
	c.mode = Traced
	c.strict = true
	return c
}

func (c Config) PrecisionMode() PrecisionMode { return c.mode }
func (c Config) Backend() string              { return c.backend }
func (c Config) TracingEnabled() bool         { return c.tracing }
func (c Config) Strict() bool                 { return c.strict }
func (c Config) CancellationEpsilon() float64 { return c.epsilon }

func (c Config) String() string {
	return fmt.Sprintf("mode=%s backend=%s tracing=%t strict=%t epsilon=%g",
		c.mode, c.backend, c.tracing, c.strict, c.epsilon)
}
