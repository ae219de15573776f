package jsbridge

import (
	"fmt"
	"time"

	"github.com/cryguy/jsbridge/host"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// Config holds runtime configuration for sessions and pools. It is read
// from JSBRIDGE_* environment variables.
type Config struct {
	MemoryLimit      int64         `envconfig:"MEMORY_LIMIT" default:"0"`      // per-session heap ceiling in bytes, 0 = none
	MaxStackSize     int64         `envconfig:"MAX_STACK_SIZE" default:"0"`    // per-session stack ceiling in engine stack units, 0 or oversized = MaxStackSize
	PoolSize         int           `envconfig:"POOL_SIZE" default:"4"`         // sessions per pool
	ExecutionTimeout time.Duration `envconfig:"EXECUTION_TIMEOUT" default:"0"` // default eval deadline, 0 = none
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
	LogDevelopment   bool          `envconfig:"LOG_DEV" default:"false"`
}

// LoadConfig loads configuration from the environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("JSBRIDGE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadConfigOrDefault loads configuration from the environment or returns
// the defaults when it is malformed.
func LoadConfigOrDefault() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		PoolSize: 4,
		LogLevel: "info",
	}
}

// Option configures a Session.
type Option func(*options)

type options struct {
	resolver     host.Resolver
	logger       *zap.Logger
	metrics      *Metrics
	memoryLimit  int64
	maxStackSize int64
	timeout      time.Duration
}

func buildOptions(opts []Option) options {
	o := options{
		resolver: host.Default,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithResolver sets the resolver used to look up host callables by name.
// The default is host.Default.
func WithResolver(r host.Resolver) Option {
	return func(o *options) {
		if r != nil {
			o.resolver = r
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithMemoryLimit sets the engine heap ceiling in bytes.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) { o.memoryLimit = bytes }
}

// WithMaxStackSize lowers the engine stack ceiling. Values above
// MaxStackSize are clamped to it; see Session.SetMaxStackSize.
func WithMaxStackSize(bytes int64) Option {
	return func(o *options) { o.maxStackSize = bytes }
}

// WithConfig applies the limits and default timeout from cfg.
func WithConfig(cfg *Config) Option {
	return func(o *options) {
		if cfg == nil {
			return
		}
		o.memoryLimit = cfg.MemoryLimit
		o.maxStackSize = cfg.MaxStackSize
		o.timeout = cfg.ExecutionTimeout
	}
}
