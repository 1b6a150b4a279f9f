// Package config provides configuration loading and validation for the service.
// Configuration is loaded from YAML files with environment variable overrides
// using a layered system: defaults -> base.yaml -> {profile}.yaml -> env vars.
package config

import "time"

// Config holds all configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	DB        DBConfig        `koanf:"db"`
	Executor  ExecutorConfig  `koanf:"executor"`
	Monitor   MonitorConfig   `koanf:"monitor"`
	Workflow  WorkflowConfig  `koanf:"workflow"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// DBConfig holds SQLite settings. The write pool is pinned to a single
// connection; ReadMaxOpenConns sizes the read pool only.
type DBConfig struct {
	Path             string `koanf:"path"`
	ReadMaxOpenConns int    `koanf:"read_max_open_conns"`
}

// ExecutorConfig holds idempotent write executor settings.
type ExecutorConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// MonitorConfig holds write monitor settings: the audit queue, delivery
// retries, and audit log retention.
type MonitorConfig struct {
	QueueSize        int           `koanf:"queue_size"`
	DeliveryAttempts int           `koanf:"delivery_attempts"`
	Retention        time.Duration `koanf:"retention"`
	PruneInterval    time.Duration `koanf:"prune_interval"`
}

// WorkflowConfig holds the downstream workflow engine client settings.
// When Enabled is false a noop notifier is wired and Client is ignored.
type WorkflowConfig struct {
	Enabled bool         `koanf:"enabled"`
	Client  ClientConfig `koanf:"client"`
}

// ClientConfig holds downstream HTTP client settings.
type ClientConfig struct {
	BaseURL        string               `koanf:"base_url"`
	Timeout        time.Duration        `koanf:"timeout"`
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
	RateLimit      RateLimitConfig      `koanf:"rate_limit"`
}

// RetryConfig holds retry policy settings with exponential backoff.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"`
	InitialInterval time.Duration `koanf:"initial_interval"`
	MaxInterval     time.Duration `koanf:"max_interval"`
	Multiplier      float64       `koanf:"multiplier"`
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"`
	Timeout       time.Duration `koanf:"timeout"`
	HalfOpenLimit int           `koanf:"half_open_limit"`
}

// RateLimitConfig holds client-side rate limiting settings. A zero
// RequestsPerSecond disables the limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	BurstSize         int     `koanf:"burst_size"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Exporter    string `koanf:"exporter"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}
