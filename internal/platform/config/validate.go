package config

import (
	"errors"
	"fmt"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Log.validate(),
		c.DB.validate(),
		c.Executor.validate(),
		c.Monitor.validate(),
		c.Workflow.validate(),
		c.Telemetry.validate(),
	)
}

func (s *ServerConfig) validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}

	return errors.Join(errs...)
}

func (l *LogConfig) validate() error {
	var errs []error

	switch l.Level {
	case "debug", "info", "warn", "error":
		// Valid levels.
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level))
	}

	switch l.Format {
	case "json", "text":
		// Valid formats.
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: json, text; got %q", l.Format))
	}

	return errors.Join(errs...)
}

func (d *DBConfig) validate() error {
	var errs []error

	if d.Path == "" {
		errs = append(errs, errors.New("db.path must not be empty"))
	}
	if d.ReadMaxOpenConns < 1 {
		errs = append(errs, fmt.Errorf("db.read_max_open_conns must be >= 1, got %d", d.ReadMaxOpenConns))
	}

	return errors.Join(errs...)
}

func (e *ExecutorConfig) validate() error {
	if e.Timeout <= 0 {
		return errors.New("executor.timeout must be positive")
	}
	return nil
}

func (m *MonitorConfig) validate() error {
	var errs []error

	if m.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("monitor.queue_size must be >= 1, got %d", m.QueueSize))
	}
	if m.DeliveryAttempts < 1 {
		errs = append(errs, fmt.Errorf("monitor.delivery_attempts must be >= 1, got %d", m.DeliveryAttempts))
	}
	if m.Retention <= 0 {
		errs = append(errs, errors.New("monitor.retention must be positive"))
	}
	if m.PruneInterval <= 0 {
		errs = append(errs, errors.New("monitor.prune_interval must be positive"))
	}

	return errors.Join(errs...)
}

func (w *WorkflowConfig) validate() error {
	if !w.Enabled {
		return nil
	}
	return w.Client.validate()
}

func (cl *ClientConfig) validate() error {
	var errs []error

	if cl.BaseURL == "" {
		errs = append(errs, errors.New("workflow.client.base_url must not be empty"))
	}
	if cl.Timeout <= 0 {
		errs = append(errs, errors.New("workflow.client.timeout must be positive"))
	}
	if cl.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("workflow.client.retry.max_attempts must be >= 1, got %d", cl.Retry.MaxAttempts))
	}
	if cl.Retry.Multiplier <= 0 {
		errs = append(errs, fmt.Errorf("workflow.client.retry.multiplier must be positive, got %f", cl.Retry.Multiplier))
	}
	if cl.CircuitBreaker.MaxFailures < 1 {
		errs = append(errs, fmt.Errorf("workflow.client.circuit_breaker.max_failures must be >= 1, got %d",
			cl.CircuitBreaker.MaxFailures))
	}
	if cl.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("workflow.client.rate_limit.requests_per_second must not be negative, got %f",
			cl.RateLimit.RequestsPerSecond))
	}

	return errors.Join(errs...)
}

func (t *TelemetryConfig) validate() error {
	if !t.Enabled {
		return nil
	}

	var errs []error

	switch t.Exporter {
	case "stdout", "otlp":
		// Valid exporters.
	default:
		errs = append(errs, fmt.Errorf("telemetry.exporter must be one of: stdout, otlp; got %q", t.Exporter))
	}

	if t.Exporter == "otlp" && t.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint must not be empty when exporter is otlp"))
	}

	return errors.Join(errs...)
}
