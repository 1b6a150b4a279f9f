package config

const (
	defaultServerPort = 8080

	defaultReadMaxOpenConns = 4

	defaultMonitorQueueSize        = 1024
	defaultMonitorDeliveryAttempts = 3

	defaultRetryMaxAttempts = 3
	defaultRetryMultiplier  = 2.0

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":          "0.0.0.0",
		"server.port":          defaultServerPort,
		"server.read_timeout":  "5s",
		"server.write_timeout": "10s",
		"server.idle_timeout":  "120s",

		"log.level":  "info",
		"log.format": "json",

		"db.path":                "data/idemgate.db",
		"db.read_max_open_conns": defaultReadMaxOpenConns,

		"executor.timeout": "10s",

		"monitor.queue_size":        defaultMonitorQueueSize,
		"monitor.delivery_attempts": defaultMonitorDeliveryAttempts,
		"monitor.retention":         "720h",
		"monitor.prune_interval":    "1h",

		"workflow.enabled":                                false,
		"workflow.client.base_url":                        "http://localhost:8081",
		"workflow.client.timeout":                         "30s",
		"workflow.client.retry.max_attempts":              defaultRetryMaxAttempts,
		"workflow.client.retry.initial_interval":          "100ms",
		"workflow.client.retry.max_interval":              "10s",
		"workflow.client.retry.multiplier":                defaultRetryMultiplier,
		"workflow.client.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"workflow.client.circuit_breaker.timeout":         "30s",
		"workflow.client.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,
		"workflow.client.rate_limit.requests_per_second":  0.0,
		"workflow.client.rate_limit.burst_size":           1,

		"telemetry.enabled":  false,
		"telemetry.exporter": "stdout",
		"telemetry.endpoint": "",
	}
}
