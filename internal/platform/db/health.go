package db

import (
	"context"
	"database/sql"
)

// HealthChecker reports SQLite availability for the readiness endpoint.
// It satisfies ports.HealthChecker via structural typing.
type HealthChecker struct {
	name string
	pool *sql.DB
}

// NewHealthChecker creates a checker that pings the given pool.
func NewHealthChecker(name string, pool *sql.DB) *HealthChecker {
	return &HealthChecker{name: name, pool: pool}
}

// Name returns the checker's identifier in readiness output.
func (h *HealthChecker) Name() string { return h.name }

// HealthCheck pings the database.
func (h *HealthChecker) HealthCheck(ctx context.Context) error {
	return h.pool.PingContext(ctx)
}
