// Package monitor delivers executor outcomes to three sinks: the durable
// audit log table, the OpenTelemetry write-path instruments, and structured
// log lines. Delivery is asynchronous through a bounded queue so that the
// request path never blocks on telemetry; overflow drops the oldest queued
// outcome and counts the drop.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/ledgerline/idemgate/internal/idempotency"
	"github.com/ledgerline/idemgate/internal/platform/telemetry"
)

// AuditAppender is the durable sink for outcomes. Implemented by the SQLite
// audit store.
type AuditAppender interface {
	Append(ctx context.Context, o idempotency.Outcome) error
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds monitor tuning knobs.
type Config struct {
	// QueueSize bounds the outcome queue. Values < 1 fall back to 256.
	QueueSize int
	// DeliveryAttempts is how many times an audit append is tried before
	// the outcome is counted as dropped. Values < 1 fall back to 3.
	DeliveryAttempts int
	// Retention bounds the audit hot store; 0 disables pruning.
	Retention time.Duration
	// PruneInterval is how often the retention pass runs. Values < 1s fall
	// back to 1 hour. Ignored when Retention is 0.
	PruneInterval time.Duration
}

const (
	defaultQueueSize        = 256
	defaultDeliveryAttempts = 3
	defaultPruneInterval    = time.Hour
	retryBackoff            = 50 * time.Millisecond
	appendTimeout           = 5 * time.Second
)

// Monitor is the audit/telemetry fan-out worker. Record never blocks; a
// single background goroutine drains the queue. Internal failures are
// logged and counted, never surfaced to the request path.
type Monitor struct {
	store   AuditAppender
	metrics *telemetry.Metrics
	logger  *slog.Logger
	cfg     Config

	queue   chan idempotency.Outcome
	dropped atomic.Int64

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// New creates a Monitor. metrics may be nil (instrument recording skipped);
// logger may be nil (logging discarded).
func New(store AuditAppender, metrics *telemetry.Metrics, logger *slog.Logger, cfg Config) *Monitor {
	if cfg.QueueSize < 1 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.DeliveryAttempts < 1 {
		cfg.DeliveryAttempts = defaultDeliveryAttempts
	}
	if cfg.PruneInterval < time.Second {
		cfg.PruneInterval = defaultPruneInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Monitor{
		store:   store,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		queue:   make(chan idempotency.Outcome, cfg.QueueSize),
		done:    make(chan struct{}),
	}
}

// Start launches the delivery worker and, when retention is configured, the
// pruning ticker. Safe to call once; later calls are no-ops.
func (m *Monitor) Start() {
	m.startOnce.Do(func() {
		m.wg.Add(1)
		go m.deliverLoop()

		if m.cfg.Retention > 0 {
			m.wg.Add(1)
			go m.pruneLoop()
		}
	})
}

// Record enqueues an outcome without blocking. When the queue is full, the
// oldest queued outcome is dropped (and counted) to make room; if the race
// for the freed slot is lost too, the new outcome itself is dropped.
func (m *Monitor) Record(o idempotency.Outcome) {
	select {
	case m.queue <- o:
		return
	default:
	}

	// Queue full: drop-oldest overflow policy.
	select {
	case <-m.queue:
		m.countDrop(1)
	default:
	}

	select {
	case m.queue <- o:
	default:
		m.countDrop(1)
	}
}

// Close stops accepting the worker loops and drains outcomes already queued,
// bounded by the context deadline. Dropped counts are logged on exit.
func (m *Monitor) Close(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.done) })

	finished := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		return ctx.Err()
	}

	if n := m.dropped.Load(); n > 0 {
		m.logger.Warn("monitor dropped outcomes", slog.Int64("count", n))
	}
	return nil
}

// Dropped returns the total number of outcomes dropped by the overflow
// policy and by exhausted delivery attempts.
func (m *Monitor) Dropped() int64 {
	return m.dropped.Load()
}

func (m *Monitor) deliverLoop() {
	defer m.wg.Done()

	for {
		select {
		case o := <-m.queue:
			m.deliver(o)
		case <-m.done:
			// Drain what is already queued before exiting.
			for {
				select {
				case o := <-m.queue:
					m.deliver(o)
				default:
					return
				}
			}
		}
	}
}

// deliver fans one outcome out to the three sinks. The audit append is the
// only sink that can fail; it is retried with a short backoff and counted
// as dropped when attempts are exhausted.
func (m *Monitor) deliver(o idempotency.Outcome) {
	m.recordMetrics(o)
	m.logOutcome(o)

	var lastErr error
	for attempt := 1; attempt <= m.cfg.DeliveryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		lastErr = m.store.Append(ctx, o)
		cancel()
		if lastErr == nil {
			return
		}
		// Backoff separates attempts; the final failure drops immediately.
		if attempt < m.cfg.DeliveryAttempts {
			time.Sleep(retryBackoff * time.Duration(attempt))
		}
	}

	m.countDrop(1)
	m.logger.Error("audit append failed, outcome dropped",
		slog.String("operation", string(o.Operation)),
		slog.String("deterministic_id", o.DeterministicID),
		slog.Any("error", lastErr),
	)
}

func (m *Monitor) recordMetrics(o idempotency.Outcome) {
	if m.metrics == nil {
		return
	}

	ctx := context.Background()
	opAttrs := metric.WithAttributes(
		telemetry.AttrOperation.String(string(o.Operation)),
		telemetry.AttrOperationType.String(string(o.OperationType)),
	)

	m.metrics.WritesTotal.Add(ctx, 1, metric.WithAttributes(
		telemetry.AttrOperation.String(string(o.Operation)),
		telemetry.AttrOperationType.String(string(o.OperationType)),
		telemetry.AttrStatus.String(string(o.Status)),
	))
	m.metrics.WriteDuration.Record(ctx, float64(o.Duration.Milliseconds()), opAttrs)

	switch o.Status {
	case idempotency.StatusReplayed:
		m.metrics.WritesReplayedTotal.Add(ctx, 1, opAttrs)
	case idempotency.StatusFailed:
		m.metrics.WritesFailedTotal.Add(ctx, 1, opAttrs)
	}
	if o.WorkflowsTriggered > 0 {
		m.metrics.WorkflowsTriggeredTotal.Add(ctx, int64(o.WorkflowsTriggered), opAttrs)
	}
}

func (m *Monitor) logOutcome(o idempotency.Outcome) {
	attrs := []any{
		slog.String("operation", string(o.Operation)),
		slog.String("type", string(o.OperationType)),
		slog.String("tenant_id", o.TenantID),
		slog.String("deterministic_id", o.DeterministicID),
		slog.String("status", string(o.Status)),
		slog.Duration("duration", o.Duration),
		slog.Int("workflows_triggered", o.WorkflowsTriggered),
	}
	if o.ErrorMessage != "" {
		attrs = append(attrs, slog.String("error", o.ErrorMessage))
		m.logger.Warn("write outcome", attrs...)
		return
	}
	m.logger.Info("write outcome", attrs...)
}

func (m *Monitor) countDrop(n int64) {
	m.dropped.Add(n)
	if m.metrics != nil {
		m.metrics.MonitorDroppedTotal.Add(context.Background(), n)
	}
}

func (m *Monitor) pruneLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-m.cfg.Retention)
			ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
			pruned, err := m.store.PruneOlderThan(ctx, cutoff)
			cancel()
			if err != nil {
				m.logger.Error("audit prune failed", slog.Any("error", err))
				continue
			}
			if pruned > 0 {
				m.logger.Info("audit entries pruned",
					slog.Int64("count", pruned),
					slog.Time("cutoff", cutoff),
				)
			}
		case <-m.done:
			return
		}
	}
}
