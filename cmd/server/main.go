// Package main is the entry point for the service. It wires all dependencies
// using samber/do v2, verifies the mutation binding contract, starts the HTTP
// server, and handles graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	adapthttp "github.com/ledgerline/idemgate/internal/adapters/http"
	"github.com/ledgerline/idemgate/internal/adapters/http/handlers"
	"github.com/ledgerline/idemgate/internal/adapters/http/middleware"

	"github.com/ledgerline/idemgate/internal/adapters/clients/workflow"
	"github.com/ledgerline/idemgate/internal/adapters/storage"
	"github.com/ledgerline/idemgate/internal/app"
	"github.com/ledgerline/idemgate/internal/idempotency"
	"github.com/ledgerline/idemgate/internal/monitor"
	"github.com/ledgerline/idemgate/internal/platform/config"
	"github.com/ledgerline/idemgate/internal/platform/db"
	"github.com/ledgerline/idemgate/internal/platform/health"
	"github.com/ledgerline/idemgate/internal/platform/httpclient"
	"github.com/ledgerline/idemgate/internal/platform/logging"
	"github.com/ledgerline/idemgate/internal/platform/telemetry"
	"github.com/ledgerline/idemgate/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	serverShutdownTimeout  = 15 * time.Second
	monitorShutdownTimeout = 10 * time.Second
	otelShutdownTimeout    = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE environment variable is required (e.g. local, dev, qa, prod)")
	}

	// Bootstrap: config, logger, telemetry.
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx := context.Background()
	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	// Storage: single-writer and read pools over one SQLite file, with
	// migrations applied before anything touches the schema.
	writeDB, readDB, err := db.OpenSQLitePair(cfg.DB.Path, cfg.DB.ReadMaxOpenConns)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer closePools(logger, writeDB, readDB)

	if err := db.RunMigrations(writeDB); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Mutation catalog: the closed set of protected operations. Populated
	// before the route gate binds anything.
	catalog, err := idempotency.DefaultCatalog()
	if err != nil {
		return fmt.Errorf("building mutation catalog: %w", err)
	}

	// Monitor: audit/telemetry fan-out worker.
	auditStore := storage.NewAuditStore(writeDB, readDB)
	mon := monitor.New(auditStore, otel.metrics, logger, monitor.Config{
		QueueSize:        cfg.Monitor.QueueSize,
		DeliveryAttempts: cfg.Monitor.DeliveryAttempts,
		Retention:        cfg.Monitor.Retention,
		PruneInterval:    cfg.Monitor.PruneInterval,
	})
	mon.Start()

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)
	do.ProvideValue(injector, catalog)
	do.ProvideValue(injector, mon)
	do.ProvideValue(injector, auditStore)

	registerDependencies(injector, cfg, logger, writeDB)

	// Resolve the server (eagerly wires the full graph, including the route
	// gate's binding contract check inside NewRouter).
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	// Register health checkers after the graph is wired.
	registry := do.MustInvoke[ports.HealthRegistry](injector)
	registry.Register(db.NewHealthChecker("sqlite", writeDB))
	if cfg.Workflow.Enabled {
		httpClient := do.MustInvoke[*httpclient.Client](injector)
		registry.Register(httpClient)
	}

	// Start server in background.
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for shutdown signal or server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	// Graceful shutdown: drain HTTP requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Wait for Start() goroutine to return.
	<-serverErr

	// Drain queued outcomes so committed writes keep their audit rows.
	monCtx, monCancel := context.WithTimeout(context.Background(), monitorShutdownTimeout)
	defer monCancel()

	if err := mon.Close(monCtx); err != nil {
		logger.Error("monitor shutdown error", slog.Any("error", err))
	}

	// Flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer otelCancel()

	if err := otel.Shutdown(otelCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp, cfg.Telemetry.ServiceName)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
	}, nil
}

func closePools(logger *slog.Logger, pools ...*sql.DB) {
	for _, pool := range pools {
		if err := pool.Close(); err != nil {
			logger.Error("closing database pool", slog.Any("error", err))
		}
	}
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger, writeDB *sql.DB) {
	do.Provide(injector, func(i do.Injector) (*httpclient.Client, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return httpclient.New(&cfg.Workflow.Client, "workflow-engine", metrics, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.WorkflowNotifier, error) {
		if !cfg.Workflow.Enabled {
			return workflow.NewNoopNotifier(logger), nil
		}
		client := do.MustInvoke[*httpclient.Client](i)
		return workflow.NewClient(client, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (*idempotency.Executor, error) {
		catalog := do.MustInvoke[*idempotency.Catalog](i)
		mon := do.MustInvoke[*monitor.Monitor](i)
		return idempotency.NewExecutor(writeDB, catalog, mon, cfg.Executor.Timeout, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.PaymentService, error) {
		executor := do.MustInvoke[*idempotency.Executor](i)
		notifier := do.MustInvoke[ports.WorkflowNotifier](i)
		return app.NewPaymentService(executor, storage.NewPaymentStore(), notifier, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.InvoiceService, error) {
		executor := do.MustInvoke[*idempotency.Executor](i)
		notifier := do.MustInvoke[ports.WorkflowNotifier](i)
		return app.NewInvoiceService(executor, storage.NewInvoiceStore(), notifier, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.GrantService, error) {
		executor := do.MustInvoke[*idempotency.Executor](i)
		notifier := do.MustInvoke[ports.WorkflowNotifier](i)
		return app.NewGrantService(executor, storage.NewGrantStore(), notifier, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.AuditService, error) {
		auditStore := do.MustInvoke[*storage.AuditStore](i)
		return app.NewAuditService(auditStore, logger), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.PaymentHandler, error) {
		svc := do.MustInvoke[ports.PaymentService](i)
		return handlers.NewPaymentHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.InvoiceHandler, error) {
		svc := do.MustInvoke[ports.InvoiceService](i)
		return handlers.NewInvoiceHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.GrantHandler, error) {
		svc := do.MustInvoke[ports.GrantService](i)
		return handlers.NewGrantHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.AuditHandler, error) {
		svc := do.MustInvoke[ports.AuditService](i)
		return handlers.NewAuditHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		registry := do.MustInvoke[ports.HealthRegistry](i)
		return handlers.NewHealthHandler(registry), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		catalog := do.MustInvoke[*idempotency.Catalog](i)
		paymentH := do.MustInvoke[*handlers.PaymentHandler](i)
		invoiceH := do.MustInvoke[*handlers.InvoiceHandler](i)
		grantH := do.MustInvoke[*handlers.GrantHandler](i)
		auditH := do.MustInvoke[*handlers.AuditHandler](i)
		healthH := do.MustInvoke[*handlers.HealthHandler](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return adapthttp.NewRouter(catalog, paymentH, invoiceH, grantH, auditH, healthH,
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
			middleware.Timeout(cfg.Server.WriteTimeout),
		)
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})
}
