package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradequote_backend/internal/adapters"
	"tradequote_backend/internal/businessnames"
	"tradequote_backend/internal/catalog"
	"tradequote_backend/internal/config"
	"tradequote_backend/internal/customers"
	"tradequote_backend/internal/events"
	apphttp "tradequote_backend/internal/http"
	"tradequote_backend/internal/http/router"
	"tradequote_backend/internal/quotations"
	"tradequote_backend/migrations"
	"tradequote_backend/platform/db"
	"tradequote_backend/platform/logger"
	"tradequote_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg.DatabaseURL, migrations.Files)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	registerAuditLogger(eventBus, log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	catalogModule := catalog.NewModule(pool, val)
	customersModule := customers.NewModule(pool, val)
	businessNamesModule := businessnames.NewModule(pool, eventBus, val)

	// Quotations read products and seller identities through adapters so the
	// domain packages stay decoupled from each other.
	catalogReader := adapters.NewCatalogReader(catalogModule.Repository())
	identityReader := adapters.NewIdentityReader(businessNamesModule.Repository())
	quotationsModule := quotations.NewModule(pool, catalogReader, identityReader, eventBus, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			catalogModule,
			customersModule,
			businessNamesModule,
			quotationsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// registerAuditLogger subscribes a structured-log audit trail to the domain
// events every write publishes.
func registerAuditLogger(bus events.Bus, log *logger.Logger) {
	bus.Subscribe("quotation.created", events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if ev, ok := e.(events.QuotationCreated); ok {
			log.Info("audit: quotation created",
				"quotationId", ev.QuotationID,
				"quotationNumber", ev.QuotationNumber,
				"customerId", ev.CustomerID,
				"totalAmount", ev.TotalAmount,
			)
		}
		return nil
	}))
	bus.Subscribe("quotation.status_changed", events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if ev, ok := e.(events.QuotationStatusChanged); ok {
			log.Info("audit: quotation status changed",
				"quotationId", ev.QuotationID,
				"quotationNumber", ev.QuotationNumber,
				"oldStatus", ev.OldStatus,
				"newStatus", ev.NewStatus,
			)
		}
		return nil
	}))
	bus.Subscribe("businessname.default_changed", events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if ev, ok := e.(events.BusinessNameDefaultChanged); ok {
			log.Info("audit: default business name changed",
				"businessNameId", ev.BusinessNameID,
				"name", ev.Name,
			)
		}
		return nil
	}))
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
