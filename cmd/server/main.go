package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ledgerapp "github.com/fiado/backend/internal/application/ledger"
	"github.com/fiado/backend/internal/domain/ledger"
	"github.com/fiado/backend/internal/infrastructure/cache"
	"github.com/fiado/backend/internal/infrastructure/config"
	"github.com/fiado/backend/internal/infrastructure/event"
	"github.com/fiado/backend/internal/infrastructure/logger"
	"github.com/fiado/backend/internal/infrastructure/metrics"
	"github.com/fiado/backend/internal/infrastructure/migration"
	"github.com/fiado/backend/internal/infrastructure/persistence"
	"github.com/fiado/backend/internal/infrastructure/telemetry"
	"github.com/fiado/backend/internal/interfaces/http/handler"
	"github.com/fiado/backend/internal/interfaces/http/middleware"
	"github.com/fiado/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Fiado API
//	@version		1.0
//	@description	Client debt ledger: sales on credit, payments and running balances
//	@BasePath		/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting fiado",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Tracing; a disabled provider leaves the global no-op in place
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}
	if cfg.Database.Driver == "sqlite" {
		dbTracing.DBSystem = "sqlite"
	}
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if err := migrateSchema(cfg, db, log); err != nil {
		log.Fatal("Failed to prepare schema", zap.Error(err))
	}

	// Per-client write lock
	locker, closeLocker, err := cache.NewLockerFactory(cfg.Redis, cfg.Ledger,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).CreateLocker(ctx)
	if err != nil {
		log.Fatal("Failed to initialize client locker", zap.Error(err))
	}
	defer func() {
		if err := closeLocker(); err != nil {
			log.Warn("Error closing client locker", zap.Error(err))
		}
	}()

	// Event bus; NATS forwarding is optional
	eventBus := event.NewInMemoryEventBus(log)
	debtHandler := ledgerapp.NewDebtChangeHandler(log)
	eventBus.Subscribe(debtHandler, debtHandler.EventTypes()...)

	var natsConn *nats.Conn
	if cfg.NATS.Enabled {
		natsConn, err = event.Connect(cfg.NATS, log)
		if err != nil {
			log.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsConn.Close()

		js, err := jetstream.New(natsConn)
		if err != nil {
			log.Fatal("Failed to create JetStream context", zap.Error(err))
		}
		if err := event.EnsureStream(ctx, js, cfg.NATS); err != nil {
			log.Fatal("Failed to ensure ledger stream", zap.Error(err))
		}
		forwarder := event.NewNATSForwarder(js, event.NewLedgerSerializer(), cfg.NATS.SubjectPrefix, log)
		eventBus.Subscribe(forwarder, forwarder.EventTypes()...)
		log.Info("Forwarding ledger events to NATS",
			zap.String("url", cfg.NATS.URL),
			zap.String("stream", cfg.NATS.StreamName),
		)
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Metrics
	registry := metrics.NewRegistry()
	ledgerMetrics := metrics.NewLedgerMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	defaultView, err := ledgerapp.ParseHistoryView(cfg.Ledger.DefaultHistoryView, ledgerapp.ViewSummary)
	if err != nil {
		log.Fatal("Invalid default history view", zap.String("view", cfg.Ledger.DefaultHistoryView))
	}

	ledgerService := ledgerapp.NewService(ledgerapp.ServiceConfig{
		Events:      persistence.NewGormEventRepository(db.DB),
		Clients:     persistence.NewGormClientRepository(db.DB),
		Locker:      locker,
		Publisher:   eventBus,
		Metrics:     ledgerMetrics,
		Logger:      log,
		Labels:      ledger.LabelsForLocale(cfg.Ledger.Locale, cfg.Ledger.CurrencySymbol),
		LockWait:    cfg.Ledger.LockWait,
		DefaultView: defaultView,
	})

	clientHandler := handler.NewClientHandler(ledgerService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version).
		AddCheck("database", db.Ping)
	if natsConn != nil {
		systemHandler.AddCheck("nats", func() error {
			if !natsConn.IsConnected() {
				return fmt.Errorf("nats status %s", natsConn.Status())
			}
			return nil
		})
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order matters: the request ID must exist before the span is
	// started, and the span before anything that logs or records metrics.
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanErrorMarker(),
		middleware.TracingAttributeInjector(),
		logger.GinMiddleware(log),
		httpMetrics.Middleware(),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSFromHTTPConfig(
			cfg.HTTP.CORSAllowOrigins,
			cfg.HTTP.CORSAllowMethods,
			cfg.HTTP.CORSAllowHeaders,
		)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	router.NewRouter(engine).
		Register(router.NewClientRoutes(clientHandler, ledgerHandler)).
		Register(router.NewLedgerRoutes(ledgerHandler)).
		Setup()

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}
	router.SetupSystemRoutes(engine, systemHandler, cfg.Metrics.Path, metricsHandler)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Error stopping event bus", zap.Error(err))
	}
	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			log.Warn("Error draining NATS connection", zap.Error(err))
		}
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrateSchema creates the sqlite tables through gorm, or applies the
// embedded versioned migrations to postgres on a dedicated connection.
func migrateSchema(cfg *config.Config, db *persistence.Database, log *zap.Logger) error {
	if cfg.Database.Driver == "sqlite" {
		return db.AutoMigrate()
	}

	conn, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	m, err := migration.New(conn, "", log)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up()
}
