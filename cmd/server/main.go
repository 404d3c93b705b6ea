package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"relation-labels/internal/config"
	"relation-labels/internal/logging"
	"relation-labels/internal/metadata"
	"relation-labels/internal/naming"
	"relation-labels/internal/observability"
	"relation-labels/internal/resolve"
	"relation-labels/internal/server"
	"relation-labels/internal/sqlstore"

	"github.com/XSAM/otelsql"
	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

var (
	// Version is set at build time via -ldflags "-X main.Version=...".
	Version = "dev"
	Commit  = "none"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	pflag.Bool("version", false, "Print version and exit")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if showVersion, _ := pflag.CommandLine.GetBool("version"); showVersion {
		fmt.Printf("relation-labels %s (%s)\n", Version, Commit)
		return nil
	}

	if cfg.Observability.ServiceVersion == "" {
		cfg.Observability.ServiceVersion = Version
	}

	validationResult := cfg.Validate()
	for _, warn := range validationResult.Warnings {
		slog.Warn("configuration warning",
			slog.String("field", warn.Field),
			slog.String("message", warn.Message),
			slog.String("hint", warn.Hint),
		)
	}
	if validationResult.HasErrors() {
		for _, err := range validationResult.Errors {
			slog.Error("configuration error",
				slog.String("field", err.Field),
				slog.String("message", err.Message),
				slog.String("hint", err.Hint),
			)
		}
		return fmt.Errorf("configuration validation failed")
	}

	logger, loggerProvider, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() {
		if loggerProvider != nil {
			_ = loggerProvider.Shutdown(context.Background(), logger.Logger)
		}
	}()

	tracerProvider, err := initTracing(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if tracerProvider != nil {
			_ = tracerProvider.Shutdown(context.Background(), logger.Logger)
		}
	}()

	if cfg.Observability.MetricsEnabled {
		meterProvider, err := observability.InitMeterProvider(observability.Config{
			ServiceName:    cfg.Observability.ServiceName,
			ServiceVersion: cfg.Observability.ServiceVersion,
			Environment:    cfg.Observability.Environment,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}
		defer func() {
			_ = meterProvider.Shutdown(context.Background(), logger.Logger)
		}()
	}

	db, err := connectDB(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.Pool.MaxOpen)
	db.SetMaxIdleConns(cfg.Database.Pool.MaxIdle)
	db.SetConnMaxLifetime(cfg.Database.Pool.MaxLifetime)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectionTimeout)
	err = db.PingContext(pingCtx)
	pingCancel()
	if err != nil {
		return fmt.Errorf("database not available: %w", err)
	}

	effectiveDatabase, err := cfg.Database.EffectiveDatabaseName()
	if err != nil {
		return err
	}
	logger.Info("connected to database",
		slog.String("database", effectiveDatabase),
		slog.Int("pool_max_open", cfg.Database.Pool.MaxOpen),
		slog.Int("pool_max_idle", cfg.Database.Pool.MaxIdle),
	)

	namer := naming.New(cfg.Naming)
	meta, err := metadata.NewStaticProvider(cfg.Tables, namer)
	if err != nil {
		return fmt.Errorf("invalid table metadata: %w", err)
	}
	logger.Info("relation metadata loaded", slog.Int("tables", len(cfg.Tables)))

	exec := sqlstore.NewStandardExecutor(db)
	relations := sqlstore.NewRelationHandler(exec)
	fetcher := sqlstore.NewRecordFetcher(exec)
	overlays := sqlstore.NewOverlayer(exec, cfg.Overlay)

	var resolveOpts []resolve.Option
	var registry *prometheus.Registry
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		resolveOpts = append(resolveOpts, resolve.WithMetrics(resolve.NewMetrics(registry)))
	}
	resolver := resolve.New(meta, relations, fetcher, overlays, resolveOpts...)

	serverOpts := []server.Option{
		server.WithDefaultLanguageID(cfg.Resolver.DefaultLanguageID),
	}
	if registry != nil {
		serverOpts = append(serverOpts, server.WithMetricsRegistry(registry))
	}
	if cfg.Observability.TracingEnabled {
		serverOpts = append(serverOpts, server.WithTracing())
	}
	srv := server.New(cfg.Server, logger, resolver, fetcher, db, serverOpts...)

	serverErrors := srv.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case err := <-serverErrors:
		runErr = err
	case sig := <-stop:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	logger.Info("shutting down server gracefully")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Warn("shutdown error", slog.String("error", err.Error()))
	}

	if runErr != nil {
		return runErr
	}
	logger.Info("server stopped gracefully")
	return nil
}

func initLogger(cfg *config.Config) (*logging.Logger, *observability.LoggerProvider, error) {
	loggerCfg := logging.Config{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
	}
	logger := logging.NewLogger(loggerCfg)
	slog.SetDefault(logger.Logger)

	if !cfg.Observability.Logging.ExportsEnabled {
		return logger, nil, nil
	}

	logsConfig := cfg.Observability.GetLogsConfig()
	logger.Info("initializing OpenTelemetry logging",
		slog.String("otlp_endpoint", logsConfig.Endpoint),
		slog.String("otlp_protocol", logsConfig.Protocol),
		slog.Bool("insecure", logsConfig.IsInsecure()),
	)

	loggerProvider, err := observability.InitLoggerProvider(observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.Observability.Environment,
		OTLP:           otlpExporterConfig(logsConfig),
	})
	if err != nil {
		return nil, nil, err
	}

	loggerCfg.LoggerProvider = loggerProvider.Provider()
	logger = logging.NewLogger(loggerCfg)
	slog.SetDefault(logger.Logger)

	return logger, loggerProvider, nil
}

func initTracing(cfg *config.Config, logger *logging.Logger) (*observability.TracerProvider, error) {
	if !cfg.Observability.TracingEnabled {
		return nil, nil
	}

	tracesConfig := cfg.Observability.GetTracesConfig()
	logger.Info("initializing OpenTelemetry tracing",
		slog.String("otlp_endpoint", tracesConfig.Endpoint),
		slog.String("otlp_protocol", tracesConfig.Protocol),
		slog.Bool("insecure", tracesConfig.IsInsecure()),
	)

	return observability.InitTracerProvider(observability.Config{
		ServiceName:      cfg.Observability.ServiceName,
		ServiceVersion:   cfg.Observability.ServiceVersion,
		Environment:      cfg.Observability.Environment,
		TraceSampleRatio: cfg.Observability.TraceSampleRatio,
		OTLP:             otlpExporterConfig(tracesConfig),
	})
}

func otlpExporterConfig(cfg config.OTLPConfig) observability.OTLPExporterConfig {
	return observability.OTLPExporterConfig{
		Endpoint:    cfg.Endpoint,
		Protocol:    cfg.Protocol,
		Insecure:    cfg.IsInsecure(),
		TLSCertFile: cfg.TLSCertFile,
		Headers:     cfg.Headers,
		Timeout:     cfg.Timeout,
		Compression: cfg.Compression,
	}
}

func connectDB(cfg *config.Config, logger *logging.Logger) (*sql.DB, error) {
	if err := cfg.Database.RegisterTLS(); err != nil {
		return nil, fmt.Errorf("failed to register database TLS config: %w", err)
	}

	dsn := cfg.Database.DSN()

	if cfg.Observability.MetricsEnabled || cfg.Observability.TracingEnabled {
		opts := []otelsql.Option{
			otelsql.WithAttributes(semconv.DBSystemMySQL),
		}
		if cfg.Observability.TracingEnabled {
			opts = append(opts, otelsql.WithSpanOptions(otelsql.SpanOptions{
				DisableErrSkip: true,
			}))
		}

		db, err := otelsql.Open("mysql", dsn, opts...)
		if err != nil {
			return nil, err
		}
		if cfg.Observability.MetricsEnabled {
			if _, err := otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(semconv.DBSystemMySQL)); err != nil {
				logger.Warn("failed to register DB stats metrics", slog.String("error", err.Error()))
			}
		}
		logger.Info("database instrumentation enabled",
			slog.Bool("metrics", cfg.Observability.MetricsEnabled),
			slog.Bool("tracing", cfg.Observability.TracingEnabled),
		)
		return db, nil
	}

	return sql.Open("mysql", dsn)
}
