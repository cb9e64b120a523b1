// Command openapi-admin serves the resource discovery, query and transform
// engines over a JSON HTTP API. Documents registered in the config file are
// ingested at startup; further documents can be ingested at runtime through
// POST /admin/ingest.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/saltbo/openapi-rest-admin-sub002/configs"
	"github.com/saltbo/openapi-rest-admin-sub002/internal/adapter/inbound/adminhttp"
	"github.com/saltbo/openapi-rest-admin-sub002/internal/adapter/outbound/memcache"
	openapifetch "github.com/saltbo/openapi-rest-admin-sub002/internal/adapter/outbound/openapi"
	"github.com/saltbo/openapi-rest-admin-sub002/internal/discovery"
	"github.com/saltbo/openapi-rest-admin-sub002/internal/transform"
	"github.com/saltbo/openapi-rest-admin-sub002/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === Configuration ===
	cfg, err := configs.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// === Logging ===
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.ParsedLogLevel()}))
	slog.SetDefault(logger)
	logger.Info("Logger initialized.", slog.String("level", cfg.ParsedLogLevel().String()))

	// === OpenTelemetry Initialization ===
	shutdownOtel, err := initOtelProvider(cfg)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry.", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			logger.Error("Failed to shutdown OpenTelemetry TracerProvider.", slog.Any("error", err))
		}
	}()

	// === Dependency Injection ===
	logger.Info("Initializing dependencies...")

	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	logger.Debug("HTTP Client configured.", slog.Duration("timeout", cfg.HTTPClientTimeout))

	fetcher := openapifetch.NewDocumentFetcher(httpClient, logger)
	discoverer := discovery.NewDiscoverer(discovery.Options{
		RequireMutating: cfg.Discovery.RequireMutating,
		MaxSchemaDepth:  cfg.Discovery.MaxSchemaDepth,
		EnvelopeKeys:    cfg.Discovery.EnvelopeKeys,
	}, logger)
	cache := memcache.New(logger)
	transformer := transform.New(transform.Options{
		ListKeys:       cfg.Transform.ListKeys,
		SingleKeys:     cfg.Transform.SingleKeys,
		PaginationKeys: cfg.Transform.PaginationKeys,
	})
	ingestUC := usecase.NewIngestDocumentUseCase(fetcher, discoverer, cache, logger)

	// === Initial Document Ingestion ===
	sources := make([]usecase.DocumentSource, 0, len(cfg.Documents))
	for _, doc := range cfg.Documents {
		if !doc.IsEnabled() {
			logger.Info("Skipping disabled document.", slog.String("document_id", doc.ID))
			continue
		}
		sources = append(sources, usecase.DocumentSource{ID: doc.ID, URL: doc.URL, Headers: doc.Headers})
	}
	if len(sources) > 0 {
		logger.Info("Performing initial document ingestion...")
		if err := ingestUC.IngestAll(ctx, sources); err != nil {
			// Startup continues: one broken document must not take down the
			// analyses built for the others.
			logger.Error("Initial ingestion reported failures.", slog.Any("error", err))
		} else {
			logger.Info("Initial ingestion completed successfully.")
		}
	}

	// === Admin HTTP Server ===
	mux := http.NewServeMux()
	handlers := adminhttp.NewHandlers(ingestUC, cache, transformer, logger)
	handlers.RegisterRoutes(mux)
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	go func() {
		logger.Info("Admin HTTP server starting.", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Admin HTTP server failed.", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	// === Server Shutdown ===
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Admin HTTP server graceful shutdown failed.", slog.Any("error", err))
	}
	logger.Info("Server shut down gracefully.")
}

// initOtelProvider initializes the OpenTelemetry SDK and sets up the OTLP
// trace exporter. It returns a shutdown function to be called on exit.
func initOtelProvider(cfg *configs.Config) (func(context.Context) error, error) {
	ctx := context.Background()

	if cfg.OtelExporterOtlpEndpoint == "" {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, OpenTelemetry tracing disabled.")
		return func(context.Context) error { return nil }, nil
	}

	slog.Info("Initializing OTLP exporter.", slog.String("endpoint", cfg.OtelExporterOtlpEndpoint))

	grpcOpts := []grpc.DialOption{}
	if cfg.OtelExporterOtlpInsecure {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		slog.Warn("Using insecure connection for OTLP exporter.")
	}

	conn, err := grpc.NewClient(cfg.OtelExporterOtlpEndpoint, grpcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to OTLP endpoint: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("openapi-admin"),
		),
	)
	if err != nil {
		_ = traceExporter.Shutdown(ctx)
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(r),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	slog.Info("OpenTelemetry TracerProvider configured.")

	return func(ctx context.Context) error {
		providerErr := tp.Shutdown(ctx)
		connErr := conn.Close()
		return errors.Join(providerErr, connErr)
	}, nil
}
