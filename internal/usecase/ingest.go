package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/saltbo/openapi-rest-admin-sub002/internal/domain"
)

// IngestDocumentUseCase orchestrates fetching a document, running discovery,
// and caching the resulting analysis. A failed ingestion leaves any
// previously cached analysis for that document untouched, and never affects
// analyses built for other documents.
type IngestDocumentUseCase struct {
	fetcher    DocumentFetcher
	discoverer ResourceDiscoverer
	cache      AnalysisCache
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewIngestDocumentUseCase creates a new IngestDocumentUseCase.
func NewIngestDocumentUseCase(
	fetcher DocumentFetcher,
	discoverer ResourceDiscoverer,
	cache AnalysisCache,
	logger *slog.Logger,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		fetcher:    fetcher,
		discoverer: discoverer,
		cache:      cache,
		logger:     logger.With("usecase", "IngestDocument"),
		tracer:     otel.Tracer("usecase/ingest"),
	}
}

// Execute ingests one document and returns the freshly built analysis.
func (uc *IngestDocumentUseCase) Execute(ctx context.Context, source DocumentSource) (*domain.OpenAPIAnalysis, error) {
	ctx, span := uc.tracer.Start(ctx, "IngestDocument",
		trace.WithAttributes(
			attribute.String("document.id", source.ID),
			attribute.String("document.url", source.URL),
		))
	defer span.End()

	log := uc.logger.With(slog.String("document_id", source.ID), slog.String("url", source.URL))
	log.Info("Starting document ingestion")

	doc, err := uc.fetcher.Fetch(ctx, source)
	if err != nil {
		log.Error("Failed to fetch document", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, fmt.Errorf("failed to fetch document %s: %w", source.URL, err)
	}

	analysis, err := uc.discoverer.Analyze(doc)
	if err != nil {
		log.Error("Resource discovery failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "discovery failed")
		return nil, fmt.Errorf("failed to analyze document %s: %w", source.URL, err)
	}

	if err := uc.cache.Put(ctx, source.ID, analysis); err != nil {
		log.Error("Failed to cache analysis", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "cache put failed")
		return nil, fmt.Errorf("failed to cache analysis for %s: %w", source.ID, err)
	}

	span.SetAttributes(attribute.Int("analysis.resources", len(analysis.Resources)))
	log.Info("Document ingested successfully",
		slog.Int("resource_count", len(analysis.Resources)),
		slog.Int("total_paths", analysis.TotalPaths),
		slog.Int("total_operations", analysis.TotalOperations))
	return analysis, nil
}

// IngestAll ingests every configured document. Per-document failures are
// logged and collected; one broken document never aborts the rest.
func (uc *IngestDocumentUseCase) IngestAll(ctx context.Context, sources []DocumentSource) error {
	uc.logger.Info("Ingesting configured documents", slog.Int("count", len(sources)))

	var firstErr error
	failures := 0
	for _, source := range sources {
		if _, err := uc.Execute(ctx, source); err != nil {
			uc.logger.Error("Ingestion failed for document",
				slog.String("document_id", source.ID), slog.Any("error", err))
			failures++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d documents failed to ingest: %w", failures, len(sources), firstErr)
	}
	return nil
}
