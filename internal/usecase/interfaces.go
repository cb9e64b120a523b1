package usecase

import (
	"context"
	"errors"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/saltbo/openapi-rest-admin-sub002/internal/domain"
)

// Standard errors returned by use cases and adapters.
var (
	ErrAnalysisNotFound = errors.New("analysis not found")
)

// DocumentSource identifies one registered API document.
type DocumentSource struct {
	// ID is the host-assigned identifier the analysis is cached under.
	ID string
	// URL is the document location: an http(s) URL or a local file path.
	URL string
	// Headers are sent with the fetch request (authenticated spec endpoints).
	Headers map[string]string
}

// DocumentFetcher loads and parses an OpenAPI/Swagger document. Swagger 2.0
// documents are converted to OpenAPI 3 before being returned, so the rest of
// the engine only ever sees the v3 model.
type DocumentFetcher interface {
	Fetch(ctx context.Context, source DocumentSource) (*openapi3.T, error)
}

// ResourceDiscoverer builds an analysis (resource graph plus counters) from a
// parsed document.
type ResourceDiscoverer interface {
	Analyze(doc *openapi3.T) (*domain.OpenAPIAnalysis, error)
}

// AnalysisCache stores built analyses keyed by document identity. The core
// stays pure: caching is an injected collaborator, and re-ingestion replaces
// an entry with a freshly built immutable analysis rather than mutating it.
type AnalysisCache interface {
	Put(ctx context.Context, id string, analysis *domain.OpenAPIAnalysis) error
	Get(ctx context.Context, id string) (*domain.OpenAPIAnalysis, error)
	Delete(ctx context.Context, id string) error
	IDs(ctx context.Context) ([]string, error)
}
