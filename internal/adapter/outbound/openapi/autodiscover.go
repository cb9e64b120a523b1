package openapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Well-known document locations probed when a configured URL points at a
// service base rather than at the document itself.
var wellKnownSchemaPaths = []string{
	"/openapi.json",            // FastAPI default
	"/docs/openapi.json",       // Alternative FastAPI path
	"/swagger.json",            // Swagger/OpenAPI 2.0
	"/v3/api-docs",             // SpringDoc OpenAPI 3.0
	"/api-docs",                // SpringFox
	"/api/openapi.json",        // Custom API prefix
	"/api/v1/openapi.json",     // Versioned API
	"/api/swagger.json",        // Alternative swagger path
	"/swagger/v1/swagger.json", // .NET default
	"/spec",
	"/api-spec.json",
}

const probeTimeout = 5 * time.Second

// looksLikeDocumentURL reports whether a URL already names a document, so
// probing can be skipped.
func looksLikeDocumentURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	return strings.HasSuffix(lower, ".json") ||
		strings.HasSuffix(lower, ".yaml") ||
		strings.HasSuffix(lower, ".yml") ||
		strings.Contains(lower, "openapi") ||
		strings.Contains(lower, "swagger") ||
		strings.Contains(lower, "api-docs")
}

// resolveDocumentURL turns a service base URL into a document URL by probing
// the well-known locations. URLs that already name a document pass through
// untouched, and a failed probe run falls back to the original URL so that
// unconventional manual URLs keep working.
func (f *DocumentFetcher) resolveDocumentURL(ctx context.Context, rawURL string, headers map[string]string) string {
	if looksLikeDocumentURL(rawURL) {
		return rawURL
	}

	log := f.logger.With(slog.String("base_url", rawURL))
	log.Info("URL looks like a service base, probing well-known document locations")

	base := strings.TrimRight(rawURL, "/")
	for _, path := range wellKnownSchemaPaths {
		candidate := base + path
		if f.probeDocumentEndpoint(ctx, candidate, headers) {
			log.Info("Found API document", slog.String("url", candidate))
			return candidate
		}
	}

	log.Warn("No document found at well-known locations, using the URL as given")
	return rawURL
}

// probeDocumentEndpoint reports whether the URL answers with JSON. Content is
// not parsed here; the actual fetch validates it.
func (f *DocumentFetcher) probeDocumentEndpoint(ctx context.Context, probeURL string, headers map[string]string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Accept", "application/json, application/vnd.oai.openapi+json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	contentType := resp.Header.Get("Content-Type")
	return strings.Contains(contentType, "application/json") ||
		strings.Contains(contentType, "application/vnd.oai.openapi+json")
}
