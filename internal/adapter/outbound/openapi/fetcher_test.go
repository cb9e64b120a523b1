package openapi_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	openapifetch "github.com/saltbo/openapi-rest-admin-sub002/internal/adapter/outbound/openapi"
	"github.com/saltbo/openapi-rest-admin-sub002/internal/usecase"
)

const openapi3Doc = `{
  "openapi": "3.0.0",
  "info": {"title": "Widgets", "version": "1.0.0"},
  "paths": {
    "/widgets": {"post": {"responses": {"201": {"description": "created"}}}}
  }
}`

const swagger2Doc = `{
  "swagger": "2.0",
  "info": {"title": "Legacy Widgets", "version": "0.9.0"},
  "basePath": "/v2",
  "paths": {
    "/widgets": {"post": {"responses": {"201": {"description": "created"}}}}
  }
}`

func newFetcher(client *http.Client) *openapifetch.DocumentFetcher {
	return openapifetch.NewDocumentFetcher(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeTemp(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestFetch_LocalFile(t *testing.T) {
	path := writeTemp(t, "openapi.json", openapi3Doc)

	doc, err := newFetcher(nil).Fetch(context.Background(), usecase.DocumentSource{ID: "w", URL: path})
	require.NoError(t, err)
	assert.Equal(t, "Widgets", doc.Info.Title)
	assert.Contains(t, doc.Paths.Map(), "/widgets")
}

func TestFetch_ConvertsSwagger2(t *testing.T) {
	path := writeTemp(t, "swagger.json", swagger2Doc)

	doc, err := newFetcher(nil).Fetch(context.Background(), usecase.DocumentSource{ID: "w", URL: path})
	require.NoError(t, err)

	// The caller always receives the v3 model.
	assert.Equal(t, "Legacy Widgets", doc.Info.Title)
	assert.Contains(t, doc.Paths.Map(), "/widgets")
}

func TestFetch_URLWithHeaders(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openapi3Doc))
	}))
	defer server.Close()

	doc, err := newFetcher(server.Client()).Fetch(context.Background(), usecase.DocumentSource{
		ID:      "w",
		URL:     server.URL,
		Headers: map[string]string{"Authorization": "Bearer secret"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Widgets", doc.Info.Title)
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestFetch_AutoDiscoversDocumentLocation(t *testing.T) {
	// The document lives at a well-known path; the configured URL is the
	// service base.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/api-docs" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openapi3Doc))
	}))
	defer server.Close()

	doc, err := newFetcher(server.Client()).Fetch(context.Background(), usecase.DocumentSource{ID: "w", URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, "Widgets", doc.Info.Title)
}

func TestFetch_DirectDocumentURLSkipsProbing(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openapi3Doc))
	}))
	defer server.Close()

	_, err := newFetcher(server.Client()).Fetch(context.Background(), usecase.DocumentSource{ID: "w", URL: server.URL + "/specs/widgets.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/specs/widgets.json"}, paths)
}

func TestFetch_FailedDiscoveryFallsBackToGivenURL(t *testing.T) {
	// Nothing at the well-known paths, but the bare base URL itself serves
	// the document without a JSON content type hint.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(openapi3Doc))
	}))
	defer server.Close()

	doc, err := newFetcher(server.Client()).Fetch(context.Background(), usecase.DocumentSource{ID: "w", URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, "Widgets", doc.Info.Title)
}

func TestFetch_URLErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newFetcher(server.Client()).Fetch(context.Background(), usecase.DocumentSource{ID: "w", URL: server.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFetch_MissingFile(t *testing.T) {
	_, err := newFetcher(nil).Fetch(context.Background(), usecase.DocumentSource{ID: "w", URL: "/does/not/exist.json"})
	require.Error(t, err)
}

func TestFetch_UnparsableDocument(t *testing.T) {
	path := writeTemp(t, "broken.json", `{"this is": "not a spec", "openapi": [1]}`)

	_, err := newFetcher(nil).Fetch(context.Background(), usecase.DocumentSource{ID: "w", URL: path})
	require.Error(t, err)
}
