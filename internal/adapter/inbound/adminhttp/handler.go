// Package adminhttp exposes the ingestion, query and transform engines over a
// small JSON HTTP surface. It is glue only: every handler decodes a request,
// calls into the core, and encodes the result.
package adminhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/saltbo/openapi-rest-admin-sub002/internal/domain"
	"github.com/saltbo/openapi-rest-admin-sub002/internal/resourcegraph"
	"github.com/saltbo/openapi-rest-admin-sub002/internal/transform"
	"github.com/saltbo/openapi-rest-admin-sub002/internal/usecase"
)

// Handlers holds dependencies for the admin HTTP handlers.
type Handlers struct {
	ingestUC    *usecase.IngestDocumentUseCase
	cache       usecase.AnalysisCache
	transformer *transform.Transformer
	logger      *slog.Logger
}

// NewHandlers creates a new Handlers struct.
func NewHandlers(
	ingestUC *usecase.IngestDocumentUseCase,
	cache usecase.AnalysisCache,
	transformer *transform.Transformer,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		ingestUC:    ingestUC,
		cache:       cache,
		transformer: transformer,
		logger:      logger.With("component", "adminhttp_handler"),
	}
}

// RegisterRoutes sets up the admin HTTP routes.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /admin/ingest", h.handleIngest)
	mux.HandleFunc("GET /apis", h.handleListAPIs)
	mux.HandleFunc("GET /apis/{id}/analysis", h.handleAnalysis)
	mux.HandleFunc("GET /apis/{id}/resources/{name}", h.handleResource)
	mux.HandleFunc("POST /apis/{id}/transform/list", h.handleTransformList)
	mux.HandleFunc("POST /apis/{id}/transform/single", h.handleTransformSingle)
}

// IngestRequest is the JSON body for POST /admin/ingest.
type IngestRequest struct {
	ID      string            `json:"id"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

func (h *Handlers) handleIngest(w http.ResponseWriter, r *http.Request) {
	log := h.requestLogger(r)

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Failed to decode ingest request body", slog.Any("error", err))
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	defer r.Body.Close()

	if req.ID == "" || req.URL == "" {
		h.writeError(w, http.StatusBadRequest, "both 'id' and 'url' fields are required")
		return
	}

	log.Info("Received ingest request", slog.String("document_id", req.ID), slog.String("url", req.URL))
	analysis, err := h.ingestUC.Execute(r.Context(), usecase.DocumentSource{
		ID:      req.ID,
		URL:     req.URL,
		Headers: req.Headers,
	})
	if err != nil {
		log.Error("Ingestion failed", slog.String("document_id", req.ID), slog.Any("error", err))
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, analysis)
}

func (h *Handlers) handleListAPIs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.cache.IDs(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"apis": ids})
}

func (h *Handlers) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.lookupAnalysis(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, analysis)
}

func (h *Handlers) handleResource(w http.ResponseWriter, r *http.Request) {
	analysis, ok := h.lookupAnalysis(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	resource := h.findResource(analysis, name)
	if resource == nil {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("resource %q not found", name))
		return
	}
	h.writeJSON(w, http.StatusOK, resource)
}

// TransformRequest is the JSON body for the transform endpoints. Resource
// accepts either a plain name or a dot-separated path ("users.posts").
type TransformRequest struct {
	Resource string      `json:"resource"`
	Body     interface{} `json:"body"`
}

func (h *Handlers) handleTransformList(w http.ResponseWriter, r *http.Request) {
	resource, body, ok := h.decodeTransform(w, r)
	if !ok {
		return
	}
	result, err := h.transformer.TransformList(body, resource.Schema)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) handleTransformSingle(w http.ResponseWriter, r *http.Request) {
	resource, body, ok := h.decodeTransform(w, r)
	if !ok {
		return
	}
	result, err := h.transformer.TransformSingle(body, resource.Schema)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": result})
}

func (h *Handlers) decodeTransform(w http.ResponseWriter, r *http.Request) (*domain.ParsedResource, interface{}, bool) {
	analysis, ok := h.lookupAnalysis(w, r)
	if !ok {
		return nil, nil, false
	}

	var req TransformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return nil, nil, false
	}
	defer r.Body.Close()

	if req.Resource == "" {
		h.writeError(w, http.StatusBadRequest, "'resource' field is required")
		return nil, nil, false
	}
	resource := h.findResource(analysis, req.Resource)
	if resource == nil {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("resource %q not found", req.Resource))
		return nil, nil, false
	}
	return resource, req.Body, true
}

func (h *Handlers) lookupAnalysis(w http.ResponseWriter, r *http.Request) (*domain.OpenAPIAnalysis, bool) {
	id := r.PathValue("id")
	analysis, err := h.cache.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrAnalysisNotFound) {
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("API %q is not ingested", id))
		} else {
			h.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return analysis, true
}

// findResource resolves a dot-separated path first, then falls back to a
// depth-first name search.
func (h *Handlers) findResource(analysis *domain.OpenAPIAnalysis, name string) *domain.ParsedResource {
	if r := resourcegraph.FindByPath(analysis.Resources, name); r != nil {
		return r
	}
	return resourcegraph.FindByName(analysis.Resources, name, resourcegraph.FindOptions{})
}

func (h *Handlers) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		slog.String("request_id", uuid.NewString()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path))
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", slog.Any("error", err))
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]interface{}{
		"message":     message,
		"status_code": status,
	})
}

// writeDomainError propagates the status code carried by typed core errors;
// anything else is a 500.
func (h *Handlers) writeDomainError(w http.ResponseWriter, err error) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		h.writeJSON(w, derr.StatusCode, derr)
		return
	}
	h.writeError(w, http.StatusInternalServerError, err.Error())
}
