// Package memcache provides an in-memory implementation of the analysis
// cache. NOTE: entries are not persistent and are lost on restart.
package memcache

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/saltbo/openapi-rest-admin-sub002/internal/domain"
	"github.com/saltbo/openapi-rest-admin-sub002/internal/usecase"
)

// AnalysisCache stores one immutable analysis per document id, guarded by an
// RWMutex so concurrent readers never block each other. Put replaces the
// whole entry: readers holding the previous analysis keep a consistent view.
type AnalysisCache struct {
	mu       sync.RWMutex
	analyses map[string]*domain.OpenAPIAnalysis
	logger   *slog.Logger
}

// New creates an empty in-memory cache.
func New(logger *slog.Logger) *AnalysisCache {
	return &AnalysisCache{
		analyses: make(map[string]*domain.OpenAPIAnalysis),
		logger:   logger.With("component", "analysis_cache"),
	}
}

// Put stores or replaces the analysis for a document id.
func (c *AnalysisCache) Put(ctx context.Context, id string, analysis *domain.OpenAPIAnalysis) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.analyses[id] = analysis
	c.logger.Info("Cached analysis",
		slog.String("document_id", id),
		slog.Int("resource_count", len(analysis.Resources)),
		slog.Int("total_cached", len(c.analyses)))
	return nil
}

// Get retrieves a cached analysis, or usecase.ErrAnalysisNotFound.
func (c *AnalysisCache) Get(ctx context.Context, id string) (*domain.OpenAPIAnalysis, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	analysis, ok := c.analyses[id]
	if !ok {
		c.logger.Debug("Analysis not found in cache", slog.String("document_id", id))
		return nil, usecase.ErrAnalysisNotFound
	}
	return analysis, nil
}

// Delete drops the analysis for a document id. Deleting an unknown id is a
// no-op.
func (c *AnalysisCache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.analyses, id)
	c.logger.Info("Evicted analysis from cache", slog.String("document_id", id))
	return nil
}

// IDs lists the cached document ids in sorted order.
func (c *AnalysisCache) IDs(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.analyses))
	for id := range c.analyses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
