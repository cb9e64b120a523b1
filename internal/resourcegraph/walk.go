// Package resourcegraph provides read-only navigation, search, validation and
// statistics over the immutable resource tree produced by discovery. Every
// function is side-effect-free and safe for arbitrary concurrent callers
// sharing one graph.
package resourcegraph

import "github.com/saltbo/openapi-rest-admin-sub002/internal/domain"

// DefaultMaxDepth bounds tree walks. It exists purely as a recursion guard
// against pathological or generated documents with very deep nesting, not as
// a business rule.
const DefaultMaxDepth = 10

// visitor is invoked for each resource reached by walk together with its
// depth (0 for entries of the initial slice). Returning true stops the whole
// traversal early.
type visitor func(r *domain.ParsedResource, depth int) (stop bool)

// walk is the single traversal primitive behind every search in this package:
// depth-first, pre-order, bounded by maxDepth (inclusive). It returns whether
// the visitor stopped the traversal.
func walk(resources []*domain.ParsedResource, maxDepth int, visit visitor) bool {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return walkAt(resources, 0, maxDepth, visit)
}

func walkAt(resources []*domain.ParsedResource, depth, maxDepth int, visit visitor) bool {
	if depth > maxDepth {
		return false
	}
	for _, r := range resources {
		if r == nil {
			continue
		}
		if visit(r, depth) {
			return true
		}
		if walkAt(r.SubResources, depth+1, maxDepth, visit) {
			return true
		}
	}
	return false
}
