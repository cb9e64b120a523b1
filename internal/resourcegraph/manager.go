package resourcegraph

import (
	"strings"

	"github.com/saltbo/openapi-rest-admin-sub002/internal/domain"
)

// FindOptions tune FindByName traversal.
type FindOptions struct {
	// PreferTopLevel searches the current level exhaustively before
	// descending into sub-resources.
	PreferTopLevel bool
	// IncludeSubResources allows descent when PreferTopLevel found no match
	// at the top. Without PreferTopLevel the search is always a full
	// depth-first walk and this flag has no effect.
	IncludeSubResources bool
	// MaxDepth bounds the walk; zero means DefaultMaxDepth.
	MaxDepth int
}

// FindByName returns the first resource with the given name, or nil. A blank
// name or empty input yields nil rather than an error, since absence is an
// expected outcome of navigation.
func FindByName(resources []*domain.ParsedResource, name string, opts FindOptions) *domain.ParsedResource {
	name = strings.TrimSpace(name)
	if name == "" || len(resources) == 0 {
		return nil
	}

	if opts.PreferTopLevel {
		for _, r := range resources {
			if r != nil && r.Name == name {
				return r
			}
		}
		if !opts.IncludeSubResources {
			return nil
		}
	}

	var found *domain.ParsedResource
	walk(resources, opts.MaxDepth, func(r *domain.ParsedResource, _ int) bool {
		if r.Name == name {
			found = r
			return true
		}
		return false
	})
	return found
}

// FindByPath resolves a dot-separated name chain ("users.posts.comments") by
// sequential descent through sub-resources. Any missing hop returns nil.
func FindByPath(resources []*domain.ParsedResource, path string) *domain.ParsedResource {
	path = strings.TrimSpace(path)
	if path == "" || len(resources) == 0 {
		return nil
	}

	current := resources
	var resolved *domain.ParsedResource
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return nil
		}
		resolved = nil
		for _, r := range current {
			if r != nil && r.Name == segment {
				resolved = r
				break
			}
		}
		if resolved == nil {
			return nil
		}
		current = resolved.SubResources
	}
	return resolved
}

// Hierarchy describes where a resource sits in the graph.
type Hierarchy struct {
	Resource        *domain.ParsedResource `json:"resource"`
	Path            []string               `json:"path"`
	Depth           int                    `json:"depth"`
	IsTopLevel      bool                   `json:"is_top_level"`
	HasSubResources bool                   `json:"has_sub_resources"`
}

// GetResourceHierarchy locates the first resource with the given name and
// reports its ancestor chain. Depth is the ancestor count: 0 for top-level.
func GetResourceHierarchy(resources []*domain.ParsedResource, name string) *Hierarchy {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	path := findNamePath(resources, name, nil, 0, DefaultMaxDepth)
	if path == nil {
		return nil
	}
	r := FindByPath(resources, strings.Join(path, "."))
	if r == nil {
		return nil
	}
	return &Hierarchy{
		Resource:        r,
		Path:            path,
		Depth:           len(path) - 1,
		IsTopLevel:      len(path) == 1,
		HasSubResources: len(r.SubResources) > 0,
	}
}

func findNamePath(resources []*domain.ParsedResource, name string, prefix []string, depth, maxDepth int) []string {
	if depth > maxDepth {
		return nil
	}
	for _, r := range resources {
		if r == nil {
			continue
		}
		path := append(append([]string{}, prefix...), r.Name)
		if r.Name == name {
			return path
		}
		if found := findNamePath(r.SubResources, name, path, depth+1, maxDepth); found != nil {
			return found
		}
	}
	return nil
}

// Stats aggregates one full walk over the graph.
type Stats struct {
	Total            int `json:"total"`
	TopLevel         int `json:"top_level"`
	Restful          int `json:"restful"`
	WithSubResources int `json:"with_sub_resources"`
	// MaxDepth is the deepest nesting level observed, counting top-level
	// resources as level 1. Zero for an empty graph.
	MaxDepth        int            `json:"max_depth"`
	OperationCounts map[string]int `json:"operation_counts"`
}

// GetStats computes graph statistics in a single traversal. Empty input
// yields an all-zero result, never an error.
func GetStats(resources []*domain.ParsedResource) Stats {
	stats := Stats{
		OperationCounts: map[string]int{},
	}
	// Count non-nil entries only, matching what the walk visits.
	for _, r := range resources {
		if r != nil {
			stats.TopLevel++
		}
	}
	walk(resources, DefaultMaxDepth, func(r *domain.ParsedResource, depth int) bool {
		stats.Total++
		if r.IsRestful {
			stats.Restful++
		}
		if len(r.SubResources) > 0 {
			stats.WithSubResources++
		}
		if depth+1 > stats.MaxDepth {
			stats.MaxDepth = depth + 1
		}
		for _, m := range r.Methods {
			stats.OperationCounts[m]++
		}
		return false
	})
	return stats
}

// FindResourcesByOperation collects every resource exposing the given HTTP
// verb, bounded by maxDepth (zero means DefaultMaxDepth).
func FindResourcesByOperation(resources []*domain.ParsedResource, method string, maxDepth int) []*domain.ParsedResource {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return nil
	}
	var matches []*domain.ParsedResource
	walk(resources, maxDepth, func(r *domain.ParsedResource, _ int) bool {
		if r.HasMethod(method) {
			matches = append(matches, r)
		}
		return false
	})
	return matches
}

// FindResourcesByTag collects every resource carrying the given tag.
func FindResourcesByTag(resources []*domain.ParsedResource, tag string, maxDepth int) []*domain.ParsedResource {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil
	}
	var matches []*domain.ParsedResource
	walk(resources, maxDepth, func(r *domain.ParsedResource, _ int) bool {
		for _, t := range r.Tags {
			if t == tag {
				matches = append(matches, r)
				break
			}
		}
		return false
	})
	return matches
}
