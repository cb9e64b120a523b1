package resourcegraph

import (
	"sort"
	"strings"

	"github.com/saltbo/openapi-rest-admin-sub002/internal/domain"
)

// Query is a fluent, reusable query description over a resource graph. Each
// builder call appends a predicate or adjusts traversal scope; Execute runs
// one traversal applying all predicates as a logical AND, then sorts, then
// truncates. The builder never mutates the underlying graph.
type Query struct {
	resources     []*domain.ParsedResource
	predicates    []func(*domain.ParsedResource) bool
	includeNested bool
	maxDepth      int
	less          func(a, b *domain.ParsedResource) bool
	limit         int
}

// NewQuery starts a query over the given top-level resource list.
func NewQuery(resources []*domain.ParsedResource) *Query {
	return &Query{resources: resources, maxDepth: DefaultMaxDepth}
}

// ByName keeps resources whose name contains the pattern, case-insensitively.
func (q *Query) ByName(pattern string) *Query {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	q.predicates = append(q.predicates, func(r *domain.ParsedResource) bool {
		return pattern == "" || strings.Contains(strings.ToLower(r.Name), pattern)
	})
	return q
}

// WithOperation keeps resources exposing the given HTTP verb.
func (q *Query) WithOperation(method string) *Query {
	method = strings.ToUpper(strings.TrimSpace(method))
	q.predicates = append(q.predicates, func(r *domain.ParsedResource) bool {
		return r.HasMethod(method)
	})
	return q
}

// IsRESTful keeps resources whose IsRestful flag equals want.
func (q *Query) IsRESTful(want bool) *Query {
	q.predicates = append(q.predicates, func(r *domain.ParsedResource) bool {
		return r.IsRestful == want
	})
	return q
}

// OfType keeps resources of the given CRUD capability class.
func (q *Query) OfType(t domain.ResourceType) *Query {
	q.predicates = append(q.predicates, func(r *domain.ParsedResource) bool {
		return r.ResourceType == t
	})
	return q
}

// WithTag keeps resources carrying the given tag.
func (q *Query) WithTag(tag string) *Query {
	q.predicates = append(q.predicates, func(r *domain.ParsedResource) bool {
		for _, t := range r.Tags {
			if t == tag {
				return true
			}
		}
		return false
	})
	return q
}

// HasSubResources keeps resources owning at least one sub-resource.
func (q *Query) HasSubResources() *Query {
	q.predicates = append(q.predicates, func(r *domain.ParsedResource) bool {
		return len(r.SubResources) > 0
	})
	return q
}

// IncludeNested widens the traversal from the top level to the whole tree.
func (q *Query) IncludeNested() *Query {
	q.includeNested = true
	return q
}

// MaxDepth bounds the nested traversal; zero means DefaultMaxDepth.
func (q *Query) MaxDepth(depth int) *Query {
	q.maxDepth = depth
	return q
}

// SortBy sets the result comparator.
func (q *Query) SortBy(less func(a, b *domain.ParsedResource) bool) *Query {
	q.less = less
	return q
}

// SortByName sorts results alphabetically by name.
func (q *Query) SortByName() *Query {
	return q.SortBy(func(a, b *domain.ParsedResource) bool {
		return a.Name < b.Name
	})
}

// Limit caps the result size. Zero or negative means no limit.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Execute runs the query and returns matching resources.
func (q *Query) Execute() []*domain.ParsedResource {
	var matches []*domain.ParsedResource
	collect := func(r *domain.ParsedResource) {
		for _, pred := range q.predicates {
			if !pred(r) {
				return
			}
		}
		matches = append(matches, r)
	}

	if q.includeNested {
		walk(q.resources, q.maxDepth, func(r *domain.ParsedResource, _ int) bool {
			collect(r)
			return false
		})
	} else {
		for _, r := range q.resources {
			if r != nil {
				collect(r)
			}
		}
	}

	if q.less != nil {
		sort.SliceStable(matches, func(i, j int) bool {
			return q.less(matches[i], matches[j])
		})
	}
	if q.limit > 0 && len(matches) > q.limit {
		matches = matches[:q.limit]
	}
	return matches
}

// Count returns the number of matches.
func (q *Query) Count() int {
	return len(q.Execute())
}

// Exists reports whether any resource matches.
func (q *Query) Exists() bool {
	return len(q.Execute()) > 0
}
