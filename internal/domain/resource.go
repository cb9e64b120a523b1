package domain

// ResourceType classifies the CRUD capability of a discovered resource.
type ResourceType string

const (
	ResourceTypeFullCRUD ResourceType = "full_crud"
	ResourceTypeReadOnly ResourceType = "read_only"
	ResourceTypeCustom   ResourceType = "custom"
)

// OperationInfo carries per-verb metadata from the source document.
type OperationInfo struct {
	Method      string   `json:"method"`
	OperationID string   `json:"operation_id,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty"`
}

// ParsedResource is one node of the resource graph built from an OpenAPI
// document. A resource owns its SubResources exclusively; ParentResourceID is
// a back-reference only. The graph is immutable once built; consumers must
// treat every field as read-only.
type ParsedResource struct {
	// ID is stable across rebuilds of the same document: it is derived from
	// the resource's position in the path hierarchy, never generated randomly.
	ID   string `json:"id"`
	Name string `json:"name"`

	// Path is the collection path template (e.g. "/users/{userId}/posts").
	// BasePath is the invocation prefix: the server base path joined with Path.
	Path     string `json:"path"`
	BasePath string `json:"base_path"`

	// Methods is the sorted union of HTTP verbs observed across the
	// collection and item routes of this resource's path cluster.
	Methods []string `json:"methods"`

	// Schema is the ordered field list of the resource's item representation,
	// deduplicated by name. May be empty when the document declares no usable
	// response or request schema for the cluster.
	Schema []FieldDescriptor `json:"schema"`

	Operations map[string]OperationInfo `json:"operations,omitempty"`

	SubResources []*ParsedResource `json:"sub_resources,omitempty"`

	IsRestful        bool         `json:"is_restful"`
	ParentResourceID string       `json:"parent_resource_id,omitempty"`
	ResourceType     ResourceType `json:"resource_type"`
	Tags             []string     `json:"tags,omitempty"`
}

// HasMethod reports whether the resource exposes the given HTTP verb.
func (r *ParsedResource) HasMethod(method string) bool {
	for _, m := range r.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// HasSchema reports whether any field schema was extracted for the resource.
func (r *ParsedResource) HasSchema() bool {
	return len(r.Schema) > 0
}
