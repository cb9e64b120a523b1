// Package transform normalizes arbitrary, envelope-inconsistent JSON API
// responses against a single resource's declared field schema. No fixed
// response-envelope convention is assumed: candidate wrapper keys are probed
// in a fixed, configurable order and the first structural match wins, so the
// result is deterministic for a given body and schema.
//
// Every call is stateless: the transformer never consults document-wide
// state, only the schema it is handed.
package transform

import (
	"sort"

	"github.com/saltbo/openapi-rest-admin-sub002/internal/domain"
)

// Conventional wrapper field names probed in order. Hosts can override both
// lists through Options.
var (
	DefaultListKeys   = []string{"data", "items", "list", "results", "records", "content"}
	DefaultSingleKeys = []string{"data", "item", "result", "record", "content"}
)

// Options override the candidate-key heuristics. Zero values mean defaults.
type Options struct {
	ListKeys       []string
	SingleKeys     []string
	PaginationKeys []string
}

// Transformer extracts list/single resource payloads and pagination metadata
// from live HTTP response bodies. Safe for concurrent use.
type Transformer struct {
	listKeys       []string
	singleKeys     []string
	paginationKeys []string
}

// New creates a Transformer, filling unset options with the defaults.
func New(opts Options) *Transformer {
	t := &Transformer{
		listKeys:       opts.ListKeys,
		singleKeys:     opts.SingleKeys,
		paginationKeys: opts.PaginationKeys,
	}
	if len(t.listKeys) == 0 {
		t.listKeys = DefaultListKeys
	}
	if len(t.singleKeys) == 0 {
		t.singleKeys = DefaultSingleKeys
	}
	if len(t.paginationKeys) == 0 {
		t.paginationKeys = DefaultPaginationKeys
	}
	return t
}

// ListResult is the normalized form of a list response.
type ListResult struct {
	Data       []interface{}         `json:"data"`
	Pagination domain.PaginationInfo `json:"pagination"`
}

// TransformList extracts the resource array and pagination metadata from a
// decoded list response body. The schema argument is required; a nil body is
// an error because a list response must be present.
func (t *Transformer) TransformList(body interface{}, schema []domain.FieldDescriptor) (*ListResult, error) {
	if schema == nil {
		return nil, domain.NewConfigurationError("resource schema is required to transform a list response")
	}
	if body == nil {
		return nil, domain.NewParseError("list response body is empty")
	}

	switch v := body.(type) {
	case []interface{}:
		if !sampleMatches(v, schema) {
			return nil, domain.NewParseError("list response array does not match the resource schema")
		}
		return &ListResult{Data: v, Pagination: singlePage(len(v))}, nil

	case map[string]interface{}:
		// Probe the conventional wrapper keys in their fixed order.
		for _, key := range t.listKeys {
			if arr, ok := arrayAt(v, key); ok && sampleMatches(arr, schema) {
				return &ListResult{Data: arr, Pagination: t.extractPagination(v, len(arr))}, nil
			}
		}
		// Fall back to scanning every array-valued property, in sorted key
		// order to stay deterministic.
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if arr, ok := arrayAt(v, key); ok && sampleMatches(arr, schema) {
				return &ListResult{Data: arr, Pagination: t.extractPagination(v, len(arr))}, nil
			}
		}
		return nil, domain.NewParseError("no array matching the resource schema found in list response")

	default:
		return nil, domain.NewParseError("list response body is neither an array nor an object")
	}
}

// TransformSingle extracts a single resource from a decoded response body.
// A nil or non-object body is returned unchanged; a scalar or absent single
// resource is a valid terminal case, not an error.
func (t *Transformer) TransformSingle(body interface{}, schema []domain.FieldDescriptor) (interface{}, error) {
	if schema == nil {
		return nil, domain.NewConfigurationError("resource schema is required to transform a single response")
	}
	obj, ok := body.(map[string]interface{})
	if !ok {
		return body, nil
	}

	if MatchesSchema(obj, schema) {
		return obj, nil
	}

	for _, key := range t.singleKeys {
		if nested, ok := obj[key].(map[string]interface{}); ok && MatchesSchema(nested, schema) {
			return nested, nil
		}
	}

	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if nested, ok := obj[key].(map[string]interface{}); ok && MatchesSchema(nested, schema) {
			return nested, nil
		}
	}

	return nil, domain.NewParseError("response body does not match the resource schema")
}

// MatchesSchema is the shallow structural check: a candidate matches an
// object schema when every required field is present. Value types of
// individual fields are deliberately not deep-validated. Real APIs return
// extra and loosely typed fields, so the check verifies "looks like the
// declared shape", not full conformance.
func MatchesSchema(value interface{}, schema []domain.FieldDescriptor) bool {
	obj, ok := value.(map[string]interface{})
	if !ok {
		// Non-object candidates only pass against an empty schema.
		return len(schema) == 0
	}
	for _, field := range schema {
		if !field.Required {
			continue
		}
		if _, present := obj[field.Name]; !present {
			return false
		}
	}
	return true
}

// sampleMatches validates the first non-nil element of a candidate array
// against the schema. An empty array matches trivially.
func sampleMatches(arr []interface{}, schema []domain.FieldDescriptor) bool {
	for _, elem := range arr {
		if elem == nil {
			continue
		}
		return MatchesSchema(elem, schema)
	}
	return true
}

func arrayAt(obj map[string]interface{}, key string) ([]interface{}, bool) {
	arr, ok := obj[key].([]interface{})
	return arr, ok
}
