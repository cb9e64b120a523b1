package discovery

import (
	"log/slog"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/saltbo/openapi-rest-admin-sub002/internal/domain"
)

// FieldExtractor converts OpenAPI schema nodes into uniform field
// descriptors, unwrapping nested object and array definitions recursively.
// Recursion is bounded by maxDepth so that malformed or adversarial documents
// cannot blow the stack; legitimate specs are not expected to get anywhere
// near the limit.
type FieldExtractor struct {
	maxDepth int
	logger   *slog.Logger
}

// NewFieldExtractor creates an extractor with the given recursion bound.
func NewFieldExtractor(maxDepth int, logger *slog.Logger) *FieldExtractor {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxSchemaDepth
	}
	return &FieldExtractor{
		maxDepth: maxDepth,
		logger:   logger.With("component", "field_extractor"),
	}
}

// ExtractFields turns an object schema's properties into an ordered,
// name-deduplicated field list. Property order is alphabetical so that
// repeated extraction of the same document yields identical output.
func (e *FieldExtractor) ExtractFields(ref *openapi3.SchemaRef) []domain.FieldDescriptor {
	if ref == nil || ref.Value == nil || len(ref.Value.Properties) == 0 {
		return nil
	}
	schema := ref.Value

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[string]bool, len(names))
	fields := make([]domain.FieldDescriptor, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		fields = append(fields, e.extractField(name, schema.Properties[name], required[name], 1))
	}
	return fields
}

// extractField converts a single property schema. depth counts object/array
// nesting levels already entered.
func (e *FieldExtractor) extractField(name string, ref *openapi3.SchemaRef, required bool, depth int) domain.FieldDescriptor {
	field := domain.FieldDescriptor{
		Name:     name,
		Type:     domain.FieldTypeString,
		Required: required,
	}
	if ref == nil || ref.Value == nil {
		return field
	}
	schema := ref.Value

	field.Type = normalizeType(schema)
	field.Format = schema.Format
	field.Enum = schema.Enum
	field.Pattern = schema.Pattern
	field.Example = schema.Example
	field.Minimum = schema.Min
	field.Maximum = schema.Max
	field.MaxLength = schema.MaxLength
	if schema.MinLength > 0 {
		minLen := schema.MinLength
		field.MinLength = &minLen
	}

	if depth >= e.maxDepth {
		if field.Type == domain.FieldTypeObject || field.Type == domain.FieldTypeArray {
			e.logger.Warn("Schema nesting exceeds depth limit, truncating field.",
				slog.String("field", name), slog.Int("max_depth", e.maxDepth))
		}
		return field
	}

	switch field.Type {
	case domain.FieldTypeObject:
		if len(schema.Properties) == 0 {
			break
		}
		requiredSet := make(map[string]bool, len(schema.Required))
		for _, n := range schema.Required {
			requiredSet[n] = true
		}
		names := make([]string, 0, len(schema.Properties))
		for n := range schema.Properties {
			names = append(names, n)
		}
		sort.Strings(names)
		field.Properties = make(map[string]domain.FieldDescriptor, len(names))
		for _, n := range names {
			field.Properties[n] = e.extractField(n, schema.Properties[n], requiredSet[n], depth+1)
		}
	case domain.FieldTypeArray:
		if schema.Items != nil {
			item := e.extractField("", schema.Items, false, depth+1)
			field.Items = &item
		}
	}
	return field
}

// normalizeType maps an OpenAPI type/format pair onto a FieldType, promoting
// well-known string formats into dedicated types.
func normalizeType(schema *openapi3.Schema) domain.FieldType {
	var typ string
	if schema.Type != nil && len(*schema.Type) > 0 {
		typ = (*schema.Type)[0]
	}

	switch typ {
	case "integer":
		return domain.FieldTypeInteger
	case "number":
		return domain.FieldTypeNumber
	case "boolean":
		return domain.FieldTypeBoolean
	case "array":
		return domain.FieldTypeArray
	case "object":
		return domain.FieldTypeObject
	case "string":
		switch schema.Format {
		case "date":
			return domain.FieldTypeDate
		case "date-time":
			return domain.FieldTypeDateTime
		case "email":
			return domain.FieldTypeEmail
		case "uri", "url":
			return domain.FieldTypeURL
		}
		return domain.FieldTypeString
	case "":
		// Untyped schema nodes: treat a node with properties as an object,
		// one with items as an array, otherwise fall back to string.
		if len(schema.Properties) > 0 {
			return domain.FieldTypeObject
		}
		if schema.Items != nil {
			return domain.FieldTypeArray
		}
		return domain.FieldTypeString
	default:
		return domain.FieldTypeString
	}
}
