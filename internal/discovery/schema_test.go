package discovery_test

import (
	"encoding/json"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltbo/openapi-rest-admin-sub002/internal/discovery"
	"github.com/saltbo/openapi-rest-admin-sub002/internal/domain"
)

func schemaRef(t *testing.T, data string) *openapi3.SchemaRef {
	t.Helper()
	var schema openapi3.Schema
	require.NoError(t, json.Unmarshal([]byte(data), &schema))
	return openapi3.NewSchemaRef("", &schema)
}

func TestExtractFields_TypePromotion(t *testing.T) {
	ref := schemaRef(t, `{
	  "type": "object",
	  "required": ["id", "email"],
	  "properties": {
	    "id": {"type": "integer"},
	    "score": {"type": "number"},
	    "active": {"type": "boolean"},
	    "email": {"type": "string", "format": "email"},
	    "homepage": {"type": "string", "format": "uri"},
	    "birthday": {"type": "string", "format": "date"},
	    "created_at": {"type": "string", "format": "date-time"},
	    "nickname": {"type": "string"}
	  }
	}`)

	e := discovery.NewFieldExtractor(0, testLogger())
	fields := e.ExtractFields(ref)
	require.Len(t, fields, 8)

	byName := map[string]domain.FieldDescriptor{}
	for _, f := range fields {
		byName[f.Name] = f
	}

	tests := []struct {
		name     string
		wantType domain.FieldType
		required bool
	}{
		{"id", domain.FieldTypeInteger, true},
		{"score", domain.FieldTypeNumber, false},
		{"active", domain.FieldTypeBoolean, false},
		{"email", domain.FieldTypeEmail, true},
		{"homepage", domain.FieldTypeURL, false},
		{"birthday", domain.FieldTypeDate, false},
		{"created_at", domain.FieldTypeDateTime, false},
		{"nickname", domain.FieldTypeString, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := byName[tt.name]
			require.True(t, ok)
			assert.Equal(t, tt.wantType, f.Type)
			assert.Equal(t, tt.required, f.Required)
		})
	}
}

func TestExtractFields_OrderedAndInvariant(t *testing.T) {
	ref := schemaRef(t, `{
	  "type": "object",
	  "properties": {
	    "zeta": {"type": "string"},
	    "alpha": {"type": "integer"},
	    "tags": {"type": "array", "items": {"type": "string"}},
	    "owner": {"type": "object", "properties": {"name": {"type": "string"}}}
	  }
	}`)

	e := discovery.NewFieldExtractor(0, testLogger())
	fields := e.ExtractFields(ref)
	require.Len(t, fields, 4)

	// Alphabetical order keeps extraction deterministic.
	assert.Equal(t, "alpha", fields[0].Name)
	assert.Equal(t, "owner", fields[1].Name)
	assert.Equal(t, "tags", fields[2].Name)
	assert.Equal(t, "zeta", fields[3].Name)

	// Items set iff array; Properties set iff object.
	for _, f := range fields {
		switch f.Type {
		case domain.FieldTypeArray:
			assert.NotNil(t, f.Items)
			assert.Nil(t, f.Properties)
		case domain.FieldTypeObject:
			assert.NotNil(t, f.Properties)
			assert.Nil(t, f.Items)
		default:
			assert.Nil(t, f.Items)
			assert.Nil(t, f.Properties)
		}
	}

	owner := fields[1]
	require.Contains(t, owner.Properties, "name")
	assert.Equal(t, domain.FieldTypeString, owner.Properties["name"].Type)

	tags := fields[2]
	require.NotNil(t, tags.Items)
	assert.Equal(t, domain.FieldTypeString, tags.Items.Type)
}

func TestExtractFields_Constraints(t *testing.T) {
	ref := schemaRef(t, `{
	  "type": "object",
	  "properties": {
	    "age": {"type": "integer", "minimum": 0, "maximum": 150},
	    "code": {"type": "string", "minLength": 2, "maxLength": 8, "pattern": "^[A-Z]+$"},
	    "status": {"type": "string", "enum": ["draft", "published"]}
	  }
	}`)

	e := discovery.NewFieldExtractor(0, testLogger())
	fields := e.ExtractFields(ref)
	require.Len(t, fields, 3)

	age := fields[0]
	require.NotNil(t, age.Minimum)
	require.NotNil(t, age.Maximum)
	assert.Equal(t, 0.0, *age.Minimum)
	assert.Equal(t, 150.0, *age.Maximum)

	code := fields[1]
	require.NotNil(t, code.MinLength)
	require.NotNil(t, code.MaxLength)
	assert.Equal(t, uint64(2), *code.MinLength)
	assert.Equal(t, uint64(8), *code.MaxLength)
	assert.Equal(t, "^[A-Z]+$", code.Pattern)

	status := fields[2]
	assert.Equal(t, []interface{}{"draft", "published"}, status.Enum)
}

func TestExtractFields_DepthBound(t *testing.T) {
	// a -> b -> c -> d, extracted with maxDepth 2: b survives as a bare
	// object descriptor with no properties.
	ref := schemaRef(t, `{
	  "type": "object",
	  "properties": {
	    "a": {
	      "type": "object",
	      "properties": {
	        "b": {
	          "type": "object",
	          "properties": {
	            "c": {"type": "object", "properties": {"d": {"type": "string"}}}
	          }
	        }
	      }
	    }
	  }
	}`)

	e := discovery.NewFieldExtractor(2, testLogger())
	fields := e.ExtractFields(ref)
	require.Len(t, fields, 1)

	a := fields[0]
	assert.Equal(t, domain.FieldTypeObject, a.Type)
	require.Contains(t, a.Properties, "b")
	b := a.Properties["b"]
	assert.Equal(t, domain.FieldTypeObject, b.Type)
	assert.Nil(t, b.Properties)
}

func TestExtractFields_UntypedNodes(t *testing.T) {
	ref := schemaRef(t, `{
	  "type": "object",
	  "properties": {
	    "untypedObject": {"properties": {"x": {"type": "string"}}},
	    "untypedScalar": {}
	  }
	}`)

	e := discovery.NewFieldExtractor(0, testLogger())
	fields := e.ExtractFields(ref)
	require.Len(t, fields, 2)

	assert.Equal(t, domain.FieldTypeObject, fields[0].Type)
	assert.Equal(t, domain.FieldTypeString, fields[1].Type)
}

func TestExtractFields_NilSchema(t *testing.T) {
	e := discovery.NewFieldExtractor(0, testLogger())
	assert.Nil(t, e.ExtractFields(nil))
	assert.Nil(t, e.ExtractFields(openapi3.NewSchemaRef("", nil)))
}
