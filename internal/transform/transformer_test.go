package transform_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltbo/openapi-rest-admin-sub002/internal/domain"
	"github.com/saltbo/openapi-rest-admin-sub002/internal/transform"
)

var userSchema = []domain.FieldDescriptor{
	{Name: "id", Type: domain.FieldTypeInteger, Required: true},
	{Name: "name", Type: domain.FieldTypeString},
}

// decode round-trips a literal through encoding/json so bodies carry the
// exact types a live HTTP response would.
func decode(t *testing.T, data string) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(data), &v))
	return v
}

func TestTransformList_BareArray(t *testing.T) {
	tr := transform.New(transform.Options{})

	body := decode(t, `[{"id": 1, "name": "ada"}, {"id": 2, "name": "grace"}]`)
	result, err := tr.TransformList(body, userSchema)
	require.NoError(t, err)

	require.Len(t, result.Data, 2)
	assert.Equal(t, domain.PaginationInfo{Page: 1, PageSize: 2, Total: 2, TotalPages: 1}, result.Pagination)
}

func TestTransformList_UnwrapsEnvelope(t *testing.T) {
	tr := transform.New(transform.Options{})

	body := decode(t, `{"data": [{"id": 1, "name": "ada"}], "total": 37}`)
	result, err := tr.TransformList(body, userSchema)
	require.NoError(t, err)

	require.Len(t, result.Data, 1)
	elem, ok := result.Data[0].(map[string]interface{})
	require.True(t, ok)
	// Elements expose the resource fields directly, never the envelope key.
	assert.Contains(t, elem, "id")
	assert.Contains(t, elem, "name")
	assert.NotContains(t, elem, "data")
}

func TestTransformList_FixedKeyOrderWins(t *testing.T) {
	tr := transform.New(transform.Options{})

	// Both "items" and "results" hold matching arrays; "items" precedes
	// "results" in the candidate order, so it must win deterministically.
	body := decode(t, `{
	  "results": [{"id": 99}],
	  "items": [{"id": 1}]
	}`)
	result, err := tr.TransformList(body, userSchema)
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, float64(1), result.Data[0].(map[string]interface{})["id"])
}

func TestTransformList_FallsBackToScanningAllArrays(t *testing.T) {
	tr := transform.New(transform.Options{})

	body := decode(t, `{"unconventional": [{"id": 7, "name": "x"}]}`)
	result, err := tr.TransformList(body, userSchema)
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
}

func TestTransformList_Errors(t *testing.T) {
	tr := transform.New(transform.Options{})

	tests := []struct {
		name    string
		body    interface{}
		schema  []domain.FieldDescriptor
		isParse bool
	}{
		{"nil schema", decode(t, `[]`), nil, false},
		{"nil body", nil, userSchema, true},
		{"scalar body", "nope", userSchema, true},
		{"array element missing required field", decode(t, `[{"name": "no id"}]`), userSchema, true},
		{"no matching array anywhere", decode(t, `{"data": "not an array", "count": 3}`), userSchema, true},
		{"wrapped array fails the sample check", decode(t, `{"data": [{"name": "no id"}]}`), userSchema, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.TransformList(tt.body, tt.schema)
			require.Error(t, err)
			if tt.isParse {
				assert.True(t, domain.IsParseError(err))
			} else {
				assert.True(t, domain.IsConfigurationError(err))
			}

			var derr *domain.Error
			require.ErrorAs(t, err, &derr)
			assert.NotZero(t, derr.StatusCode)
			assert.NotEmpty(t, derr.Category)
		})
	}
}

func TestTransformList_EmptyAndNullElements(t *testing.T) {
	tr := transform.New(transform.Options{})

	result, err := tr.TransformList(decode(t, `[]`), userSchema)
	require.NoError(t, err)
	assert.Empty(t, result.Data)
	assert.Equal(t, domain.PaginationInfo{Page: 1, PageSize: 0, Total: 0, TotalPages: 1}, result.Pagination)

	// The sample check skips null elements.
	result, err = tr.TransformList(decode(t, `[null, {"id": 3}]`), userSchema)
	require.NoError(t, err)
	assert.Len(t, result.Data, 2)
}

func TestTransformSingle(t *testing.T) {
	tr := transform.New(transform.Options{})

	t.Run("nil body returned unchanged", func(t *testing.T) {
		out, err := tr.TransformSingle(nil, userSchema)
		require.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("scalar body returned unchanged", func(t *testing.T) {
		out, err := tr.TransformSingle("just text", userSchema)
		require.NoError(t, err)
		assert.Equal(t, "just text", out)
	})

	t.Run("direct match returned as-is", func(t *testing.T) {
		body := decode(t, `{"id": 1, "name": "ada", "extra": true}`)
		out, err := tr.TransformSingle(body, userSchema)
		require.NoError(t, err)
		assert.Equal(t, body, out)
	})

	t.Run("unwraps singular envelope", func(t *testing.T) {
		body := decode(t, `{"data": {"id": 1, "name": "ada"}}`)
		out, err := tr.TransformSingle(body, userSchema)
		require.NoError(t, err)
		obj, ok := out.(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, obj, "id")
		assert.NotContains(t, obj, "data")
	})

	t.Run("scans object-valued properties as a last resort", func(t *testing.T) {
		body := decode(t, `{"payload": {"id": 5}}`)
		out, err := tr.TransformSingle(body, userSchema)
		require.NoError(t, err)
		assert.Equal(t, float64(5), out.(map[string]interface{})["id"])
	})

	t.Run("unmatched object is a parse error", func(t *testing.T) {
		_, err := tr.TransformSingle(decode(t, `{"unrelatedField": 1}`), userSchema)
		require.Error(t, err)
		assert.True(t, domain.IsParseError(err))
	})

	t.Run("nil schema is a configuration error", func(t *testing.T) {
		_, err := tr.TransformSingle(decode(t, `{"id": 1}`), nil)
		require.Error(t, err)
		assert.True(t, domain.IsConfigurationError(err))
	})
}

func TestTransform_EmptySchemaIsNotMissingSchema(t *testing.T) {
	tr := transform.New(transform.Options{})
	empty := []domain.FieldDescriptor{}

	// A nil schema is a missing argument; an empty one came from a resource
	// the document declared no fields for, and accepts any body.
	_, err := tr.TransformList(decode(t, `[{"id": 1}]`), nil)
	assert.True(t, domain.IsConfigurationError(err))

	result, err := tr.TransformList(decode(t, `[{"id": 1}]`), empty)
	require.NoError(t, err)
	require.Len(t, result.Data, 1)

	result, err = tr.TransformList(decode(t, `{"data": [{"anything": true}]}`), empty)
	require.NoError(t, err)
	require.Len(t, result.Data, 1)

	body := decode(t, `{"whatever": 1}`)
	out, err := tr.TransformSingle(body, empty)
	require.NoError(t, err)
	assert.Equal(t, body, out)
}

func TestTransformList_CustomKeys(t *testing.T) {
	tr := transform.New(transform.Options{ListKeys: []string{"payload"}})

	body := decode(t, `{"payload": [{"id": 1}]}`)
	result, err := tr.TransformList(body, userSchema)
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
}

func TestMatchesSchema(t *testing.T) {
	tests := []struct {
		name   string
		value  interface{}
		schema []domain.FieldDescriptor
		want   bool
	}{
		{"required present", map[string]interface{}{"id": 1.0}, userSchema, true},
		{"required missing", map[string]interface{}{"name": "x"}, userSchema, false},
		{"extra fields tolerated", map[string]interface{}{"id": 1.0, "junk": true}, userSchema, true},
		{"loose value types tolerated", map[string]interface{}{"id": "not-a-number"}, userSchema, true},
		{"non-object against empty schema", "scalar", []domain.FieldDescriptor{}, true},
		{"non-object against object schema", "scalar", userSchema, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, transform.MatchesSchema(tt.value, tt.schema))
		})
	}
}
