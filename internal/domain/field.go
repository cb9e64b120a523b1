package domain

// FieldType is the normalized type of a resource field.
// OpenAPI `format` values such as "date-time" or "email" are promoted into
// their own types so that consumers (table/form renderers) never need to look
// at the raw format string.
type FieldType string

const (
	FieldTypeString   FieldType = "string"
	FieldTypeNumber   FieldType = "number"
	FieldTypeInteger  FieldType = "integer"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeObject   FieldType = "object"
	FieldTypeArray    FieldType = "array"
	FieldTypeDate     FieldType = "date"
	FieldTypeDateTime FieldType = "datetime"
	FieldTypeEmail    FieldType = "email"
	FieldTypeURL      FieldType = "url"
)

// FieldDescriptor is the uniform field schema produced by the extractor.
// Items is set iff Type is array; Properties is set iff Type is object.
type FieldDescriptor struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Format   string    `json:"format,omitempty"`
	Required bool      `json:"required,omitempty"`

	Enum       []interface{}              `json:"enum,omitempty"`
	Items      *FieldDescriptor           `json:"items,omitempty"`
	Properties map[string]FieldDescriptor `json:"properties,omitempty"`

	// Validation constraints, carried through from the source schema when
	// present. Pointers distinguish "absent" from zero values.
	Minimum   *float64 `json:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"`
	MinLength *uint64  `json:"min_length,omitempty"`
	MaxLength *uint64  `json:"max_length,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`

	Example interface{} `json:"example,omitempty"`
}

// IsPrimitive reports whether the field holds a scalar value (anything but
// object or array).
func (f FieldDescriptor) IsPrimitive() bool {
	return f.Type != FieldTypeObject && f.Type != FieldTypeArray
}
