package ragcore

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldKind enumerates the declared type of a metadata field, used for
// runtime validation of values arriving at the loader-output trust boundary.
type FieldKind int

const (
	FieldString FieldKind = iota
	FieldInt
	FieldFloat
	FieldBool
)

// FieldSpec declares one logical metadata field: its name, its kind, and
// whether ValidateMetadata requires it to be present. Physical column
// overrides are given separately, through WithColumnOverride.
type FieldSpec struct {
	Name     string `validate:"required"`
	Kind     FieldKind
	Required bool
}

// MetadataDescriptor enumerates the fields of a caller's metadata record,
// identifies the documentKey field, and lists the sourceKeys fields. This is
// the construction input described in spec §4.1. Struct tags drive
// validator.Struct validation in NewColumnMapping before any of the
// field-by-field checks run.
type MetadataDescriptor struct {
	Fields      []FieldSpec `validate:"required,min=1,dive"`
	DocumentKey string      `validate:"required"`
	SourceKeys  []string
}

// ColumnMapping is the frozen, validated binding from logical metadata field
// names to physical database column names, plus the three fixed columns and
// the documentKey column. It is immutable after construction.
type ColumnMapping struct {
	descriptor MetadataDescriptor
	fieldCols  map[string]string // logical field -> physical column
	fieldKind  map[string]FieldKind

	contentColumn   string
	indexColumn     string
	embeddingColumn string

	validate *validator.Validate
}

// ColumnMappingOption configures NewColumnMapping.
type ColumnMappingOption func(*columnMappingConfig)

type columnMappingConfig struct {
	overrides       map[string]string
	contentColumn   string
	indexColumn     string
	embeddingColumn string
}

// WithColumnOverride binds a specific logical field name to a specific
// physical column name, overriding the default camelCase->snake_case
// mapping.
func WithColumnOverride(field, column string) ColumnMappingOption {
	return func(c *columnMappingConfig) {
		c.overrides[field] = column
	}
}

// WithContentColumn overrides the fixed content column name (default
// "chunk_content").
func WithContentColumn(column string) ColumnMappingOption {
	return func(c *columnMappingConfig) { c.contentColumn = column }
}

// WithIndexColumn overrides the fixed index column name (default
// "chunk_index").
func WithIndexColumn(column string) ColumnMappingOption {
	return func(c *columnMappingConfig) { c.indexColumn = column }
}

// WithEmbeddingColumn overrides the fixed embedding column name (default
// "embedding").
func WithEmbeddingColumn(column string) ColumnMappingOption {
	return func(c *columnMappingConfig) { c.embeddingColumn = column }
}

const reservedFieldName = "type"

// NewColumnMapping validates a MetadataDescriptor and builds the frozen
// ColumnMapping described in spec §4.1. All validation errors here are
// ConfigurationErrors: they are discovered once, at construction.
func NewColumnMapping(descriptor MetadataDescriptor, opts ...ColumnMappingOption) (*ColumnMapping, error) {
	cfg := &columnMappingConfig{
		overrides:       map[string]string{},
		contentColumn:   "chunk_content",
		indexColumn:     "chunk_index",
		embeddingColumn: "embedding",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	validate := validator.New()
	if err := validate.Struct(descriptor); err != nil {
		return nil, NewConfigurationError("ColumnMapping", fmt.Sprintf("metadata descriptor failed validation: %s", err))
	}

	fieldSet := map[string]FieldSpec{}
	for _, f := range descriptor.Fields {
		if strings.EqualFold(f.Name, reservedFieldName) {
			return nil, NewConfigurationError("ColumnMapping", fmt.Sprintf("field name %q is reserved", f.Name))
		}
		if !ValidIdentifier(f.Name) {
			return nil, NewConfigurationError("ColumnMapping", fmt.Sprintf("field name %q is not a valid identifier", f.Name))
		}
		fieldSet[f.Name] = f
	}

	if descriptor.DocumentKey == "" {
		return nil, NewConfigurationError("ColumnMapping", "documentKey is required")
	}
	if _, ok := fieldSet[descriptor.DocumentKey]; !ok {
		return nil, NewConfigurationError("ColumnMapping", fmt.Sprintf("documentKey %q is absent from the metadata descriptor", descriptor.DocumentKey))
	}
	for _, sk := range descriptor.SourceKeys {
		if _, ok := fieldSet[sk]; !ok {
			return nil, NewConfigurationError("ColumnMapping", fmt.Sprintf("sourceKey %q is absent from the metadata descriptor", sk))
		}
	}

	fieldCols := make(map[string]string, len(fieldSet))
	fieldKind := make(map[string]FieldKind, len(fieldSet))
	for name, spec := range fieldSet {
		col := cfg.overrides[name]
		if col == "" {
			col = camelToSnake(name)
		}
		if !ValidIdentifier(col) {
			return nil, NewConfigurationError("ColumnMapping", fmt.Sprintf("physical column %q for field %q is not a valid identifier", col, name))
		}
		fieldCols[name] = col
		fieldKind[name] = spec.Kind
	}

	for _, col := range []string{cfg.contentColumn, cfg.indexColumn, cfg.embeddingColumn} {
		if !ValidIdentifier(col) {
			return nil, NewConfigurationError("ColumnMapping", fmt.Sprintf("fixed column %q is not a valid identifier", col))
		}
	}

	return &ColumnMapping{
		descriptor:      descriptor,
		fieldCols:       fieldCols,
		fieldKind:       fieldKind,
		contentColumn:   cfg.contentColumn,
		indexColumn:     cfg.indexColumn,
		embeddingColumn: cfg.embeddingColumn,
		validate:        validate,
	}, nil
}

// Column returns the physical column for a logical field name, and whether
// that field is declared.
func (m *ColumnMapping) Column(field string) (string, bool) {
	col, ok := m.fieldCols[field]
	return col, ok
}

// DocumentKeyColumn returns the physical column bound to the documentKey
// field.
func (m *ColumnMapping) DocumentKeyColumn() string {
	col, _ := m.Column(m.descriptor.DocumentKey)
	return col
}

// DocumentKeyField returns the logical documentKey field name.
func (m *ColumnMapping) DocumentKeyField() string { return m.descriptor.DocumentKey }

// SourceKeyColumns returns the physical columns bound to the sourceKeys
// fields, in declared order.
func (m *ColumnMapping) SourceKeyColumns() []string {
	cols := make([]string, len(m.descriptor.SourceKeys))
	for i, sk := range m.descriptor.SourceKeys {
		cols[i], _ = m.Column(sk)
	}
	return cols
}

// SourceKeyFields returns the logical sourceKeys field names, in declared
// order.
func (m *ColumnMapping) SourceKeyFields() []string { return m.descriptor.SourceKeys }

// ContentColumn, IndexColumn, EmbeddingColumn return the three fixed
// physical column names.
func (m *ColumnMapping) ContentColumn() string   { return m.contentColumn }
func (m *ColumnMapping) IndexColumn() string     { return m.indexColumn }
func (m *ColumnMapping) EmbeddingColumn() string { return m.embeddingColumn }

// Fields returns the declared logical field names in stable order.
func (m *ColumnMapping) Fields() []string {
	out := make([]string, 0, len(m.fieldCols))
	for _, f := range m.descriptor.Fields {
		out = append(out, f.Name)
	}
	return out
}

// ValidateMetadata rejects a runtime metadata value if it fails the
// declared field kinds or contains fields outside the allowed set (strict
// mode, per spec §4.1). This is the loader-output trust boundary: the only
// other trust boundary is database row decoding (see query.go).
func (m *ColumnMapping) ValidateMetadata(values map[string]interface{}) error {
	var fieldErrs []FieldError

	for name := range values {
		if _, declared := m.fieldKind[name]; !declared {
			fieldErrs = append(fieldErrs, FieldError{
				Path:     name,
				Message:  "field is not declared in the metadata schema",
				Expected: "one of the declared fields",
				Received: name,
			})
		}
	}

	for name, kind := range m.fieldKind {
		v, present := values[name]
		if !present || v == nil {
			if isRequired(m.descriptor, name) {
				fieldErrs = append(fieldErrs, FieldError{
					Path:     name,
					Message:  "required field is missing",
					Expected: kindName(kind),
					Received: "undefined",
				})
			}
			continue
		}
		if !kindMatches(kind, v) {
			fieldErrs = append(fieldErrs, FieldError{
				Path:     name,
				Message:  "value does not match declared type",
				Expected: kindName(kind),
				Received: fmt.Sprintf("%T", v),
			})
		}
	}

	if len(fieldErrs) > 0 {
		return NewValidationError("ValidateMetadata", fieldErrs...)
	}
	return nil
}

func isRequired(d MetadataDescriptor, field string) bool {
	if field == d.DocumentKey {
		return true
	}
	for _, sk := range d.SourceKeys {
		if sk == field {
			return true
		}
	}
	for _, f := range d.Fields {
		if f.Name == field {
			return f.Required
		}
	}
	return false
}

func kindName(k FieldKind) string {
	switch k {
	case FieldString:
		return "string"
	case FieldInt:
		return "int"
	case FieldFloat:
		return "float"
	case FieldBool:
		return "bool"
	default:
		return "unknown"
	}
}

func kindMatches(k FieldKind, v interface{}) bool {
	rv := reflect.ValueOf(v)
	switch k {
	case FieldString:
		return rv.Kind() == reflect.String
	case FieldInt:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return true
		default:
			return false
		}
	case FieldFloat:
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return true
		default:
			return false
		}
	case FieldBool:
		return rv.Kind() == reflect.Bool
	default:
		return false
	}
}

// camelToSnake implements spec §4.1's default mapping policy: camelCase to
// snake_case, e.g. repositoryIndexDbId -> repository_index_db_id.
func camelToSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				prev := runes[i-1]
				nextIsLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
				if (prev >= 'a' && prev <= 'z') || (prev >= '0' && prev <= '9') ||
					((prev >= 'A' && prev <= 'Z') && nextIsLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
