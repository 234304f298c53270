package ragline

import "github.com/ragline/ragline/internal/ragcore"

// FieldKind enumerates the declared type of a metadata field.
type FieldKind = ragcore.FieldKind

const (
	FieldString = ragcore.FieldString
	FieldInt    = ragcore.FieldInt
	FieldFloat  = ragcore.FieldFloat
	FieldBool   = ragcore.FieldBool
)

// FieldSpec declares one logical metadata field: its name, its kind, and
// whether it is required.
type FieldSpec = ragcore.FieldSpec

// MetadataDescriptor enumerates the fields of a caller's metadata record,
// identifies the documentKey field, and lists the sourceKeys fields.
type MetadataDescriptor = ragcore.MetadataDescriptor

// ColumnMapping is the frozen, validated binding from logical metadata
// field names to physical database column names.
type ColumnMapping = ragcore.ColumnMapping

// ColumnMappingOption configures NewColumnMapping.
type ColumnMappingOption = ragcore.ColumnMappingOption

// NewColumnMapping validates a MetadataDescriptor and builds the frozen
// ColumnMapping. By default, logical field names are mapped to snake_case
// physical column names, and the three fixed columns are named
// "chunk_content", "chunk_index", and "embedding".
func NewColumnMapping(descriptor MetadataDescriptor, opts ...ColumnMappingOption) (*ColumnMapping, error) {
	return ragcore.NewColumnMapping(descriptor, opts...)
}

// WithColumnOverride binds a specific logical field name to a specific
// physical column name, overriding the default camelCase->snake_case
// mapping.
func WithColumnOverride(field, column string) ColumnMappingOption {
	return ragcore.WithColumnOverride(field, column)
}

// WithContentColumn overrides the fixed content column name.
func WithContentColumn(column string) ColumnMappingOption {
	return ragcore.WithContentColumn(column)
}

// WithIndexColumn overrides the fixed index column name.
func WithIndexColumn(column string) ColumnMappingOption {
	return ragcore.WithIndexColumn(column)
}

// WithEmbeddingColumn overrides the fixed embedding column name.
func WithEmbeddingColumn(column string) ColumnMappingOption {
	return ragcore.WithEmbeddingColumn(column)
}

// ValidIdentifier reports whether s is safe to use as an unquoted SQL
// identifier fragment: it must match ^[A-Za-z_][A-Za-z0-9_]*$.
func ValidIdentifier(s string) bool { return ragcore.ValidIdentifier(s) }
