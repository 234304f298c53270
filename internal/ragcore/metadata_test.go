package ragcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func simpleDescriptor() MetadataDescriptor {
	return MetadataDescriptor{
		Fields: []FieldSpec{
			{Name: "documentId", Kind: FieldString, Required: true},
			{Name: "tenantId", Kind: FieldString, Required: true},
			{Name: "pageCount", Kind: FieldInt},
		},
		DocumentKey: "documentId",
		SourceKeys:  []string{"tenantId"},
	}
}

func TestNewColumnMapping_DefaultSnakeCase(t *testing.T) {
	m, err := NewColumnMapping(simpleDescriptor())
	require.NoError(t, err)

	col, ok := m.Column("documentId")
	require.True(t, ok)
	require.Equal(t, "document_id", col)

	col, ok = m.Column("tenantId")
	require.True(t, ok)
	require.Equal(t, "tenant_id", col)

	require.Equal(t, "chunk_content", m.ContentColumn())
	require.Equal(t, "chunk_index", m.IndexColumn())
	require.Equal(t, "embedding", m.EmbeddingColumn())
}

func TestNewColumnMapping_ColumnOverride(t *testing.T) {
	m, err := NewColumnMapping(simpleDescriptor(), WithColumnOverride("documentId", "doc_id"))
	require.NoError(t, err)

	col, _ := m.Column("documentId")
	require.Equal(t, "doc_id", col)
}

func TestNewColumnMapping_RejectsReservedFieldName(t *testing.T) {
	d := simpleDescriptor()
	d.Fields = append(d.Fields, FieldSpec{Name: "type", Kind: FieldString})

	_, err := NewColumnMapping(d)
	require.Error(t, err)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewColumnMapping_RejectsUnknownDocumentKey(t *testing.T) {
	d := simpleDescriptor()
	d.DocumentKey = "doesNotExist"

	_, err := NewColumnMapping(d)
	require.Error(t, err)
}

func TestNewColumnMapping_RejectsInvalidIdentifier(t *testing.T) {
	d := simpleDescriptor()
	d.Fields = append(d.Fields, FieldSpec{Name: "bad-name", Kind: FieldString})

	_, err := NewColumnMapping(d)
	require.Error(t, err)
}

func TestColumnMapping_ValidateMetadata(t *testing.T) {
	m, err := NewColumnMapping(simpleDescriptor())
	require.NoError(t, err)

	err = m.ValidateMetadata(map[string]interface{}{
		"documentId": "doc-1",
		"tenantId":   "tenant-a",
		"pageCount":  3,
	})
	require.NoError(t, err)

	err = m.ValidateMetadata(map[string]interface{}{
		"documentId": "doc-1",
		"tenantId":   "tenant-a",
		"unknown":    "oops",
	})
	require.Error(t, err)

	err = m.ValidateMetadata(map[string]interface{}{
		"documentId": "doc-1",
	})
	require.Error(t, err)

	err = m.ValidateMetadata(map[string]interface{}{
		"documentId": "doc-1",
		"tenantId":   "tenant-a",
		"pageCount":  "not-an-int",
	})
	require.Error(t, err)
}

func TestCamelToSnake(t *testing.T) {
	cases := map[string]string{
		"documentId":          "document_id",
		"repositoryIndexDbId": "repository_index_db_id",
		"id":                  "id",
		"HTMLParser":          "html_parser",
		"simple":              "simple",
	}
	for in, want := range cases {
		if got := camelToSnake(in); got != want {
			t.Errorf("camelToSnake(%q) = %q, want %q", in, got, want)
		}
	}
}
