package ragcore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	dim int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, f.dim)
		for j := range v {
			v[j] = 0.1
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int { return f.dim }

func TestDistanceMetric_Operator(t *testing.T) {
	require.Equal(t, "<=>", DistanceCosine.operator())
	require.Equal(t, "<->", DistanceEuclidean.operator())
	require.Equal(t, "<#>", DistanceInnerProduct.operator())
}

func TestNewQueryService_RejectsInvalidTableName(t *testing.T) {
	mapping, err := NewColumnMapping(simpleDescriptor())
	require.NoError(t, err)

	_, err = NewQueryService(nil, "bad-table-name", mapping, &fakeEmbedder{dim: 4})
	require.Error(t, err)
}

func TestNewQueryService_RejectsNilEmbedder(t *testing.T) {
	mapping, err := NewColumnMapping(simpleDescriptor())
	require.NoError(t, err)

	_, err = NewQueryService(nil, "documents", mapping, nil)
	require.Error(t, err)
}

func TestQueryService_ValidatesParamsBeforeTouchingPool(t *testing.T) {
	mapping, err := NewColumnMapping(simpleDescriptor())
	require.NoError(t, err)

	svc, err := NewQueryService(nil, "documents", mapping, &fakeEmbedder{dim: 4})
	require.NoError(t, err)

	_, err = svc.Query(context.Background(), QueryParams{Question: "", Limit: 5})
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.Query(context.Background(), QueryParams{Question: "hello", Limit: 0})
	require.Error(t, err)

	_, err = svc.Query(context.Background(), QueryParams{Question: "hello", Limit: 5, Threshold: 1.5})
	require.Error(t, err)

	_, err = svc.Query(context.Background(), QueryParams{Question: "hello", Limit: 5, Threshold: -0.1})
	require.Error(t, err)
}

func TestQueryService_BuildQuery_BindsEveryPlaceholder(t *testing.T) {
	mapping, err := NewColumnMapping(simpleDescriptor())
	require.NoError(t, err)

	svc, err := NewQueryService(nil, "documents", mapping, &fakeEmbedder{dim: 4})
	require.NoError(t, err)

	sql, args, err := svc.buildQuery([]float32{0.1, 0.2, 0.3}, QueryParams{
		Question:  "what is it",
		Limit:     5,
		Threshold: 0.75,
		Context:   map[string]interface{}{"tenantId": "acme"},
	})
	require.NoError(t, err)

	// $1 query vector, $2 tenantId filter, $3 threshold, $4 limit: the SQL's
	// highest placeholder number must match len(args), or pool.Query will
	// reject the call with a parameter-count mismatch.
	require.Contains(t, sql, "$4")
	require.NotContains(t, sql, "$5")
	require.Len(t, args, 4)
	require.Equal(t, "acme", args[1])
	require.Equal(t, 0.75, args[2])
	require.Equal(t, 5, args[3])
}

func TestQueryService_BuildQuery_RejectsUndeclaredContextField(t *testing.T) {
	mapping, err := NewColumnMapping(simpleDescriptor())
	require.NoError(t, err)

	svc, err := NewQueryService(nil, "documents", mapping, &fakeEmbedder{dim: 4})
	require.NoError(t, err)

	_, _, err = svc.buildQuery([]float32{0.1, 0.2, 0.3}, QueryParams{
		Question: "what is it",
		Limit:    5,
		Context:  map[string]interface{}{"notAField": "x"},
	})
	require.Error(t, err)
}

type fakeRow struct {
	content    string
	index      int
	docID      string
	tenant     string
	pages      int
	similarity float64
}

type fakeRowScanner struct {
	rows []fakeRow
	pos  int
}

func (f *fakeRowScanner) Next() bool {
	if f.pos >= len(f.rows) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeRowScanner) Scan(dest ...interface{}) error {
	row := f.rows[f.pos-1]
	*(dest[0].(*string)) = row.content
	*(dest[1].(*int)) = row.index
	*(dest[2].(*interface{})) = row.docID
	*(dest[3].(*interface{})) = row.tenant
	*(dest[4].(*interface{})) = row.pages
	*(dest[5].(*float64)) = row.similarity
	return nil
}

func (f *fakeRowScanner) Err() error { return nil }

func TestQueryService_ScanMatches_ClampsSimilarity(t *testing.T) {
	mapping, err := NewColumnMapping(simpleDescriptor())
	require.NoError(t, err)

	svc, err := NewQueryService(nil, "documents", mapping, &fakeEmbedder{dim: 4})
	require.NoError(t, err)

	scanner := &fakeRowScanner{rows: []fakeRow{
		{content: "a", index: 0, docID: "d1", tenant: "t1", pages: 3, similarity: 1.4},
		{content: "b", index: 1, docID: "d2", tenant: "t1", pages: 2, similarity: -0.2},
		{content: "c", index: 2, docID: "d3", tenant: "t1", pages: 1, similarity: 0.5},
	}}

	matches, err := svc.scanMatches(scanner)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	require.Equal(t, 1.0, matches[0].Similarity)
	require.Equal(t, 0.0, matches[1].Similarity)
	require.Equal(t, 0.5, matches[2].Similarity)
	require.Equal(t, "d1", matches[0].Metadata["documentId"])
}
