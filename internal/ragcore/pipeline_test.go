package ragcore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	inserts map[string][]EmbeddedChunk
	failFor map[string]int // documentKey -> number of times to fail before succeeding
}

func newFakeStore() *fakeStore {
	return &fakeStore{inserts: map[string][]EmbeddedChunk{}, failFor: map[string]int{}}
}

func (s *fakeStore) Insert(ctx context.Context, metadata map[string]interface{}, chunks []EmbeddedChunk) error {
	documentKey, _ := metadata["documentId"].(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.failFor[documentKey]; n > 0 {
		s.failFor[documentKey] = n - 1
		return WrapDatabaseError(DBQueryFailed, "fakeStore.Insert", "chunks", documentKey, nil)
	}
	s.inserts[documentKey] = chunks
	return nil
}

type sliceSource struct {
	docs []Document
	pos  int
	err  error
}

func (s *sliceSource) Next(ctx context.Context) (*Document, bool, error) {
	if s.pos >= len(s.docs) {
		if s.err != nil {
			return nil, false, s.err
		}
		return nil, false, nil
	}
	d := s.docs[s.pos]
	s.pos++
	return &d, true, nil
}

func newTestChunker(t *testing.T) *Chunker {
	c, err := NewChunker(WithMaxLines(5), WithOverlapLines(1))
	require.NoError(t, err)
	return c
}

func TestPipeline_RunSequential_WritesAllDocuments(t *testing.T) {
	chunker := newTestChunker(t)
	embedder := &fakeEmbedder{dim: 4}
	store := newFakeStore()

	p, err := NewPipeline(chunker, embedder, store)
	require.NoError(t, err)

	source := &sliceSource{docs: []Document{
		{Key: "doc-1", Text: makeLines(12), Metadata: map[string]interface{}{"documentId": "doc-1", "tenantId": "t1"}},
		{Key: "doc-2", Text: makeLines(8), Metadata: map[string]interface{}{"documentId": "doc-2", "tenantId": "t1"}},
	}}

	result, err := p.Run(context.Background(), source)
	require.NoError(t, err)
	require.Equal(t, 2, result.DocumentsProcessed)
	require.Empty(t, result.Errors)
	require.Len(t, store.inserts, 2)
	require.Greater(t, result.ChunksWritten, 0)
}

func TestPipeline_IsolatesPerDocumentFailures(t *testing.T) {
	chunker := newTestChunker(t)
	embedder := &fakeEmbedder{dim: 4}
	store := newFakeStore()
	store.failFor["doc-bad"] = 99 // always fails: exceeds retry budget

	var errs []DocumentError
	p, err := NewPipeline(chunker, embedder, store,
		WithMaxRetries(1),
		WithRetryDelay(time.Millisecond),
		WithErrorCallback(func(e DocumentError) { errs = append(errs, e) }),
	)
	require.NoError(t, err)

	source := &sliceSource{docs: []Document{
		{Key: "doc-bad", Text: makeLines(6), Metadata: map[string]interface{}{"documentId": "doc-bad"}},
		{Key: "doc-good", Text: makeLines(6), Metadata: map[string]interface{}{"documentId": "doc-good"}},
	}}

	result, err := p.Run(context.Background(), source)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	require.Equal(t, "doc-bad", result.Errors[0].DocumentKey)
	require.Len(t, errs, 1)
	require.Contains(t, store.inserts, "doc-good")
	require.NotContains(t, store.inserts, "doc-bad")
}

func TestPipeline_SourceErrorTerminatesRun(t *testing.T) {
	chunker := newTestChunker(t)
	embedder := &fakeEmbedder{dim: 4}
	store := newFakeStore()

	p, err := NewPipeline(chunker, embedder, store)
	require.NoError(t, err)

	sourceErr := NewOperationError(OpInvalidOperation, "source exploded")
	source := &sliceSource{docs: []Document{{Key: "doc-1", Text: makeLines(6), Metadata: map[string]interface{}{"documentId": "doc-1"}}}, err: sourceErr}

	_, err = p.Run(context.Background(), source)
	require.Error(t, err)
}

func TestPipeline_Cancellation(t *testing.T) {
	chunker := newTestChunker(t)
	embedder := &fakeEmbedder{dim: 4}
	store := newFakeStore()

	p, err := NewPipeline(chunker, embedder, store)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &sliceSource{docs: []Document{{Key: "doc-1", Text: makeLines(6), Metadata: map[string]interface{}{"documentId": "doc-1"}}}}
	_, err = p.Run(ctx, source)
	require.Error(t, err)
}

func TestPipeline_ConcurrentRunWritesAllDocuments(t *testing.T) {
	chunker := newTestChunker(t)
	embedder := &fakeEmbedder{dim: 4}
	store := newFakeStore()

	p, err := NewPipeline(chunker, embedder, store, WithConcurrency(4))
	require.NoError(t, err)

	docs := make([]Document, 10)
	for i := range docs {
		key := "doc-" + string(rune('a'+i))
		docs[i] = Document{Key: key, Text: makeLines(6), Metadata: map[string]interface{}{"documentId": key}}
	}
	source := &sliceSource{docs: docs}

	result, err := p.Run(context.Background(), source)
	require.NoError(t, err)
	require.Equal(t, 10, result.DocumentsProcessed)
	require.Len(t, store.inserts, 10)
}

func TestNewPipeline_RejectsNilCollaborators(t *testing.T) {
	chunker := newTestChunker(t)
	embedder := &fakeEmbedder{dim: 4}
	store := newFakeStore()

	_, err := NewPipeline(nil, embedder, store)
	require.Error(t, err)

	_, err = NewPipeline(chunker, nil, store)
	require.Error(t, err)

	_, err = NewPipeline(chunker, embedder, nil)
	require.Error(t, err)
}
