package ragcore

import "context"

// Embedder turns text into dense vectors. Implementations are responsible
// for their own retry-with-backoff and rate limiting; the pipeline and
// query service only call Embed/EmbedBatch and interpret the returned
// *APIError taxonomy. See spec §4.3.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one embedding vector per input text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension reports the fixed length of vectors this Embedder produces.
	Dimension() int
}
