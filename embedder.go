// Package ragline provides a high-level interface for turning text into
// vector embeddings in a RAG (retrieval-augmented generation) data plane.
package ragline

import (
	"github.com/ragline/ragline/internal/ragcore"
	"github.com/ragline/ragline/internal/ragcore/providers"
)

// Embedder turns text into dense vectors. Implementations are responsible
// for their own retry-with-backoff and rate limiting; callers only call
// Embed/EmbedBatch and interpret the returned *APIError taxonomy.
type Embedder = ragcore.Embedder

// EmbeddedChunk is a chunk paired with its embedding vector. Document
// metadata is not carried per chunk; it is passed to Insert alongside the
// chunk slice.
type EmbeddedChunk = ragcore.EmbeddedChunk

// NewProviderEmbedder builds an Embedder by looking up name in the
// provider registry and invoking its factory with config. Built-in
// adapters (currently "openai") register themselves at import time.
func NewProviderEmbedder(name string, config map[string]interface{}) (Embedder, error) {
	return providers.New(name, config)
}

// OpenAIEmbedder is the reference Embedder adapter described in the spec:
// a plain HTTPS POST with bearer-token auth, internal retry with backoff,
// and rate limiting. Callers may supply any Embedder in its place.
type OpenAIEmbedder = providers.OpenAIEmbedder

// OpenAIOption configures NewOpenAIEmbedder.
type OpenAIOption = providers.OpenAIOption

// NewOpenAIEmbedder builds the reference embedder adapter for the given
// model, authenticated with apiKey.
func NewOpenAIEmbedder(apiKey, model string, opts ...OpenAIOption) (*OpenAIEmbedder, error) {
	return providers.NewOpenAIEmbedder(apiKey, model, opts...)
}

// WithMaxRetries overrides the OpenAIEmbedder's retry cap.
func WithMaxRetries(n int) OpenAIOption { return providers.WithMaxRetries(n) }

// WithRateLimit overrides the OpenAIEmbedder's requests-per-second ceiling.
func WithRateLimit(rps float64, burst int) OpenAIOption { return providers.WithRateLimit(rps, burst) }

// WithBaseURL overrides the OpenAIEmbedder's embeddings endpoint, for
// pointing the adapter at a test double.
func WithBaseURL(url string) OpenAIOption { return providers.WithBaseURL(url) }
