package ragline

import (
	"time"

	"github.com/ragline/ragline/internal/ragcore"
)

// Document is one unit of ingestion: a document key, its raw text, and the
// caller's metadata record for it.
type Document = ragcore.Document

// DocumentSource streams Documents to the pipeline.
type DocumentSource = ragcore.DocumentSource

// DocumentError records a single document's ingestion failure without
// aborting the run.
type DocumentError = ragcore.DocumentError

// IngestResult summarizes one Pipeline.Run invocation.
type IngestResult = ragcore.IngestResult

// PipelineOption configures NewPipeline.
type PipelineOption = ragcore.PipelineOption

// WithBatchSize sets how many chunks are embedded per EmbedBatch call.
func WithBatchSize(n int) PipelineOption { return ragcore.WithBatchSize(n) }

// WithIngestMaxRetries sets how many times a failed document is retried
// before being recorded as an error.
func WithIngestMaxRetries(n int) PipelineOption { return ragcore.WithMaxRetries(n) }

// WithRetryDelay sets the initial retry backoff, doubled on each
// subsequent attempt.
func WithRetryDelay(d time.Duration) PipelineOption { return ragcore.WithRetryDelay(d) }

// WithConcurrency sets how many documents may be processed in parallel.
func WithConcurrency(n int) PipelineOption { return ragcore.WithConcurrency(n) }

// WithProgressCallback registers a callback invoked after each document is
// processed.
func WithProgressCallback(fn func(processed, total int)) PipelineOption {
	return ragcore.WithProgressCallback(fn)
}

// WithErrorCallback registers a callback invoked once for each document
// whose ingestion finally fails: after exhausting its retries, or at once on
// a non-retriable error.
func WithErrorCallback(fn func(DocumentError)) PipelineOption {
	return ragcore.WithErrorCallback(fn)
}

// WithMetadataTransform registers a function run once per document to
// derive or augment its metadata prior to storage.
func WithMetadataTransform(fn func(Document) (map[string]interface{}, error)) PipelineOption {
	return ragcore.WithMetadataTransform(fn)
}

// WithPipelineLogger attaches a Logger to the Pipeline.
func WithPipelineLogger(l Logger) PipelineOption { return ragcore.WithPipelineLogger(l) }

// Pipeline orchestrates streaming ingestion: chunk, batch-embed, and store
// each document, isolating per-document failures so one bad document never
// aborts the run.
type Pipeline = ragcore.Pipeline

// ChunkStore is the narrow view of Store that the pipeline depends on,
// allowing tests to supply a fake store instead of a live database.
type ChunkStore = ragcore.ChunkStore

// NewPipeline builds a Pipeline from its three collaborators: the chunker,
// the embedder, and the store.
func NewPipeline(chunker *Chunker, embedder Embedder, store ChunkStore, opts ...PipelineOption) (*Pipeline, error) {
	return ragcore.NewPipeline(chunker, embedder, store, opts...)
}
