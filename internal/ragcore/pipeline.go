package ragcore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Document is one unit of ingestion: a document key, its raw text, and the
// caller's metadata record for it.
type Document struct {
	Key      string
	Text     string
	Metadata map[string]interface{}
}

// DocumentSource streams Documents to the pipeline. Next returns
// (nil, io.EOF)-equivalent termination by returning ok=false with a nil
// error when the source is exhausted; any non-nil error terminates the run.
type DocumentSource interface {
	Next(ctx context.Context) (doc *Document, ok bool, err error)
}

// DocumentError records a single document's ingestion failure without
// aborting the run.
type DocumentError struct {
	DocumentKey string
	Err         error
}

// IngestResult summarizes one Pipeline.Run invocation.
type IngestResult struct {
	DocumentsProcessed int
	ChunksWritten       int
	Errors              []DocumentError
	Duration            time.Duration
}

// PipelineOption configures NewPipeline.
type PipelineOption func(*pipelineConfig)

type pipelineConfig struct {
	batchSize      int
	maxRetries     int
	retryDelay     time.Duration
	concurrency    int
	onProgress     func(processed, total int)
	onError        func(DocumentError)
	metadataTransform func(Document) (map[string]interface{}, error)
	logger         Logger
}

// WithBatchSize sets how many chunks are embedded per EmbedBatch call
// (default 32).
func WithBatchSize(n int) PipelineOption {
	return func(c *pipelineConfig) { c.batchSize = n }
}

// WithMaxRetries sets how many times a failed document is retried before
// being recorded as an error (default 3).
func WithMaxRetries(n int) PipelineOption {
	return func(c *pipelineConfig) { c.maxRetries = n }
}

// WithRetryDelay sets the initial retry backoff, doubled on each subsequent
// attempt (default 500ms).
func WithRetryDelay(d time.Duration) PipelineOption {
	return func(c *pipelineConfig) { c.retryDelay = d }
}

// WithConcurrency sets how many documents may be processed in parallel
// (default 1, sequential).
func WithConcurrency(n int) PipelineOption {
	return func(c *pipelineConfig) { c.concurrency = n }
}

// WithProgressCallback registers a callback invoked after each document is
// processed (successfully or not), with the running processed count and a
// total that is always 0, since a DocumentSource does not report its size.
func WithProgressCallback(fn func(processed, total int)) PipelineOption {
	return func(c *pipelineConfig) { c.onProgress = fn }
}

// WithErrorCallback registers a callback invoked once for each document
// whose ingestion finally fails: after exhausting its retries, or at once on
// a non-retriable error.
func WithErrorCallback(fn func(DocumentError)) PipelineOption {
	return func(c *pipelineConfig) { c.onError = fn }
}

// WithMetadataTransform registers a function run once per document to
// derive or augment its metadata prior to storage.
func WithMetadataTransform(fn func(Document) (map[string]interface{}, error)) PipelineOption {
	return func(c *pipelineConfig) { c.metadataTransform = fn }
}

// WithPipelineLogger attaches a Logger to the Pipeline (defaults to
// GlobalLogger).
func WithPipelineLogger(l Logger) PipelineOption {
	return func(c *pipelineConfig) { c.logger = l }
}

// Pipeline orchestrates streaming ingestion: chunk, batch-embed, and store
// each document, isolating per-document failures so one bad document never
// aborts the run. See spec §4.7.
type Pipeline struct {
	chunker  *Chunker
	embedder Embedder
	store    ChunkStore

	batchSize         int
	maxRetries        int
	retryDelay        time.Duration
	concurrency       int
	onProgress        func(processed, total int)
	onError           func(DocumentError)
	metadataTransform func(Document) (map[string]interface{}, error)
	logger            Logger
}

// ChunkStore is the narrow view of Store that the pipeline depends on,
// allowing tests to supply a fake store instead of a live database.
type ChunkStore interface {
	Insert(ctx context.Context, metadata map[string]interface{}, chunks []EmbeddedChunk) error
}

// NewPipeline builds a Pipeline from its three collaborators: the chunker,
// the embedder, and the store.
func NewPipeline(chunker *Chunker, embedder Embedder, store ChunkStore, opts ...PipelineOption) (*Pipeline, error) {
	if chunker == nil {
		return nil, NewConfigurationError("Pipeline", "chunker must not be nil")
	}
	if embedder == nil {
		return nil, NewConfigurationError("Pipeline", "embedder must not be nil")
	}
	if store == nil {
		return nil, NewConfigurationError("Pipeline", "store must not be nil")
	}

	cfg := &pipelineConfig{
		batchSize:  32,
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
		concurrency: 1,
		logger:     GlobalLogger,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.batchSize <= 0 {
		return nil, NewConfigurationError("Pipeline", "batchSize must be greater than zero")
	}
	if cfg.concurrency <= 0 {
		return nil, NewConfigurationError("Pipeline", "concurrency must be greater than zero")
	}

	return &Pipeline{
		chunker:           chunker,
		embedder:          embedder,
		store:             store,
		batchSize:         cfg.batchSize,
		maxRetries:        cfg.maxRetries,
		retryDelay:        cfg.retryDelay,
		concurrency:       cfg.concurrency,
		onProgress:        cfg.onProgress,
		onError:           cfg.onError,
		metadataTransform: cfg.metadataTransform,
		logger:            cfg.logger,
	}, nil
}

// Run drains source, ingesting each document until the source is exhausted
// or ctx is cancelled. Per-document failures (after exhausting retries) are
// isolated into the returned IngestResult.Errors; only a source iteration
// error terminates the run early.
func (p *Pipeline) Run(ctx context.Context, source DocumentSource) (*IngestResult, error) {
	start := time.Now()
	result := &IngestResult{}

	if p.concurrency == 1 {
		if err := p.runSequential(ctx, source, result); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}
		result.Duration = time.Since(start)
		return result, nil
	}

	if err := p.runConcurrent(ctx, source, result); err != nil {
		result.Duration = time.Since(start)
		return result, err
	}
	result.Duration = time.Since(start)
	return result, nil
}

func (p *Pipeline) runSequential(ctx context.Context, source DocumentSource, result *IngestResult) error {
	processed := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		doc, ok, err := source.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		chunksWritten, ingestErr := p.ingestWithRetry(ctx, *doc)
		processed++
		result.DocumentsProcessed++
		result.ChunksWritten += chunksWritten
		if ingestErr != nil {
			docErr := DocumentError{DocumentKey: doc.Key, Err: ingestErr}
			result.Errors = append(result.Errors, docErr)
			if p.onError != nil {
				p.onError(docErr)
			}
		}
		if p.onProgress != nil {
			p.onProgress(processed, 0)
		}
	}
}

// runConcurrent fans documents out across at most p.concurrency in-flight
// ingestions using an errgroup.Group with SetLimit as the bound, mirroring
// the pack's own fan-out-with-a-cap idiom rather than hand-rolling a
// semaphore channel.
func (p *Pipeline) runConcurrent(ctx context.Context, source DocumentSource, result *IngestResult) error {
	var mu sync.Mutex
	var processed int64

	g := &errgroup.Group{}
	g.SetLimit(p.concurrency)

	var firstErr error
	for {
		if ctx.Err() != nil {
			break
		}
		doc, ok, err := source.Next(ctx)
		if err != nil {
			firstErr = err
			break
		}
		if !ok {
			break
		}

		d := *doc
		g.Go(func() error {
			chunksWritten, ingestErr := p.ingestWithRetry(ctx, d)
			n := atomic.AddInt64(&processed, 1)

			mu.Lock()
			result.DocumentsProcessed++
			result.ChunksWritten += chunksWritten
			if ingestErr != nil {
				docErr := DocumentError{DocumentKey: d.Key, Err: ingestErr}
				result.Errors = append(result.Errors, docErr)
				if p.onError != nil {
					p.onError(docErr)
				}
			}
			mu.Unlock()

			if p.onProgress != nil {
				p.onProgress(int(n), 0)
			}
			return nil
		})
	}

	g.Wait()
	return firstErr
}

// ingestWithRetry chunks, embeds, and stores one document, retrying the
// whole operation with doubling backoff up to maxRetries times when the
// underlying failure is retriable.
func (p *Pipeline) ingestWithRetry(ctx context.Context, doc Document) (int, error) {
	delay := p.retryDelay
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		written, err := p.ingestOnce(ctx, doc)
		if err == nil {
			return written, nil
		}
		lastErr = err
		if !isRetriable(err) {
			return 0, err
		}
	}
	return 0, lastErr
}

func (p *Pipeline) ingestOnce(ctx context.Context, doc Document) (int, error) {
	metadata := doc.Metadata
	if p.metadataTransform != nil {
		transformed, err := p.metadataTransform(doc)
		if err != nil {
			return 0, err
		}
		metadata = transformed
	}

	chunks := p.chunker.Split(doc.Text)
	if len(chunks) == 0 {
		return 0, p.store.Insert(ctx, metadata, nil)
	}

	embedded := make([]EmbeddedChunk, 0, len(chunks))
	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, err
		}
		if len(vectors) != len(batch) {
			return 0, NewOperationError(OpInvalidOperation, "embedder returned a different number of vectors than texts submitted")
		}

		for i, c := range batch {
			embedded = append(embedded, EmbeddedChunk{Chunk: c, Embedding: vectors[i]})
		}
	}

	// The embedder has already completed by the time Insert runs: no
	// embedding call happens inside the store's transaction.
	if err := p.store.Insert(ctx, metadata, embedded); err != nil {
		return 0, err
	}
	return len(embedded), nil
}

func isRetriable(err error) bool {
	switch e := err.(type) {
	case *DatabaseError:
		return e.Retriable()
	case *APIError:
		return e.Retriable()
	case *ValidationError, *ConfigurationError, *OperationError:
		return false
	default:
		return false
	}
}
