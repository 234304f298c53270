// Package ragline provides a high-level interface for line-based text
// chunking and token estimation, designed for ingesting documents into a
// vector-indexed Postgres/pgvector table.
package ragline

import (
	"github.com/ragline/ragline/internal/ragcore"
)

// Chunk is one window of a source document: its text, its dense position
// in the document's chunk sequence, and the line range it was drawn from.
type Chunk = ragcore.Chunk

// ChunkerOption configures NewChunker.
type ChunkerOption = ragcore.ChunkerOption

// Chunker splits a document's text into overlapping, line-bounded windows,
// subdividing any window that exceeds the configured character cap.
type Chunker = ragcore.Chunker

// NewChunker creates a new Chunker with the given options. By default, it
// creates a Chunker with:
//   - 150 lines per window
//   - 30 lines of overlap between windows
//   - a 10000-character subdivision cap
//
// Use the provided option functions to customize these settings.
func NewChunker(options ...ChunkerOption) (*Chunker, error) {
	return ragcore.NewChunker(options...)
}

// WithMaxLines sets the window size, in lines, of each chunk.
func WithMaxLines(n int) ChunkerOption { return ragcore.WithMaxLines(n) }

// WithOverlapLines sets how many trailing lines of a window are repeated
// at the start of the next window.
func WithOverlapLines(n int) ChunkerOption { return ragcore.WithOverlapLines(n) }

// WithMaxChunkSize caps the character length of any single chunk;
// oversized windows are subdivided at a whitespace or punctuation boundary.
func WithMaxChunkSize(n int) ChunkerOption { return ragcore.WithMaxChunkSize(n) }

// WithTokenEstimator attaches an optional diagnostic token counter to the
// chunker, used only for progress reporting and logging, never for chunk
// boundary decisions.
func WithTokenEstimator(e *TokenEstimator) ChunkerOption {
	return ragcore.WithTokenEstimator(e)
}

// TokenEstimator is an optional diagnostic wrapper around tiktoken-go,
// reporting token counts for progress and logging purposes only.
type TokenEstimator = ragcore.TokenEstimator

// NewTokenEstimator builds a TokenEstimator for the given model name (e.g.
// "gpt-4", "text-embedding-3-small").
func NewTokenEstimator(model string) (*TokenEstimator, error) {
	return ragcore.NewTokenEstimator(model)
}
