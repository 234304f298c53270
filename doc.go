// Package ragline is a retrieval-augmented-generation data plane: it
// ingests documents into a vector-indexed Postgres/pgvector table and
// answers semantic queries by embedding similarity search, filtered by
// caller-supplied context. It does not load documents, generate answers
// from an LLM, or expose an HTTP/CLI surface — those are left to callers.
//
// The package is a thin façade over internal/ragcore, which holds the
// actual implementation. Construct a ColumnMapping, a Chunker, an
// Embedder, a Store, and a QueryService, then wire a Pipeline over them
// to ingest documents.
package ragline

import "github.com/ragline/ragline/internal/ragcore"

// NewDocumentKey generates a random documentKey for callers that don't
// derive one from their own source system.
func NewDocumentKey() string { return ragcore.NewDocumentKey() }
