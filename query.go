package ragline

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ragline/ragline/internal/ragcore"
)

// DistanceMetric selects the pgvector distance operator used to rank
// results. Cosine is the default.
type DistanceMetric = ragcore.DistanceMetric

const (
	DistanceCosine       = ragcore.DistanceCosine
	DistanceEuclidean    = ragcore.DistanceEuclidean
	DistanceInnerProduct = ragcore.DistanceInnerProduct
)

// Match is one result row from a similarity search.
type Match = ragcore.Match

// QueryOption configures NewQueryService.
type QueryOption = ragcore.QueryOption

// WithQueryLogger attaches a Logger to the QueryService.
func WithQueryLogger(l Logger) QueryOption { return ragcore.WithQueryLogger(l) }

// WithDistanceMetric selects the similarity metric.
func WithDistanceMetric(m DistanceMetric) QueryOption { return ragcore.WithDistanceMetric(m) }

// QueryParams are the caller-supplied parameters of a similarity search.
type QueryParams = ragcore.QueryParams

// QueryService is the read side: it embeds a question, runs a similarity
// search scoped by context filters, and reconstructs matches.
type QueryService = ragcore.QueryService

// NewQueryService builds a QueryService bound to mapping and backed by
// embedder for turning questions into query vectors.
func NewQueryService(pool *pgxpool.Pool, table string, mapping *ColumnMapping, embedder Embedder, opts ...QueryOption) (*QueryService, error) {
	return ragcore.NewQueryService(pool, table, mapping, embedder, opts...)
}
