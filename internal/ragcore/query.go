package ragcore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// DistanceMetric selects the pgvector distance operator used to rank
// results. Cosine is the default, matching the spec's reference similarity
// definition.
type DistanceMetric int

const (
	DistanceCosine DistanceMetric = iota
	DistanceEuclidean
	DistanceInnerProduct
)

func (d DistanceMetric) operator() string {
	switch d {
	case DistanceEuclidean:
		return "<->"
	case DistanceInnerProduct:
		return "<#>"
	default:
		return "<=>"
	}
}

// Match is one result row from a similarity search: the chunk content, its
// similarity score clamped to [0, 1], and its reconstructed metadata.
type Match struct {
	Content    string
	Similarity float64
	Metadata   map[string]interface{}
	Index      int
}

// QueryOption configures NewQueryService.
type QueryOption func(*queryConfig)

type queryConfig struct {
	logger Logger
	metric DistanceMetric
}

// WithQueryLogger attaches a Logger to the QueryService (defaults to
// GlobalLogger).
func WithQueryLogger(l Logger) QueryOption {
	return func(c *queryConfig) { c.logger = l }
}

// WithDistanceMetric selects the similarity metric (defaults to cosine).
func WithDistanceMetric(m DistanceMetric) QueryOption {
	return func(c *queryConfig) { c.metric = m }
}

// QueryService is the read side: it embeds a question, runs a similarity
// search scoped by context filters, and reconstructs matches. See spec §4.6.
type QueryService struct {
	pool     *pgxpool.Pool
	table    string
	mapping  *ColumnMapping
	embedder Embedder
	logger   Logger
	metric   DistanceMetric
}

// NewQueryService builds a QueryService bound to mapping and backed by
// embedder for turning questions into query vectors.
func NewQueryService(pool *pgxpool.Pool, table string, mapping *ColumnMapping, embedder Embedder, opts ...QueryOption) (*QueryService, error) {
	if !ValidIdentifier(table) {
		return nil, NewConfigurationError("QueryService", fmt.Sprintf("table name %q is not a valid identifier", table))
	}
	if mapping == nil {
		return nil, NewConfigurationError("QueryService", "column mapping must not be nil")
	}
	if embedder == nil {
		return nil, NewConfigurationError("QueryService", "embedder must not be nil")
	}

	cfg := &queryConfig{logger: GlobalLogger, metric: DistanceCosine}
	for _, opt := range opts {
		opt(cfg)
	}

	return &QueryService{pool: pool, table: table, mapping: mapping, embedder: embedder, logger: cfg.logger, metric: cfg.metric}, nil
}

// QueryParams are the caller-supplied parameters of a similarity search.
type QueryParams struct {
	Question  string
	Limit     int
	Threshold float64 // minimum similarity, in [0, 1]; 0 means unfiltered
	Context   map[string]interface{}
}

// Query validates params, embeds the question, and returns the top Limit
// matches scoped by Context's field/value filters, ordered by descending
// similarity.
func (q *QueryService) Query(ctx context.Context, params QueryParams) ([]Match, error) {
	var fieldErrs []FieldError
	if strings.TrimSpace(params.Question) == "" {
		fieldErrs = append(fieldErrs, FieldError{Path: "question", Message: "must not be empty"})
	}
	if params.Limit < 1 || params.Limit > 1000 {
		fieldErrs = append(fieldErrs, FieldError{
			Path: "limit", Message: "must be in [1, 1000]", Received: fmt.Sprintf("%d", params.Limit),
		})
	}
	if params.Threshold < 0 || params.Threshold > 1 {
		fieldErrs = append(fieldErrs, FieldError{
			Path: "threshold", Message: "must be in [0, 1]", Received: fmt.Sprintf("%v", params.Threshold),
		})
	}
	if len(fieldErrs) > 0 {
		return nil, NewValidationError("QueryService.Query", fieldErrs...)
	}

	vectors, err := q.embedder.EmbedBatch(ctx, []string{params.Question})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, NewOperationError(OpInvalidOperation, "embedder returned an unexpected number of vectors")
	}

	sql, args, err := q.buildQuery(vectors[0], params)
	if err != nil {
		return nil, err
	}

	rows, err := q.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, WrapDatabaseError(DBQueryFailed, "QueryService.Query", q.table, "", err)
	}
	defer rows.Close()

	return q.scanMatches(rows)
}

// buildQuery renders the parameterized SELECT for a similarity search and
// the positional arguments bound to its placeholders, in lockstep: every
// $N the SQL text contains has a corresponding entry at args[N-1].
func (q *QueryService) buildQuery(queryVec []float32, params QueryParams) (string, []interface{}, error) {
	selectCols := []string{
		quoteIdentifier(q.mapping.ContentColumn()),
		quoteIdentifier(q.mapping.IndexColumn()),
	}
	for _, f := range q.mapping.Fields() {
		col, _ := q.mapping.Column(f)
		selectCols = append(selectCols, quoteIdentifier(col))
	}

	op := q.metric.operator()
	similarityExpr := fmt.Sprintf("GREATEST(0, LEAST(1, 1 - (%s %s $1)))", quoteIdentifier(q.mapping.EmbeddingColumn()), op)

	var conds []string
	args := []interface{}{pgvector.NewVector(queryVec)}
	argIdx := 2
	for field, value := range params.Context {
		col, ok := q.mapping.Column(field)
		if !ok {
			return "", nil, NewValidationError("QueryService.Query", FieldError{
				Path: field, Message: "is not a declared metadata field",
			})
		}
		conds = append(conds, fmt.Sprintf("%s = $%d", quoteIdentifier(col), argIdx))
		args = append(args, value)
		argIdx++
	}
	if params.Threshold > 0 {
		conds = append(conds, fmt.Sprintf("%s >= $%d", similarityExpr, argIdx))
		args = append(args, params.Threshold)
		argIdx++
	}

	whereClause := ""
	if len(conds) > 0 {
		whereClause = "WHERE " + strings.Join(conds, " AND ")
	}

	sql := fmt.Sprintf(
		`SELECT %s, %s AS similarity FROM %s %s ORDER BY %s %s $1 ASC LIMIT $%d`,
		strings.Join(selectCols, ", "), similarityExpr, quoteIdentifier(q.table), whereClause,
		quoteIdentifier(q.mapping.EmbeddingColumn()), op, argIdx,
	)
	args = append(args, params.Limit)

	return sql, args, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func (q *QueryService) scanMatches(rows rowScanner) ([]Match, error) {
	fields := q.mapping.Fields()
	var matches []Match
	for rows.Next() {
		var content string
		var index int
		var similarity float64
		raw := make([]interface{}, len(fields))
		for i := range raw {
			raw[i] = new(interface{})
		}

		dest := append([]interface{}{&content, &index}, raw...)
		dest = append(dest, &similarity)

		if err := rows.Scan(dest...); err != nil {
			return nil, WrapDatabaseError(DBQueryFailed, "QueryService.Query.scan", q.table, "", err)
		}

		metadata := make(map[string]interface{}, len(fields))
		for i, f := range fields {
			metadata[f] = *(raw[i].(*interface{}))
		}

		if similarity < 0 {
			similarity = 0
		}
		if similarity > 1 {
			similarity = 1
		}

		matches = append(matches, Match{Content: content, Index: index, Similarity: similarity, Metadata: metadata})
	}
	if err := rows.Err(); err != nil {
		return nil, WrapDatabaseError(DBQueryFailed, "QueryService.Query.rows", q.table, "", err)
	}
	return matches, nil
}
