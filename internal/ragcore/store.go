package ragcore

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// StoreOption configures NewStore.
type StoreOption func(*storeConfig)

type storeConfig struct {
	logger Logger
}

// WithStoreLogger attaches a Logger to the Store (defaults to GlobalLogger).
func WithStoreLogger(l Logger) StoreOption {
	return func(c *storeConfig) { c.logger = l }
}

// Store is the write side of the chunk table: it replaces a document's
// chunks transactionally, per spec §4.5. A Store exclusively owns its
// configured static source scope and column mapping, both immutable after
// construction (spec §6, "A store instance exclusively owns its configured
// static scope and column mapping").
type Store struct {
	pool        *pgxpool.Pool
	table       string
	mapping     *ColumnMapping
	scopeValues []interface{} // aligned with mapping.SourceKeyFields()
	logger      Logger
}

// NewStore validates the target table identifier and builds a Store bound
// to mapping and to a constructor-time static source scope: the values of
// every sourceKeys field that this Store instance is confined to. staticScope
// must carry a value for each of mapping's declared sourceKeys fields.
func NewStore(pool *pgxpool.Pool, table string, mapping *ColumnMapping, staticScope map[string]interface{}, opts ...StoreOption) (*Store, error) {
	if !ValidIdentifier(table) {
		return nil, NewConfigurationError("Store", fmt.Sprintf("table name %q is not a valid identifier", table))
	}
	if mapping == nil {
		return nil, NewConfigurationError("Store", "column mapping must not be nil")
	}

	sourceFields := mapping.SourceKeyFields()
	scopeValues := make([]interface{}, len(sourceFields))
	for i, f := range sourceFields {
		v, ok := staticScope[f]
		if !ok {
			return nil, NewConfigurationError("Store", fmt.Sprintf("static scope missing sourceKey %q", f))
		}
		scopeValues[i] = v
	}

	cfg := &storeConfig{logger: GlobalLogger}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Store{pool: pool, table: table, mapping: mapping, scopeValues: scopeValues, logger: cfg.logger}, nil
}

// EmbeddedChunk is a chunk paired with its embedding vector. Document-level
// metadata travels alongside the chunk slice as Insert's own argument, not
// per chunk: every chunk of one Insert call shares the same document. The
// embedder has already run by the time an EmbeddedChunk reaches the Store:
// Insert never calls the embedder.
type EmbeddedChunk struct {
	Chunk     Chunk
	Embedding []float32
}

// scopeConds renders the store's static sourceKeys scope as a conjunction of
// equality conditions, with placeholders numbered starting at startIdx.
func (s *Store) scopeConds(startIdx int) ([]string, []interface{}) {
	fields := s.mapping.SourceKeyFields()
	conds := make([]string, len(fields))
	for i, f := range fields {
		col, _ := s.mapping.Column(f)
		conds[i] = fmt.Sprintf("%s = $%d", quoteIdentifier(col), startIdx+i)
	}
	args := make([]interface{}, len(s.scopeValues))
	copy(args, s.scopeValues)
	return conds, args
}

// Insert validates metadata against the column mapping's declared schema
// (the loader-output trust boundary, spec §4.1/§4.5 step 1), then replaces
// every chunk previously stored under the same (staticScope, documentKey)
// with the given chunks, inside a single transaction: the delete and the
// inserts either all happen or none do.
func (s *Store) Insert(ctx context.Context, metadata map[string]interface{}, chunks []EmbeddedChunk) error {
	if err := s.mapping.ValidateMetadata(metadata); err != nil {
		return err
	}
	documentKey, _ := metadata[s.mapping.DocumentKeyField()].(string)
	if documentKey == "" {
		return NewValidationError("Store.Insert", FieldError{
			Path: "documentKey", Message: "must not be empty",
		})
	}

	dim := -1
	for _, c := range chunks {
		if dim == -1 {
			dim = len(c.Embedding)
		}
		if err := validateEmbedding(c.Embedding, dim); err != nil {
			return err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return WrapDatabaseError(DBConnectionFailed, "Store.Insert", s.table, documentKey, err)
	}
	defer tx.Rollback(ctx)

	scopeConds, scopeArgs := s.scopeConds(2)
	deleteConds := append([]string{fmt.Sprintf("%s = $1", quoteIdentifier(s.mapping.DocumentKeyColumn()))}, scopeConds...)
	deleteSQL := fmt.Sprintf(`DELETE FROM %s WHERE %s`, quoteIdentifier(s.table), strings.Join(deleteConds, " AND "))
	deleteArgs := append([]interface{}{documentKey}, scopeArgs...)
	if _, err := tx.Exec(ctx, deleteSQL, deleteArgs...); err != nil {
		return WrapDatabaseError(DBQueryFailed, "Store.Insert.delete", s.table, documentKey, err)
	}

	if len(chunks) > 0 {
		cols := []string{
			s.mapping.DocumentKeyColumn(),
			s.mapping.ContentColumn(),
			s.mapping.IndexColumn(),
			s.mapping.EmbeddingColumn(),
		}
		fields := s.mapping.Fields()
		for _, f := range fields {
			if f == s.mapping.DocumentKeyField() {
				continue
			}
			col, _ := s.mapping.Column(f)
			cols = append(cols, col)
		}

		quotedCols := make([]string, len(cols))
		for i, c := range cols {
			quotedCols[i] = quoteIdentifier(c)
		}

		insertSQL := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
			quoteIdentifier(s.table), strings.Join(quotedCols, ", "), placeholders(len(cols)))

		batch := &pgx.Batch{}
		for _, c := range chunks {
			args := []interface{}{documentKey, c.Chunk.Content, c.Chunk.Index, pgvector.NewVector(c.Embedding)}
			for _, f := range fields {
				if f == s.mapping.DocumentKeyField() {
					continue
				}
				args = append(args, metadata[f])
			}
			batch.Queue(insertSQL, args...)
		}

		br := tx.SendBatch(ctx, batch)
		for range chunks {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return WrapDatabaseError(DBQueryFailed, "Store.Insert.insert", s.table, documentKey, err)
			}
		}
		if err := br.Close(); err != nil {
			return WrapDatabaseError(DBQueryFailed, "Store.Insert.insert", s.table, documentKey, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return WrapDatabaseError(DBTransactionFailed, "Store.Insert", s.table, documentKey, err)
	}

	s.logger.Debug("store insert committed", "table", s.table, "documentKey", documentKey, "chunks", len(chunks))
	return nil
}

// DeleteByDocumentKey removes every chunk matching both the store's static
// sourceKeys scope and metadata's documentKey, and returns how many rows
// were affected. It never removes a row whose sourceKeys differ from the
// store's static scope (spec §9 testable property 7), since the scope
// conjunct always comes from the store's own construction-time values, not
// from the caller-supplied metadata.
func (s *Store) DeleteByDocumentKey(ctx context.Context, metadata map[string]interface{}) (int64, error) {
	documentKey, _ := metadata[s.mapping.DocumentKeyField()].(string)
	if documentKey == "" {
		return 0, NewValidationError("Store.DeleteByDocumentKey", FieldError{
			Path: "documentKey", Message: "must not be empty",
		})
	}

	scopeConds, scopeArgs := s.scopeConds(2)
	conds := append([]string{fmt.Sprintf("%s = $1", quoteIdentifier(s.mapping.DocumentKeyColumn()))}, scopeConds...)
	sql := fmt.Sprintf(`DELETE FROM %s WHERE %s`, quoteIdentifier(s.table), strings.Join(conds, " AND "))
	args := append([]interface{}{documentKey}, scopeArgs...)

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, WrapDatabaseError(DBQueryFailed, "Store.DeleteByDocumentKey", s.table, documentKey, err)
	}
	return tag.RowsAffected(), nil
}

// DeleteBySourceKeys removes every chunk whose sourceKeys equal the store's
// configured static scope, and returns how many rows were affected. Refuses
// to run when the store has no sourceKeys configured: that scope is
// unbounded and would otherwise delete the entire table.
func (s *Store) DeleteBySourceKeys(ctx context.Context) (int64, error) {
	if len(s.mapping.SourceKeyFields()) == 0 {
		return 0, NewValidationError("Store.DeleteBySourceKeys", FieldError{
			Path: "scope", Message: "store has no configured sourceKeys scope",
		})
	}

	conds, args := s.scopeConds(1)
	sql := fmt.Sprintf(`DELETE FROM %s WHERE %s`, quoteIdentifier(s.table), strings.Join(conds, " AND "))
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, WrapDatabaseError(DBQueryFailed, "Store.DeleteBySourceKeys", s.table, "", err)
	}
	return tag.RowsAffected(), nil
}

// validateEmbedding rejects embeddings whose dimension disagrees with the
// first embedding seen in the batch, or that contain non-finite values.
func validateEmbedding(v []float32, expectedDim int) error {
	if expectedDim >= 0 && len(v) != expectedDim {
		return NewValidationError("Store.Insert", FieldError{
			Path:     "embedding",
			Message:  "dimension mismatch within a single insert batch",
			Expected: fmt.Sprintf("%d", expectedDim),
			Received: fmt.Sprintf("%d", len(v)),
		})
	}
	for _, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return NewValidationError("Store.Insert", FieldError{
				Path: "embedding", Message: "contains NaN or Inf component",
			})
		}
	}
	return nil
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}
