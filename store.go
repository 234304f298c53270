package ragline

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ragline/ragline/internal/ragcore"
)

// StoreOption configures NewStore.
type StoreOption = ragcore.StoreOption

// WithStoreLogger attaches a Logger to the Store.
func WithStoreLogger(l Logger) StoreOption { return ragcore.WithStoreLogger(l) }

// Store is the write side of the chunk table: it replaces a document's
// chunks transactionally.
type Store = ragcore.Store

// NewStore validates the target table identifier and builds a Store bound
// to mapping and to a constructor-time static source scope (the values of
// every sourceKeys field this Store instance is confined to).
func NewStore(pool *pgxpool.Pool, table string, mapping *ColumnMapping, staticScope map[string]interface{}, opts ...StoreOption) (*Store, error) {
	return ragcore.NewStore(pool, table, mapping, staticScope, opts...)
}
