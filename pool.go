package ragline

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ragline/ragline/internal/ragcore"
)

// PoolOption configures OpenPool.
type PoolOption = ragcore.PoolOption

// WithMaxConns overrides the pool's maximum open connections.
func WithMaxConns(n int32) PoolOption { return ragcore.WithMaxConns(n) }

// WithMinConns overrides the pool's minimum idle connections.
func WithMinConns(n int32) PoolOption { return ragcore.WithMinConns(n) }

// WithMaxConnIdleTime overrides how long an idle connection is kept before
// being closed.
func WithMaxConnIdleTime(d time.Duration) PoolOption { return ragcore.WithMaxConnIdleTime(d) }

// OpenPool returns a shared *pgxpool.Pool for the given connection string,
// creating it on first use, and ensures pgvector's vector type is
// registered on every connection handed out by the pool.
func OpenPool(ctx context.Context, connString string, opts ...PoolOption) (*pgxpool.Pool, error) {
	return ragcore.OpenPool(ctx, connString, opts...)
}

// ClosePool closes and forgets the shared pool for connString, if one
// exists.
func ClosePool(connString string) { ragcore.ClosePool(connString) }
