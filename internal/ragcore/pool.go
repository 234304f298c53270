package ragcore

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
	"golang.org/x/sync/singleflight"
)

const (
	defaultMaxConns        = int32(20)
	defaultMinConns        = int32(5)
	defaultMaxConnIdleTime = 30 * time.Second
	defaultConnectTimeout  = 2 * time.Second
)

// PoolOption configures OpenPool.
type PoolOption func(*pgxpool.Config)

// WithMaxConns overrides the pool's maximum open connections (default 20).
func WithMaxConns(n int32) PoolOption {
	return func(c *pgxpool.Config) { c.MaxConns = n }
}

// WithMinConns overrides the pool's minimum idle connections (default 5).
func WithMinConns(n int32) PoolOption {
	return func(c *pgxpool.Config) { c.MinConns = n }
}

// WithMaxConnIdleTime overrides how long an idle connection is kept before
// being closed (default 30s).
func WithMaxConnIdleTime(d time.Duration) PoolOption {
	return func(c *pgxpool.Config) { c.MaxConnIdleTime = d }
}

// poolRegistry shares pgxpool.Pool instances by connection string and
// guards pool creation with a singleflight group, so concurrent callers
// opening the same DSN never end up with two pools. The pgvector types are
// registered on each physical connection by the pool's AfterConnect hook.
type poolRegistry struct {
	mu      sync.Mutex
	pools   map[string]*pgxpool.Pool
	flights singleflight.Group
}

var pools = &poolRegistry{pools: map[string]*pgxpool.Pool{}}

// OpenPool returns a shared *pgxpool.Pool for the given connection string,
// creating it on first use, and ensures pgvector's vector type is
// registered on every connection handed out by the pool.
func OpenPool(ctx context.Context, connString string, opts ...PoolOption) (*pgxpool.Pool, error) {
	if connString == "" {
		return nil, NewConfigurationError("Pool", "connection string must not be empty")
	}

	pools.mu.Lock()
	if p, ok := pools.pools[connString]; ok {
		pools.mu.Unlock()
		return p, nil
	}
	pools.mu.Unlock()

	// singleflight.Group collapses concurrent OpenPool calls for the same
	// DSN into a single pgxpool.NewWithConfig, so two goroutines racing to
	// open the same database never end up with two live pools.
	v, err, _ := pools.flights.Do(connString, func() (interface{}, error) {
		pools.mu.Lock()
		if p, ok := pools.pools[connString]; ok {
			pools.mu.Unlock()
			return p, nil
		}
		pools.mu.Unlock()

		cfg, err := pgxpool.ParseConfig(connString)
		if err != nil {
			return nil, WrapDatabaseError(DBConnectionFailed, "OpenPool", "", "", err)
		}
		cfg.MaxConns = defaultMaxConns
		cfg.MinConns = defaultMinConns
		cfg.MaxConnIdleTime = defaultMaxConnIdleTime
		cfg.ConnConfig.ConnectTimeout = defaultConnectTimeout

		for _, opt := range opts {
			opt(cfg)
		}

		// Every physical connection the pool opens gets the vector type
		// registered on it individually; pgx's type map is per-connection.
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			return pgxvector.RegisterTypes(ctx, conn)
		}

		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, WrapDatabaseError(DBConnectionFailed, "OpenPool", "", "", err)
		}

		pools.mu.Lock()
		pools.pools[connString] = pool
		pools.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pgxpool.Pool), nil
}

// ClosePool closes and forgets the shared pool for connString, if one
// exists. Intended for graceful shutdown and tests.
func ClosePool(connString string) {
	pools.mu.Lock()
	defer pools.mu.Unlock()
	if p, ok := pools.pools[connString]; ok {
		p.Close()
		delete(pools.pools, connString)
	}
}
