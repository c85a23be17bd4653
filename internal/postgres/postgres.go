// Package postgres provides the production implementations of the store
// interfaces and the inventory ledger on top of a pgx connection pool.
//
// Concurrency control is pushed into the database: inventory quantities move
// through single guarded UPDATE statements, order status transitions are
// compare-and-set writes on the status column, and cart mutations run inside
// a transaction holding a row lock.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}
