package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/config"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain"
)

// Store implements database.Store using PostgreSQL.
//
// Every operation holds exactly one pooled connection for its duration and
// releases it before returning, on success and on error.
type Store struct {
	pool   *pgxpool.Pool
	policy policy
}

// NewStore creates a new Store backed by the given connection pool. cfg
// supplies the acquire retry budget.
func NewStore(pool *pgxpool.Pool, cfg config.Postgres) *Store {
	return &Store{pool: pool, policy: newPolicy(cfg)}
}

// withConn acquires a connection (retrying per policy), runs fn and releases
// the connection. Acquire exhaustion wraps domain.ErrUnavailable.
func (s *Store) withConn(ctx context.Context, op string, fn func(conn *pgxpool.Conn) error) error {
	var conn *pgxpool.Conn
	err := withRetry(ctx, s.policy, func(ctx context.Context, attempt int) error {
		actx, cancel := context.WithTimeout(ctx, s.policy.timeout)
		defer cancel()
		c, err := s.pool.Acquire(actx)
		if err != nil {
			slog.Warn("postgres acquire failed", "op", op, "attempt", attempt, "error", err)
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: acquire: %w: %w", op, domain.ErrUnavailable, err)
	}
	defer conn.Release()

	return fn(conn)
}

// Ping verifies a connection can be obtained and used.
func (s *Store) Ping(ctx context.Context) error {
	return s.withConn(ctx, "ping", func(conn *pgxpool.Conn) error {
		if err := conn.Ping(ctx); err != nil {
			return wrapErr(err, "ping")
		}
		return nil
	})
}
