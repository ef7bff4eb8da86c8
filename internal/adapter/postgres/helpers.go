package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sethvargo/go-retry"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/config"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain"
)

// policy bounds how hard the adapter tries to obtain a connection.
type policy struct {
	attempts int
	delay    time.Duration // fixed pause between attempts
	timeout  time.Duration // per attempt
}

func newPolicy(cfg config.Postgres) policy {
	p := policy{attempts: cfg.ConnectRetries, delay: cfg.RetryDelay, timeout: cfg.ConnectTimeout}
	if p.attempts < 1 {
		p.attempts = 1
	}
	return p
}

// withRetry runs fn until it succeeds, ctx ends or the attempts are used up.
// The error of the last attempt is returned.
func withRetry(ctx context.Context, p policy, fn func(ctx context.Context, attempt int) error) error {
	backoff := retry.WithMaxRetries(uint64(p.attempts-1), retry.NewConstant(p.delay)) //nolint:gosec // attempts >= 1
	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := fn(ctx, attempt); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// scannable abstracts pgx.Row and pgx.Rows for shared scan helpers.
type scannable interface {
	Scan(dest ...any) error
}

// wrapErr maps a driver error onto the store's error contract: no row is
// domain.ErrNotFound, anything else is domain.ErrUnavailable.
func wrapErr(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	}
	if errors.Is(err, domain.ErrUnavailable) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, domain.ErrUnavailable, err)
}

// nullIfEmpty returns nil for empty strings (for nullable text columns).
func nullIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// deref returns the empty string for NULL columns.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
