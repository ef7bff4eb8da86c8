package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain"
)

func TestWrapErr(t *testing.T) {
	if err := wrapErr(pgx.ErrNoRows, "get %s", "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	cause := errors.New("connection reset")
	err := wrapErr(cause, "get x")
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be kept, got %v", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Fatal("did not expect ErrNotFound")
	}
}

func TestWithRetryStopsAfterAttempts(t *testing.T) {
	p := policy{attempts: 3, delay: time.Millisecond, timeout: time.Second}
	calls := 0
	boom := errors.New("boom")

	err := withRetry(context.Background(), p, func(context.Context, int) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestWithRetrySucceedsLate(t *testing.T) {
	p := policy{attempts: 3, delay: time.Millisecond, timeout: time.Second}
	var seen []int

	err := withRetry(context.Background(), p, func(_ context.Context, attempt int) error {
		seen = append(seen, attempt)
		if attempt < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(seen) != 2 || seen[1] != 2 {
		t.Fatalf("unexpected attempts %v", seen)
	}
}

func TestNullIfEmpty(t *testing.T) {
	empty, text := "", "x"
	if nullIfEmpty(nil) != nil || nullIfEmpty(&empty) != nil {
		t.Fatal("expected nil for absent and empty")
	}
	if got := nullIfEmpty(&text); got == nil || *got != "x" {
		t.Fatalf("expected x, got %v", got)
	}
}
