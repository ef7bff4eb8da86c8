// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/account"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/post"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/tenant"
)

// Store is the port interface for database operations.
//
// Errors wrap domain.ErrNotFound when the row is absent and
// domain.ErrUnavailable when the database could not be used. Credential data
// is global; every method taking a tenant.Context touches only that tenant's
// rows.
type Store interface {
	// Identity
	GetLanguage(ctx context.Context, t tenant.Context, userID int64) (account.Language, error)
	GetExternalKey(ctx context.Context, userID int64) (string, error)
	UpsertSubscription(ctx context.Context, t tenant.Context, user account.User, lang account.Language) error
	UpsertCredential(ctx context.Context, t tenant.Context, user account.User, key string) error
	TouchCredential(ctx context.Context, t tenant.Context, user account.User) error

	// Posts
	GetPost(ctx context.Context, t tenant.Context, name string, lang account.Language) (post.Content, error)
	SavePost(ctx context.Context, t tenant.Context, d post.Draft) error

	// Subscribers
	ListSubscriberIDs(ctx context.Context, t tenant.Context) ([]int64, error)
	CountSubscribers(ctx context.Context, t tenant.Context) (int, error)

	Ping(ctx context.Context) error
}
