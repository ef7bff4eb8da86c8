// Package service contains application services.
package service

import (
	"context"
	"errors"
	"log/slog"

	bototel "github.com/benjaminclark40063-sketch/botbot4xin/internal/adapter/otel"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/account"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/tenant"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/port/database"
)

// IdentityService combines a user's tenant-scoped language with the globally
// shared external key, and records every contact.
type IdentityService struct {
	store   database.Store
	tenant  tenant.Context
	metrics *bototel.Metrics
}

// NewIdentityService creates an IdentityService for one tenant.
func NewIdentityService(store database.Store, t tenant.Context, m *bototel.Metrics) *IdentityService {
	return &IdentityService{store: store, tenant: t, metrics: m}
}

// Get returns the user's identity. The two lookups are independent: a
// failure of either is logged and treated as absent.
func (s *IdentityService) Get(ctx context.Context, userID int64) account.Identity {
	id := account.Identity{Language: account.DefaultLanguage}

	lang, err := s.store.GetLanguage(ctx, s.tenant, userID)
	switch {
	case err == nil:
		id.Language = lang
	case !errors.Is(err, domain.ErrNotFound):
		absorb(ctx, s.metrics, "get_language", userID, err)
	}

	key, err := s.store.GetExternalKey(ctx, userID)
	switch {
	case err == nil:
		id.ExternalKey = key
	case !errors.Is(err, domain.ErrNotFound):
		absorb(ctx, s.metrics, "get_external_key", userID, err)
	}

	return id
}

// RecordActivity upserts the subscription with lang and refreshes the
// credential. With a key the credential is created or replaced; without one
// only username and last-active tenant are touched. Failed writes are logged
// and dropped.
func (s *IdentityService) RecordActivity(ctx context.Context, user account.User, lang account.Language, key string) {
	if err := s.store.UpsertSubscription(ctx, s.tenant, user, lang); err != nil {
		absorb(ctx, s.metrics, "upsert_subscription", user.ID, err)
	}

	if key != "" {
		if err := s.store.UpsertCredential(ctx, s.tenant, user, key); err != nil {
			absorb(ctx, s.metrics, "upsert_credential", user.ID, err)
		}
		return
	}
	if err := s.store.TouchCredential(ctx, s.tenant, user); err != nil {
		absorb(ctx, s.metrics, "touch_credential", user.ID, err)
	}
}

// absorb logs a store failure that a fallback value hides from the caller.
func absorb(ctx context.Context, m *bototel.Metrics, op string, userID int64, err error) {
	slog.WarnContext(ctx, "store operation failed, using fallback",
		"op", op,
		"user_id", userID,
		"error", err,
	)
	m.RecordStoreFailure(ctx, op)
}
