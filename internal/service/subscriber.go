package service

import (
	"context"

	bototel "github.com/benjaminclark40063-sketch/botbot4xin/internal/adapter/otel"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/tenant"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/port/database"
)

// SubscriberService exposes the tenant's roster. Failures degrade to an
// empty roster and a zero count.
type SubscriberService struct {
	store   database.Store
	tenant  tenant.Context
	metrics *bototel.Metrics
}

// NewSubscriberService creates a SubscriberService for one tenant.
func NewSubscriberService(store database.Store, t tenant.Context, m *bototel.Metrics) *SubscriberService {
	return &SubscriberService{store: store, tenant: t, metrics: m}
}

// IDs returns every subscriber of the tenant.
func (s *SubscriberService) IDs(ctx context.Context) []int64 {
	ids, err := s.store.ListSubscriberIDs(ctx, s.tenant)
	if err != nil {
		absorb(ctx, s.metrics, "list_subscribers", 0, err)
		return nil
	}
	return ids
}

// Count returns the number of subscribers of the tenant.
func (s *SubscriberService) Count(ctx context.Context) int {
	n, err := s.store.CountSubscribers(ctx, s.tenant)
	if err != nil {
		absorb(ctx, s.metrics, "count_subscribers", 0, err)
		return 0
	}
	return n
}
