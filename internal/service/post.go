package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	bototel "github.com/benjaminclark40063-sketch/botbot4xin/internal/adapter/otel"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/account"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/post"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/tenant"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/port/cache"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/port/database"
)

// PostService reads and replaces the tenant's content posts. Reads go
// through an optional cache that Save invalidates.
type PostService struct {
	store   database.Store
	tenant  tenant.Context
	cache   cache.Cache
	ttl     time.Duration
	metrics *bototel.Metrics

	// gen counts saves per post name. A read only fills the cache if no save
	// happened since it started loading.
	mu  sync.Mutex
	gen map[string]uint64
}

// NewPostService creates a PostService. c may be nil to disable caching.
func NewPostService(store database.Store, t tenant.Context, c cache.Cache, ttl time.Duration, m *bototel.Metrics) *PostService {
	return &PostService{store: store, tenant: t, cache: c, ttl: ttl, metrics: m, gen: make(map[string]uint64)}
}

// Get returns the language projection of a post. The welcome post falls back
// to its default; any other absent post reports false. Store failures count
// as absent.
func (s *PostService) Get(ctx context.Context, name string, lang account.Language) (post.Content, bool) {
	if c, ok := s.cached(ctx, name, lang); ok {
		return c, true
	}

	gen := s.generation(name)
	c, err := s.store.GetPost(ctx, s.tenant, name, lang)
	if err == nil {
		s.remember(ctx, name, lang, c, gen)
		return c, true
	}
	if !errors.Is(err, domain.ErrNotFound) {
		slog.WarnContext(ctx, "store operation failed, using fallback", "op", "get_post", "post", name, "error", err)
		s.metrics.RecordStoreFailure(ctx, "get_post")
	}

	if name == post.WelcomeName {
		return post.DefaultWelcome(), true
	}
	return post.Content{}, false
}

// Save replaces every content field of the draft's post.
func (s *PostService) Save(ctx context.Context, d post.Draft) error {
	if d.Name == "" {
		return errors.New("save post: empty name")
	}
	if err := s.store.SavePost(ctx, s.tenant, d); err != nil {
		return fmt.Errorf("save post %s: %w", d.Name, err)
	}
	s.forget(ctx, d.Name)
	slog.InfoContext(ctx, "post saved", "post", d.Name, "tenant", s.tenant.ID)
	return nil
}

func (s *PostService) key(name string, lang account.Language) string {
	return s.tenant.ID + "|" + name + "|" + string(lang)
}

func (s *PostService) cached(ctx context.Context, name string, lang account.Language) (post.Content, bool) {
	if s.cache == nil {
		return post.Content{}, false
	}
	data, ok, err := s.cache.Get(ctx, s.key(name, lang))
	if err != nil || !ok {
		return post.Content{}, false
	}
	var c post.Content
	if err := json.Unmarshal(data, &c); err != nil {
		return post.Content{}, false
	}
	return c, true
}

func (s *PostService) generation(name string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[name]
}

// remember caches c unless the post was saved after gen was read.
func (s *PostService) remember(ctx context.Context, name string, lang account.Language, c post.Content, gen uint64) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen[name] != gen {
		return
	}
	if err := s.cache.Set(ctx, s.key(name, lang), data, s.ttl); err != nil {
		slog.DebugContext(ctx, "post cache set failed", "post", name, "error", err)
	}
}

func (s *PostService) forget(ctx context.Context, name string) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen[name]++
	for _, lang := range []account.Language{account.LanguageZH, account.LanguageEN} {
		_ = s.cache.Delete(ctx, s.key(name, lang))
	}
}
