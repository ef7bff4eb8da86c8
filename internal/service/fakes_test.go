package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/account"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/post"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/tenant"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/port/accountservice"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/port/database"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/port/messenger"
)

var (
	_ database.Store         = (*mockStore)(nil)
	_ messenger.Messenger    = (*mockMessenger)(nil)
	_ accountservice.Service = (*mockAccounts)(nil)
)

var errDown = fmt.Errorf("connection refused: %w", domain.ErrUnavailable)

var testTenant = tenant.Context{ID: "1001"}

type subKey struct {
	tenant string
	user   int64
}

type subscription struct {
	username string
	lang     account.Language
	count    int
}

type credential struct {
	key      string
	username string
	tenant   string
}

// mockStore is an in-memory implementation of database.Store for testing.
type mockStore struct {
	mu    sync.Mutex
	subs  map[subKey]*subscription
	order []subKey
	creds map[int64]*credential
	posts map[string]post.Draft // tenant|name
	saves []post.Draft

	// Error hooks: set these to inject failures.
	getLanguageErr  error
	getKeyErr       error
	upsertSubErr    error
	upsertCredErr   error
	getPostErr      error
	savePostErr     error
	listErr         error
	getPostCalls    int
	touchCredCalled int
}

func newMockStore() *mockStore {
	return &mockStore{
		subs:  make(map[subKey]*subscription),
		creds: make(map[int64]*credential),
		posts: make(map[string]post.Draft),
	}
}

func (m *mockStore) GetLanguage(_ context.Context, t tenant.Context, userID int64) (account.Language, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getLanguageErr != nil {
		return "", m.getLanguageErr
	}
	s, ok := m.subs[subKey{t.ID, userID}]
	if !ok {
		return "", domain.ErrNotFound
	}
	return s.lang, nil
}

func (m *mockStore) GetExternalKey(_ context.Context, userID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getKeyErr != nil {
		return "", m.getKeyErr
	}
	c, ok := m.creds[userID]
	if !ok || c.key == "" {
		return "", domain.ErrNotFound
	}
	return c.key, nil
}

func (m *mockStore) UpsertSubscription(_ context.Context, t tenant.Context, user account.User, lang account.Language) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertSubErr != nil {
		return m.upsertSubErr
	}
	k := subKey{t.ID, user.ID}
	s, ok := m.subs[k]
	if !ok {
		m.subs[k] = &subscription{username: user.DisplayName(), lang: lang, count: 1}
		m.order = append(m.order, k)
		return nil
	}
	s.username, s.lang = user.DisplayName(), lang
	s.count++
	return nil
}

func (m *mockStore) UpsertCredential(_ context.Context, t tenant.Context, user account.User, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertCredErr != nil {
		return m.upsertCredErr
	}
	m.creds[user.ID] = &credential{key: key, username: user.DisplayName(), tenant: t.ID}
	return nil
}

func (m *mockStore) TouchCredential(_ context.Context, t tenant.Context, user account.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touchCredCalled++
	if c, ok := m.creds[user.ID]; ok {
		c.username, c.tenant = user.DisplayName(), t.ID
	}
	return nil
}

func (m *mockStore) GetPost(_ context.Context, t tenant.Context, name string, lang account.Language) (post.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getPostCalls++
	if m.getPostErr != nil {
		return post.Content{}, m.getPostErr
	}
	d, ok := m.posts[t.ID+"|"+name]
	if !ok {
		return post.Content{}, domain.ErrNotFound
	}
	if lang == account.LanguageEN {
		return post.Content{PhotoID: deref(d.PhotoID), Text: deref(d.TextEN), Layout: deref(d.ButtonsEN)}, nil
	}
	return post.Content{PhotoID: deref(d.PhotoID), Text: deref(d.TextZH), Layout: deref(d.ButtonsZH)}, nil
}

func (m *mockStore) SavePost(_ context.Context, t tenant.Context, d post.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.savePostErr != nil {
		return m.savePostErr
	}
	m.posts[t.ID+"|"+d.Name] = d
	m.saves = append(m.saves, d)
	return nil
}

func (m *mockStore) ListSubscriberIDs(_ context.Context, t tenant.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var ids []int64
	for _, k := range m.order {
		if k.tenant == t.ID {
			ids = append(ids, k.user)
		}
	}
	return ids, nil
}

func (m *mockStore) CountSubscribers(ctx context.Context, t tenant.Context) (int, error) {
	ids, err := m.ListSubscriberIDs(ctx, t)
	return len(ids), err
}

func (m *mockStore) Ping(context.Context) error { return nil }

func (m *mockStore) subscription(t tenant.Context, userID int64) (subscription, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[subKey{t.ID, userID}]
	if !ok {
		return subscription{}, false
	}
	return *s, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string { return &s }

// sentMessage is one call recorded by mockMessenger.
type sentMessage struct {
	chatID int64
	msg    post.Message
	text   string // SendText/EditText
}

// mockMessenger records outbound traffic.
type mockMessenger struct {
	mu       sync.Mutex
	nextID   int
	sent     []sentMessage
	texts    []sentMessage
	edits    []sentMessage
	deleted  []int
	answered []string
	failChat map[int64]bool
}

func (m *mockMessenger) Send(_ context.Context, chatID int64, msg post.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failChat[chatID] {
		return errors.New("forbidden: bot was blocked by the user")
	}
	m.sent = append(m.sent, sentMessage{chatID: chatID, msg: msg})
	return nil
}

func (m *mockMessenger) SendText(_ context.Context, chatID int64, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.texts = append(m.texts, sentMessage{chatID: chatID, text: text})
	return m.nextID, nil
}

func (m *mockMessenger) EditText(_ context.Context, chatID int64, _ int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, sentMessage{chatID: chatID, text: text})
	return nil
}

func (m *mockMessenger) Delete(_ context.Context, _ int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *mockMessenger) AnswerCallback(_ context.Context, callbackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answered = append(m.answered, callbackID)
	return nil
}

func (m *mockMessenger) textValues() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.texts))
	for i, t := range m.texts {
		out[i] = t.text
	}
	return out
}

func (m *mockMessenger) lastText() string {
	texts := m.textValues()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// mockAccounts scripts account service replies.
type mockAccounts struct {
	register    account.Reply
	registerErr error
	login       account.Reply
	loginErr    error
	calls       []string
	creds       []account.Credentials
}

func (m *mockAccounts) Register(_ context.Context, c account.Credentials) (account.Reply, error) {
	m.calls = append(m.calls, "register")
	m.creds = append(m.creds, c)
	return m.register, m.registerErr
}

func (m *mockAccounts) Login(_ context.Context, c account.Credentials) (account.Reply, error) {
	m.calls = append(m.calls, "login")
	m.creds = append(m.creds, c)
	return m.login, m.loginErr
}

// harness wires every service against the mocks.
type harness struct {
	store    *mockStore
	msgr     *mockMessenger
	accounts *mockAccounts

	identity *IdentityService
	posts    *PostService
	subs     *SubscriberService
	links    *LinkService
	renderer *Renderer
	dispatch *Dispatcher
	admin    *AdminService
	router   *Router
}

const testLobby = "https://lobby.example"

func newHarness() *harness {
	h := &harness{
		store:    newMockStore(),
		msgr:     &mockMessenger{},
		accounts: &mockAccounts{register: account.Reply{Code: account.CodeOK, Key: "K-new"}},
	}
	h.identity = NewIdentityService(h.store, testTenant, nil)
	h.posts = NewPostService(h.store, testTenant, nil, 0, nil)
	h.subs = NewSubscriberService(h.store, testTenant, nil)
	h.links = NewLinkService(h.accounts, "s3cret", nil)
	h.renderer = NewRenderer(h.identity, h.posts, h.msgr, testLobby, nil)
	h.dispatch = NewDispatcher(h.subs, h.renderer, 0, nil)
	h.admin = NewAdminService(AdminCredentials{Password: "pw"}, testTenant, h.msgr, h.posts, h.subs, h.dispatch)
	h.router = NewRouter(h.identity, h.links, h.renderer, h.admin, h.msgr)
	return h
}
