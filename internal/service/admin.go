package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/authoring"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/tenant"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/port/messenger"
)

// Admin replies.
const (
	replyWrongPassword = "❌ 错误"
	replySaved         = "✅ 保存成功"
	replySaveFailed    = "❌ 保存失败"
	replyCancelled     = "取消"
	replyLoggedOut     = "退出"
	replyNoSubscribers = "无用户"
)

// AdminCredentials is the operator login. A bcrypt Hash takes precedence
// over the plaintext Password.
type AdminCredentials struct {
	Password string
	Hash     string
}

// AdminService drives the admin conversation: it owns one authoring.Session
// per user and performs the effects the state machine asks for.
type AdminService struct {
	mu       sync.Mutex
	sessions map[int64]*authoring.Session

	creds      AdminCredentials
	tenant     tenant.Context
	messenger  messenger.Messenger
	posts      *PostService
	subs       *SubscriberService
	dispatcher *Dispatcher
}

// NewAdminService creates an AdminService.
func NewAdminService(
	creds AdminCredentials,
	t tenant.Context,
	m messenger.Messenger,
	posts *PostService,
	subs *SubscriberService,
	dispatcher *Dispatcher,
) *AdminService {
	return &AdminService{
		sessions:   make(map[int64]*authoring.Session),
		creds:      creds,
		tenant:     t,
		messenger:  m,
		posts:      posts,
		subs:       subs,
		dispatcher: dispatcher,
	}
}

// Begin starts a flow for the user and sends its first prompt. Gated flows
// without an authenticated session end silently. Only FlowLogin creates a
// session.
func (s *AdminService) Begin(ctx context.Context, userID, chatID int64, f authoring.Flow) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok && f == authoring.FlowLogin {
		sess = &authoring.Session{}
		s.sessions[userID] = sess
	}
	err := authoring.ErrUnauthorized
	var state authoring.State
	if sess != nil {
		err = sess.Begin(f)
		state = sess.State
		s.prune(userID, sess)
	}
	s.mu.Unlock()

	if errors.Is(err, authoring.ErrUnauthorized) {
		slog.DebugContext(ctx, "admin flow refused", "user_id", userID)
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "begin admin flow", "user_id", userID, "error", err)
		return
	}
	s.reply(ctx, chatID, state.Prompt())
}

// Active reports whether the user is inside a flow.
func (s *AdminService) Active(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	return ok && sess.Active()
}

// IsAdmin reports whether the user has authenticated.
func (s *AdminService) IsAdmin(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	return ok && sess.Admin
}

// Handle feeds input to the user's active flow. It returns false when no
// flow is active so the caller can ignore the input.
func (s *AdminService) Handle(ctx context.Context, userID, chatID int64, in authoring.Input) bool {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok || !sess.Active() {
		s.mu.Unlock()
		return false
	}
	step, err := sess.Apply(in)
	s.prune(userID, sess)
	s.mu.Unlock()

	if errors.Is(err, authoring.ErrUnexpectedInput) {
		slog.DebugContext(ctx, "unexpected admin input", "user_id", userID, "state", step.From.String(), "kind", in.Kind.String())
		s.reply(ctx, chatID, step.From.Prompt())
		return true
	}
	if err != nil {
		slog.ErrorContext(ctx, "apply admin input", "user_id", userID, "error", err)
		return true
	}

	switch step.Effect {
	case authoring.EffectNone:
		s.reply(ctx, chatID, step.To.Prompt())
	case authoring.EffectCancelled:
		s.reply(ctx, chatID, replyCancelled)
	case authoring.EffectCheckPassword:
		s.checkPassword(ctx, userID, chatID, step.Value)
	case authoring.EffectSave:
		if err := s.posts.Save(ctx, step.Draft); err != nil {
			slog.ErrorContext(ctx, "save post failed", "user_id", userID, "post", step.Draft.Name, "error", err)
			s.reply(ctx, chatID, replySaveFailed)
			return true
		}
		s.reply(ctx, chatID, replySaved)
	case authoring.EffectDispatch:
		s.broadcast(ctx, chatID, step.Value)
	}
	return true
}

// Cancel aborts the user's flow. It returns false when there was none.
func (s *AdminService) Cancel(ctx context.Context, userID, chatID int64) bool {
	return s.Handle(ctx, userID, chatID, authoring.Input{Kind: authoring.InputCancel})
}

// Logout clears the admin flag and any flow in progress.
func (s *AdminService) Logout(ctx context.Context, userID, chatID int64) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	s.reply(ctx, chatID, replyLoggedOut)
}

// Stats reports the subscriber count to an authenticated admin. Anyone else
// gets no reply.
func (s *AdminService) Stats(ctx context.Context, userID, chatID int64) {
	if !s.IsAdmin(userID) {
		return
	}
	s.reply(ctx, chatID, fmt.Sprintf("当前用户数: %d", s.subs.Count(ctx)))
}

func (s *AdminService) checkPassword(ctx context.Context, userID, chatID int64, submitted string) {
	if !s.verify(submitted) {
		slog.WarnContext(ctx, "admin login failed", "user_id", userID)
		s.reply(ctx, chatID, replyWrongPassword)
		return
	}

	s.mu.Lock()
	if sess, ok := s.sessions[userID]; ok {
		sess.Authenticate()
	}
	s.mu.Unlock()

	slog.InfoContext(ctx, "admin logged in", "user_id", userID)
	s.reply(ctx, chatID, s.menu())
}

func (s *AdminService) verify(submitted string) bool {
	if s.creds.Hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.creds.Hash), []byte(submitted)) == nil
	}
	if s.creds.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.creds.Password), []byte(submitted)) == 1
}

func (s *AdminService) broadcast(ctx context.Context, chatID int64, name string) {
	ids := s.dispatcher.Roster(ctx)
	if len(ids) == 0 {
		s.reply(ctx, chatID, replyNoSubscribers)
		return
	}

	s.reply(ctx, chatID, fmt.Sprintf("开始广播 %d 人...", len(ids)))
	rep := s.dispatcher.Send(ctx, name, ids)
	s.reply(ctx, chatID, fmt.Sprintf("成功: %d", rep.Delivered))
}

func (s *AdminService) menu() string {
	return fmt.Sprintf("✅ 管理员已登录 (Bot ID: %s)\n\n"+
		"=== 内容管理 ===\n"+
		"/newpost - 新建帖子\n"+
		"/editwelcome - 编辑欢迎语\n\n"+
		"=== 运营工具 ===\n"+
		"/broadcast - 广播消息\n"+
		"/stats - 查看人数\n"+
		"/exit_admin - 退出", s.tenant.ID)
}

// prune drops a session that carries neither the admin flag nor a flow.
// Must be called with s.mu held.
func (s *AdminService) prune(userID int64, sess *authoring.Session) {
	if !sess.Admin && !sess.Active() {
		delete(s.sessions, userID)
	}
}

func (s *AdminService) reply(ctx context.Context, chatID int64, text string) {
	if text == "" {
		return
	}
	if _, err := s.messenger.SendText(ctx, chatID, text); err != nil {
		slog.WarnContext(ctx, "admin reply failed", "chat_id", chatID, "error", err)
	}
}
