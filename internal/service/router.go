package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/account"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/authoring"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/chat"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/post"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/logger"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/port/messenger"
)

const replyLinkFailed = "⚠️ 账户连接失败"

// entryPosts maps the user entry commands to the post they show.
var entryPosts = map[string]string{
	chat.CmdStart:   post.WelcomeName,
	chat.CmdHelp:    "help",
	chat.CmdSupport: "support",
}

// Router dispatches inbound events to the services. It holds no per-update
// state and is safe for concurrent use.
type Router struct {
	identity  *IdentityService
	links     *LinkService
	renderer  *Renderer
	admin     *AdminService
	messenger messenger.Messenger
}

// NewRouter creates a Router.
func NewRouter(identity *IdentityService, links *LinkService, renderer *Renderer, admin *AdminService, m messenger.Messenger) *Router {
	return &Router{identity: identity, links: links, renderer: renderer, admin: admin, messenger: m}
}

// Handle processes one event. Failures are logged; nothing is returned
// because there is no caller to report to.
func (r *Router) Handle(ctx context.Context, ev chat.Event) {
	ctx = logger.WithUserID(ctx, ev.User.ID)

	switch ev.Kind {
	case chat.KindCallback:
		r.onCallback(ctx, ev)
	case chat.KindCommand:
		r.onCommand(ctx, ev)
	case chat.KindPhoto:
		r.admin.Handle(ctx, ev.User.ID, ev.ChatID, authoring.Input{Kind: authoring.InputPhoto, Value: ev.PhotoID})
	case chat.KindText:
		r.admin.Handle(ctx, ev.User.ID, ev.ChatID, authoring.Input{Kind: authoring.InputText, Value: ev.Text})
	}
}

func (r *Router) onCommand(ctx context.Context, ev chat.Event) {
	uid, cid := ev.User.ID, ev.ChatID

	if name, ok := entryPosts[ev.Command]; ok {
		r.onEntry(ctx, ev, name)
		return
	}

	switch ev.Command {
	case chat.CmdAdmin:
		r.admin.Begin(ctx, uid, cid, authoring.FlowLogin)
	case chat.CmdNewPost, chat.CmdEditWelcome:
		r.admin.Begin(ctx, uid, cid, authoring.FlowContent)
	case chat.CmdBroadcast:
		r.admin.Begin(ctx, uid, cid, authoring.FlowBroadcast)
	case chat.CmdStats:
		r.admin.Stats(ctx, uid, cid)
	case chat.CmdExitAdmin:
		r.admin.Logout(ctx, uid, cid)
	case chat.CmdCancel:
		r.admin.Cancel(ctx, uid, cid)
	case chat.CmdSkip:
		r.admin.Handle(ctx, uid, cid, authoring.Input{Kind: authoring.InputSkip})
	default:
		// Inside a flow an unknown command is just text.
		r.admin.Handle(ctx, uid, cid, authoring.Input{Kind: authoring.InputText, Value: ev.Text})
	}
}

// onEntry records the contact, links the account on first contact and shows
// the entry post.
func (r *Router) onEntry(ctx context.Context, ev chat.Event, name string) {
	id := r.identity.Get(ctx, ev.User.ID)

	key := ""
	if !id.Linked() {
		var ok bool
		if key, ok = r.linkWithStatus(ctx, ev, id.Language); !ok {
			r.identity.RecordActivity(ctx, ev.User, id.Language, "")
			return
		}
	}
	r.identity.RecordActivity(ctx, ev.User, id.Language, key)

	r.deliver(ctx, post.Recipient{UserID: ev.User.ID, ChatID: ev.ChatID}, name, 0)
}

// linkWithStatus links the account while a status message is shown. The
// status is removed on success and replaced by the failure notice otherwise.
func (r *Router) linkWithStatus(ctx context.Context, ev chat.Event, lang account.Language) (string, bool) {
	status := "Connecting account..."
	if lang == account.LanguageZH {
		status = "正在连接账户..."
	}
	msgID, err := r.messenger.SendText(ctx, ev.ChatID, status)
	if err != nil {
		slog.WarnContext(ctx, "send link status failed", "error", err)
	}

	key, err := r.links.Link(ctx, ev.User)
	if err != nil {
		if msgID != 0 {
			err = r.messenger.EditText(ctx, ev.ChatID, msgID, replyLinkFailed)
		} else {
			_, err = r.messenger.SendText(ctx, ev.ChatID, replyLinkFailed)
		}
		if err != nil {
			slog.WarnContext(ctx, "send link failure notice failed", "error", err)
		}
		return "", false
	}

	if msgID != 0 {
		if err := r.messenger.Delete(ctx, ev.ChatID, msgID); err != nil {
			slog.DebugContext(ctx, "delete link status failed", "error", err)
		}
	}
	return key, true
}

// onCallback handles the language switch. Other callback data is only
// acknowledged.
func (r *Router) onCallback(ctx context.Context, ev chat.Event) {
	if err := r.messenger.AnswerCallback(ctx, ev.CallbackID); err != nil {
		slog.DebugContext(ctx, "answer callback failed", "error", err)
	}

	code, ok := strings.CutPrefix(ev.CallbackData, post.LanguageCallbackPrefix)
	if !ok {
		return
	}
	lang, ok := account.ParseLanguage(code)
	if !ok {
		slog.DebugContext(ctx, "unknown language code", "code", code)
		return
	}

	r.identity.RecordActivity(ctx, ev.User, lang, "")
	r.deliver(ctx, post.Recipient{UserID: ev.User.ID, ChatID: ev.ChatID}, post.WelcomeName, ev.MessageID)
}

func (r *Router) deliver(ctx context.Context, rcp post.Recipient, name string, replace int) {
	err := r.renderer.Deliver(ctx, rcp, name, replace)
	switch {
	case err == nil:
	case errors.Is(err, post.ErrNoPost):
		slog.DebugContext(ctx, "post not found", "post", name)
	default:
		slog.WarnContext(ctx, "deliver post failed", "post", name, "error", err)
	}
}
