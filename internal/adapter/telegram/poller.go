package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/config"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/account"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/chat"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/logger"
)

// ErrUpdatesClosed is returned by Run when the update stream ends while the
// context is still live.
var ErrUpdatesClosed = errors.New("telegram updates channel closed")

// Handler processes one chat event.
type Handler interface {
	Handle(ctx context.Context, ev chat.Event)
}

// Poller long-polls for updates and hands each one to the handler on its own
// goroutine, at most cfg.Workers at a time.
type Poller struct {
	bot     *tgbotapi.BotAPI
	cfg     config.Telegram
	handler Handler
}

// NewPoller creates a Poller.
func NewPoller(bot *tgbotapi.BotAPI, cfg config.Telegram, h Handler) *Poller {
	return &Poller{bot: bot, cfg: cfg, handler: h}
}

// NewBot authenticates against the Bot API.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return bot, nil
}

// Run polls until ctx is cancelled, then waits for in-flight handlers. It
// returns ErrUpdatesClosed if the update stream stops on its own.
func (p *Poller) Run(ctx context.Context) error {
	if p.cfg.DropPending {
		if _, err := p.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
			slog.Warn("drop pending updates failed", "error", err)
		}
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.cfg.PollTimeout
	updates := p.bot.GetUpdatesChan(u)

	sem := semaphore.NewWeighted(p.cfg.Workers)
	var wg sync.WaitGroup
	defer wg.Wait()

	slog.Info("telegram polling started", "bot", p.bot.Self.UserName, "workers", p.cfg.Workers)
	for {
		select {
		case <-ctx.Done():
			p.bot.StopReceivingUpdates()
			slog.Info("telegram polling stopped")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return ErrUpdatesClosed
			}
			ev, ok := toEvent(upd)
			if !ok {
				continue
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer sem.Release(1)
				p.dispatch(ctx, upd.UpdateID, ev)
			}()
		}
	}
}

func (p *Poller) dispatch(ctx context.Context, updateID int, ev chat.Event) {
	ctx = logger.WithRequestID(ctx, uuid.NewString())
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "update handler panicked", "update_id", updateID, "panic", r)
		}
	}()

	slog.DebugContext(ctx, "update received", "update_id", updateID, "kind", ev.Kind.String(), "command", ev.Command)
	p.handler.Handle(ctx, ev)
}

// toEvent maps an update onto a chat event. Updates the router has no use
// for (edits, channel posts, messages without a sender) report false.
func toEvent(u tgbotapi.Update) (chat.Event, bool) {
	if q := u.CallbackQuery; q != nil {
		if q.From == nil {
			return chat.Event{}, false
		}
		ev := chat.Event{
			Kind:         chat.KindCallback,
			ChatID:       q.From.ID,
			User:         toUser(q.From),
			CallbackID:   q.ID,
			CallbackData: q.Data,
		}
		if q.Message != nil {
			ev.MessageID = q.Message.MessageID
			if q.Message.Chat != nil {
				ev.ChatID = q.Message.Chat.ID
			}
		}
		return ev, true
	}

	m := u.Message
	if m == nil || m.From == nil || m.Chat == nil {
		return chat.Event{}, false
	}
	ev := chat.Event{
		ChatID:    m.Chat.ID,
		User:      toUser(m.From),
		MessageID: m.MessageID,
		Text:      m.Text,
	}

	switch {
	case m.IsCommand():
		ev.Kind = chat.KindCommand
		ev.Command = strings.ToLower(m.Command())
	case len(m.Photo) > 0:
		ev.Kind = chat.KindPhoto
		ev.PhotoID = m.Photo[len(m.Photo)-1].FileID // largest size
	case m.Text != "":
		ev.Kind = chat.KindText
	default:
		return chat.Event{}, false
	}
	return ev, true
}

func toUser(u *tgbotapi.User) account.User {
	return account.User{ID: u.ID, Username: u.UserName}
}
