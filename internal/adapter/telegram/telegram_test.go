package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/config"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/chat"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/post"
)

// fakeAPI answers Bot API calls and records the method and form of each.
type fakeAPI struct {
	mu    sync.Mutex
	calls []fakeCall
}

type fakeCall struct {
	method string
	form   map[string]string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	form := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{method: method, form: form})
	f.mu.Unlock()

	var result any = true
	switch method {
	case "getMe":
		result = map[string]any{"id": 1, "is_bot": true, "first_name": "bot", "username": "test_bot"}
	case "getUpdates":
		result = []any{}
	case "sendMessage", "sendPhoto", "editMessageText":
		result = map[string]any{"message_id": 7, "date": 0, "chat": map[string]any{"id": 42, "type": "private"}}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}

func (f *fakeAPI) last() fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func newTestMessenger(t *testing.T) (*Messenger, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	bot, err := tgbotapi.NewBotAPIWithClient("123:abc", srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatalf("new bot: %v", err)
	}
	return NewMessenger(bot), api
}

func TestMessenger_SendText(t *testing.T) {
	m, api := newTestMessenger(t)

	id, err := m.SendText(context.Background(), 42, "hello")
	if err != nil {
		t.Fatalf("send text: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected message id 7, got %d", id)
	}
	call := api.last()
	if call.method != "sendMessage" || call.form["chat_id"] != "42" || call.form["text"] != "hello" {
		t.Fatalf("unexpected call %+v", call)
	}
}

func TestMessenger_SendPhotoWithKeyboard(t *testing.T) {
	m, api := newTestMessenger(t)
	msg := post.Message{
		PhotoID:  "file-1",
		Text:     "caption",
		Keyboard: post.Keyboard{{{Label: "Go", URL: "https://example.com"}}},
	}

	if err := m.Send(context.Background(), 42, msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	call := api.last()
	if call.method != "sendPhoto" {
		t.Fatalf("expected sendPhoto, got %s", call.method)
	}
	if call.form["photo"] != "file-1" || call.form["caption"] != "caption" {
		t.Fatalf("unexpected form %v", call.form)
	}
	if !strings.Contains(call.form["reply_markup"], "https://example.com") {
		t.Fatalf("expected keyboard in reply_markup, got %q", call.form["reply_markup"])
	}
}

func TestMessenger_DeleteAndCallback(t *testing.T) {
	m, api := newTestMessenger(t)
	ctx := context.Background()

	if err := m.Delete(ctx, 42, 9); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if call := api.last(); call.method != "deleteMessage" || call.form["message_id"] != "9" {
		t.Fatalf("unexpected call %+v", call)
	}
	if err := m.AnswerCallback(ctx, "cb-1"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if call := api.last(); call.method != "answerCallbackQuery" || call.form["callback_query_id"] != "cb-1" {
		t.Fatalf("unexpected call %+v", call)
	}
}

func TestMessenger_CancelledContext(t *testing.T) {
	m, api := newTestMessenger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	before := len(api.calls)
	if _, err := m.SendText(ctx, 1, "x"); err == nil {
		t.Fatal("expected context error")
	}
	if len(api.calls) != before {
		t.Fatal("expected no request after cancellation")
	}
}

func TestInlineKeyboard(t *testing.T) {
	if inlineKeyboard(nil) != nil {
		t.Fatal("expected nil markup for no buttons")
	}

	kb := post.Keyboard{
		{{Label: "Site", URL: "https://example.com"}, {Label: "App", URL: "app.example", Internal: true}},
		{{Label: "中文", Data: "set_lang_zh"}},
	}
	markup := inlineKeyboard(kb)
	if markup == nil || len(markup.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 rows, got %+v", markup)
	}
	row := markup.InlineKeyboard[0]
	if *row[0].URL != "https://example.com" || *row[1].URL != "https://app.example" {
		t.Fatalf("unexpected urls %q %q", *row[0].URL, *row[1].URL)
	}
	if cb := markup.InlineKeyboard[1][0].CallbackData; cb == nil || *cb != "set_lang_zh" {
		t.Fatalf("expected callback data, got %v", cb)
	}
}

func TestToEvent(t *testing.T) {
	from := &tgbotapi.User{ID: 5, UserName: "alice"}
	priv := &tgbotapi.Chat{ID: 5, Type: "private"}

	tests := []struct {
		name   string
		update tgbotapi.Update
		want   chat.Event
		ok     bool
	}{
		{
			name: "command with mention",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				MessageID: 1, From: from, Chat: priv, Text: "/start@test_bot",
				Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 15}},
			}},
			want: chat.Event{Kind: chat.KindCommand, ChatID: 5, MessageID: 1, Command: "start", Text: "/start@test_bot"},
			ok:   true,
		},
		{
			name:   "text",
			update: tgbotapi.Update{Message: &tgbotapi.Message{MessageID: 2, From: from, Chat: priv, Text: "hi"}},
			want:   chat.Event{Kind: chat.KindText, ChatID: 5, MessageID: 2, Text: "hi"},
			ok:     true,
		},
		{
			name: "photo picks largest size",
			update: tgbotapi.Update{Message: &tgbotapi.Message{MessageID: 3, From: from, Chat: priv, Photo: []tgbotapi.PhotoSize{
				{FileID: "small"}, {FileID: "large"},
			}}},
			want: chat.Event{Kind: chat.KindPhoto, ChatID: 5, MessageID: 3, PhotoID: "large"},
			ok:   true,
		},
		{
			name: "callback",
			update: tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
				ID: "cb", From: from, Data: "set_lang_en",
				Message: &tgbotapi.Message{MessageID: 4, Chat: priv},
			}},
			want: chat.Event{Kind: chat.KindCallback, ChatID: 5, MessageID: 4, CallbackID: "cb", CallbackData: "set_lang_en"},
			ok:   true,
		},
		{
			name:   "sticker ignored",
			update: tgbotapi.Update{Message: &tgbotapi.Message{MessageID: 5, From: from, Chat: priv}},
		},
		{
			name:   "edited message ignored",
			update: tgbotapi.Update{EditedMessage: &tgbotapi.Message{MessageID: 6, From: from, Chat: priv, Text: "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toEvent(tt.update)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if !ok {
				return
			}
			tt.want.User = toUser(from)
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

type nopHandler struct{}

func (nopHandler) Handle(context.Context, chat.Event) {}

func TestPoller_StreamClosedIsAnError(t *testing.T) {
	srv := httptest.NewServer(&fakeAPI{})
	t.Cleanup(srv.Close)
	bot, err := tgbotapi.NewBotAPIWithClient("123:abc", srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatalf("new bot: %v", err)
	}

	// Stopping first makes the library close the stream on its first pass.
	bot.StopReceivingUpdates()
	p := NewPoller(bot, config.Telegram{PollTimeout: 1, Workers: 1}, nopHandler{})

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	select {
	case err := <-done:
		if !errors.Is(err, ErrUpdatesClosed) {
			t.Fatalf("expected ErrUpdatesClosed, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the update stream closed")
	}
}
