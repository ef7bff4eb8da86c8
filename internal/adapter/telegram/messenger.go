// Package telegram adapts the Telegram Bot API to the messenger port and
// turns polled updates into chat events.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/post"
)

// Messenger implements messenger.Messenger on a BotAPI client.
type Messenger struct {
	bot *tgbotapi.BotAPI
}

// NewMessenger wraps an authenticated bot client.
func NewMessenger(bot *tgbotapi.BotAPI) *Messenger {
	return &Messenger{bot: bot}
}

// Send delivers a rendered post. Posts with a photo go out as a photo with
// the text as caption.
func (m *Messenger) Send(ctx context.Context, chatID int64, msg post.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	markup := inlineKeyboard(msg.Keyboard)
	var c tgbotapi.Chattable
	if msg.PhotoID != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(msg.PhotoID))
		photo.Caption = msg.Text
		photo.ParseMode = tgbotapi.ModeMarkdown
		if markup != nil {
			photo.ReplyMarkup = *markup
		}
		c = photo
	} else {
		text := tgbotapi.NewMessage(chatID, msg.Text)
		text.ParseMode = tgbotapi.ModeMarkdown
		if markup != nil {
			text.ReplyMarkup = *markup
		}
		c = text
	}

	if _, err := m.bot.Send(c); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// SendText delivers plain text and returns the new message id.
func (m *Messenger) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	sent, err := m.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, fmt.Errorf("telegram send text: %w", err)
	}
	return sent.MessageID, nil
}

// EditText replaces the text of a message sent earlier.
func (m *Messenger) EditText(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("telegram edit: %w", err)
	}
	return nil
}

// Delete removes a message.
func (m *Messenger) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("telegram delete: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a button press.
func (m *Messenger) AnswerCallback(ctx context.Context, callbackID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("telegram answer callback: %w", err)
	}
	return nil
}

// inlineKeyboard converts a rendered keyboard; nil when there are no buttons.
func inlineKeyboard(kb post.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, r := range kb {
		var row []tgbotapi.InlineKeyboardButton
		for _, b := range r {
			row = append(row, inlineButton(b))
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func inlineButton(b post.Button) tgbotapi.InlineKeyboardButton {
	if b.Data != "" {
		return tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data)
	}
	return tgbotapi.NewInlineKeyboardButtonURL(b.Label, linkURL(b))
}

// linkURL returns an openable URL. In-app links are authored without a
// scheme and open as regular https links.
func linkURL(b post.Button) string {
	if b.Internal && !strings.Contains(b.URL, "://") {
		return "https://" + b.URL
	}
	return b.URL
}
