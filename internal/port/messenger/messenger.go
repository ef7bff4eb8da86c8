// Package messenger defines the outbound chat transport port.
package messenger

import (
	"context"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/post"
)

// Messenger delivers messages to chat users. Implementations must be safe
// for concurrent use.
type Messenger interface {
	// Send delivers a rendered post (photo with caption when PhotoID is set).
	Send(ctx context.Context, chatID int64, msg post.Message) error
	// SendText delivers plain text and returns the new message id.
	SendText(ctx context.Context, chatID int64, text string) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	// AnswerCallback acknowledges a button press so the client stops its
	// loading indicator.
	AnswerCallback(ctx context.Context, callbackID string) error
}
