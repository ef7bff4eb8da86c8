package service

import (
	"context"
	"fmt"
	"log/slog"

	bototel "github.com/benjaminclark40063-sketch/botbot4xin/internal/adapter/otel"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/post"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/port/messenger"
)

// Renderer turns a named post into a message personalized for one recipient
// and delivers it. Single-user replies and broadcasts share this path.
type Renderer struct {
	identity  *IdentityService
	posts     *PostService
	messenger messenger.Messenger
	lobbyURL  string
	metrics   *bototel.Metrics
}

// NewRenderer creates a Renderer linking game buttons to lobbyURL.
func NewRenderer(identity *IdentityService, posts *PostService, m messenger.Messenger, lobbyURL string, metrics *bototel.Metrics) *Renderer {
	return &Renderer{identity: identity, posts: posts, messenger: m, lobbyURL: lobbyURL, metrics: metrics}
}

// Render builds the message for name in the recipient's language. It returns
// post.ErrNoPost when the post does not exist and has no default.
func (r *Renderer) Render(ctx context.Context, rcp post.Recipient, name string) (post.Message, error) {
	id := r.identity.Get(ctx, rcp.UserID)

	c, ok := r.posts.Get(ctx, name, id.Language)
	if !ok {
		return post.Message{}, fmt.Errorf("render %q: %w", name, post.ErrNoPost)
	}

	r.metrics.RecordRender(ctx, name)
	return post.Assemble(name, c, id, r.lobbyURL), nil
}

// Deliver renders name and sends it to the recipient. A non-zero replace is
// the id of a message to remove first, so a re-render takes its place.
func (r *Renderer) Deliver(ctx context.Context, rcp post.Recipient, name string, replace int) error {
	msg, err := r.Render(ctx, rcp, name)
	if err != nil {
		return err
	}

	if replace != 0 {
		if err := r.messenger.Delete(ctx, rcp.ChatID, replace); err != nil {
			slog.DebugContext(ctx, "delete replaced message failed", "chat_id", rcp.ChatID, "error", err)
		}
	}

	if err := r.messenger.Send(ctx, rcp.ChatID, msg); err != nil {
		return fmt.Errorf("deliver %q to %d: %w", name, rcp.ChatID, err)
	}
	return nil
}
