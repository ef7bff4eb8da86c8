package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	bototel "github.com/benjaminclark40063-sketch/botbot4xin/internal/adapter/otel"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/post"
)

// Report summarizes one broadcast.
type Report struct {
	Roster    int
	Delivered int
}

// Dispatcher replays the rendering pipeline for every subscriber of the
// tenant, one recipient at a time.
type Dispatcher struct {
	subscribers *SubscriberService
	renderer    *Renderer
	delay       time.Duration
	metrics     *bototel.Metrics
}

// NewDispatcher creates a Dispatcher that spaces sends by delay.
func NewDispatcher(subscribers *SubscriberService, renderer *Renderer, delay time.Duration, m *bototel.Metrics) *Dispatcher {
	return &Dispatcher{subscribers: subscribers, renderer: renderer, delay: delay, metrics: m}
}

// Roster returns the recipients of the next broadcast.
func (d *Dispatcher) Roster(ctx context.Context) []int64 {
	return d.subscribers.IDs(ctx)
}

// Broadcast delivers name to the whole roster.
func (d *Dispatcher) Broadcast(ctx context.Context, name string) Report {
	return d.Send(ctx, name, d.Roster(ctx))
}

// Send delivers name to each id in order. A failed delivery is logged and
// counted; it never stops the batch. Cancelling ctx does.
func (d *Dispatcher) Send(ctx context.Context, name string, ids []int64) Report {
	rep := Report{Roster: len(ids)}

	limit := rate.Inf
	if d.delay > 0 {
		limit = rate.Every(d.delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	for _, id := range ids {
		if err := limiter.Wait(ctx); err != nil {
			slog.WarnContext(ctx, "broadcast interrupted", "post", name, "delivered", rep.Delivered, "error", err)
			break
		}

		err := d.renderer.Deliver(ctx, post.DirectRecipient(id), name, 0)
		d.metrics.RecordDelivery(ctx, err == nil)
		if err != nil {
			slog.WarnContext(ctx, "broadcast delivery failed", "post", name, "recipient_id", id, "error", err)
			continue
		}
		rep.Delivered++
	}

	slog.InfoContext(ctx, "broadcast finished", "post", name, "roster", rep.Roster, "delivered", rep.Delivered)
	return rep
}
