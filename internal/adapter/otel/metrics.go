// Package otel exposes the bot's metric instruments. Instruments come from
// the global meter provider, which is a no-op until an exporter is installed.
package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "botbot"

// Metrics holds all bot metric instruments.
type Metrics struct {
	Links         metric.Int64Counter
	LinkDuration  metric.Float64Histogram
	Renders       metric.Int64Counter
	Deliveries    metric.Int64Counter
	StoreFailures metric.Int64Counter
}

// NewMetrics creates all metric instruments. The Record methods are safe to
// call on a nil *Metrics.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Links, err = meter.Int64Counter("botbot.account.links",
		metric.WithDescription("Account link attempts by result"))
	if err != nil {
		return nil, err
	}

	m.LinkDuration, err = meter.Float64Histogram("botbot.account.link.duration_seconds",
		metric.WithDescription("Account link duration in seconds"))
	if err != nil {
		return nil, err
	}

	m.Renders, err = meter.Int64Counter("botbot.posts.rendered",
		metric.WithDescription("Number of posts rendered by post name"))
	if err != nil {
		return nil, err
	}

	m.Deliveries, err = meter.Int64Counter("botbot.broadcast.deliveries",
		metric.WithDescription("Broadcast deliveries by result"))
	if err != nil {
		return nil, err
	}

	m.StoreFailures, err = meter.Int64Counter("botbot.store.failures",
		metric.WithDescription("Store failures absorbed by a fallback, by operation"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordLink counts one link attempt and its duration.
func (m *Metrics) RecordLink(ctx context.Context, ok bool, seconds float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("result", result(ok)))
	m.Links.Add(ctx, 1, attrs)
	m.LinkDuration.Record(ctx, seconds, attrs)
}

// RecordRender counts one rendered post.
func (m *Metrics) RecordRender(ctx context.Context, name string) {
	if m == nil {
		return
	}
	m.Renders.Add(ctx, 1, metric.WithAttributes(attribute.String("post", name)))
}

// RecordDelivery counts one broadcast send.
func (m *Metrics) RecordDelivery(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	m.Deliveries.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result(ok))))
}

// RecordStoreFailure counts one absorbed store failure.
func (m *Metrics) RecordStoreFailure(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.StoreFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
