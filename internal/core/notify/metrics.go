package notify

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Removal reasons reported on the removed counter.
const (
	reasonDismissed = "dismissed"
	reasonExpired   = "expired"
	reasonCleared   = "cleared"
)

type busMetrics struct {
	added   metric.Int64Counter
	removed metric.Int64Counter
	live    metric.Int64UpDownCounter
}

func newBusMetrics(meter metric.Meter) *busMetrics {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("kpi/notify")
	}

	// Instrument creation only fails on invalid names; fall back to no-op
	// instruments so the bus never fails to construct.
	fallback := noop.NewMeterProvider().Meter("kpi/notify")

	added, err := meter.Int64Counter("kpi.notifications.added",
		metric.WithDescription("Notifications added to the bus"))
	if err != nil {
		added, _ = fallback.Int64Counter("kpi.notifications.added")
	}

	removed, err := meter.Int64Counter("kpi.notifications.removed",
		metric.WithDescription("Notifications removed from the bus"))
	if err != nil {
		removed, _ = fallback.Int64Counter("kpi.notifications.removed")
	}

	live, err := meter.Int64UpDownCounter("kpi.notifications.live",
		metric.WithDescription("Notifications currently live"))
	if err != nil {
		live, _ = fallback.Int64UpDownCounter("kpi.notifications.live")
	}

	return &busMetrics{added: added, removed: removed, live: live}
}

func (m *busMetrics) recordAdd(kind Kind) {
	ctx := context.Background()
	m.added.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
	m.live.Add(ctx, 1)
}

func (m *busMetrics) recordRemove(reason string, n int) {
	if n == 0 {
		return
	}
	ctx := context.Background()
	m.removed.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
	m.live.Add(ctx, -int64(n))
}
