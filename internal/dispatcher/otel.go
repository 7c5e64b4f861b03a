package dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/questmaster/studio/internal/dispatcher"

// commandMetrics instruments the command queues. All instruments come
// from the global meter, so they are no-ops until OTel is configured.
type commandMetrics struct {
	queueDepth metric.Int64ObservableGauge
	processed  metric.Int64Counter
	dropped    metric.Int64Counter
}

func newCommandMetrics(observe func(metric.Observer, metric.Int64ObservableGauge)) (*commandMetrics, error) {
	m := otel.Meter(instrumentationName)
	cm := &commandMetrics{}

	var err error
	cm.queueDepth, err = m.Int64ObservableGauge(
		"authoring.queue.depth",
		metric.WithDescription("Commands waiting in per-command queues"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue depth gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			observe(o, cm.queueDepth)
			return nil
		},
		cm.queueDepth,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue depth callback: %w", err)
	}

	cm.processed, err = m.Int64Counter(
		"authoring.commands.processed",
		metric.WithDescription("Commands handled off a queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	cm.dropped, err = m.Int64Counter(
		"authoring.commands.dropped",
		metric.WithDescription("Commands dropped because their queue was full"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return cm, nil
}
