// Package otelobs records Pollen registry and dispatcher signals into
// OpenTelemetry metrics and traces.
package otelobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/petal-labs/pollen/tool"
)

// Observer records tool observability events into OpenTelemetry.
type Observer struct {
	tracer trace.Tracer

	invocations metric.Int64Counter
	discoveries metric.Int64Counter
	duplicates  metric.Int64Counter
	latency     metric.Float64Histogram
}

// NewObserver creates an observer bound to the provided meter/tracer.
func NewObserver(meter metric.Meter, tracer trace.Tracer) (*Observer, error) {
	invocations, err := meter.Int64Counter(
		"pollen.tool.invocations",
		metric.WithDescription("Number of tool invocations"),
	)
	if err != nil {
		return nil, err
	}
	discoveries, err := meter.Int64Counter(
		"pollen.loader.module_failures",
		metric.WithDescription("Number of plugin modules that failed to load"),
	)
	if err != nil {
		return nil, err
	}
	duplicates, err := meter.Int64Counter(
		"pollen.registry.duplicates",
		metric.WithDescription("Number of descriptors discarded by first-write-wins"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"pollen.tool.latency",
		metric.WithDescription("Tool invocation latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Observer{
		tracer:      tracer,
		invocations: invocations,
		discoveries: discoveries,
		duplicates:  duplicates,
		latency:     latency,
	}, nil
}

// ObserveInvoke records one dispatcher invocation result.
func (o *Observer) ObserveInvoke(observation tool.InvokeObservation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("tool_name", observation.ToolName),
		attribute.Bool("async", observation.Async),
		attribute.Bool("success", observation.Success),
	}

	ctx := context.Background()
	options := metric.WithAttributes(attrs...)
	o.invocations.Add(ctx, 1, options)
	o.latency.Record(ctx, float64(time.Duration(observation.DurationMS)*time.Millisecond)/float64(time.Second), options)

	if o.tracer == nil {
		return
	}
	spanAttrs := append(attrs, attribute.String("request_id", observation.RequestID))
	_, span := o.tracer.Start(ctx, "tool.invoke", trace.WithAttributes(spanAttrs...))
	if !observation.Success {
		span.SetStatus(codes.Error, "invocation failed")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// ObserveDiscoveryFailure records one failed module load.
func (o *Observer) ObserveDiscoveryFailure(observation tool.DiscoveryObservation) {
	if o == nil {
		return
	}
	o.discoveries.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("module", observation.Module),
	))
}

// ObserveDuplicate records one descriptor discarded by first-write-wins.
func (o *Observer) ObserveDuplicate(observation tool.DuplicateObservation) {
	if o == nil {
		return
	}
	o.duplicates.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("tool_name", observation.ToolName),
		attribute.String("module", observation.Module),
		attribute.String("kept_from", observation.KeptModule),
	))
}

var _ tool.Observer = (*Observer)(nil)
