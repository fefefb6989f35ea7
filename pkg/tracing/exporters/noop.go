package exporters

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NoopExporter drops every span. It stands in for a real exporter when
// tracing is disabled so the provider wiring stays identical either way.
type NoopExporter struct{}

var _ sdktrace.SpanExporter = (*NoopExporter)(nil)

func (n *NoopExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	return nil
}

func (n *NoopExporter) Shutdown(ctx context.Context) error {
	return nil
}
