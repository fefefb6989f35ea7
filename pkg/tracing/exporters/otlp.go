// Package exporters builds the span exporters the tracer provider ships
// spans through: an OTLP exporter over gRPC or HTTP, and a no-op exporter
// for when no collector is configured.
package exporters

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Options describes the OTLP collector connection.
type Options struct {
	// Endpoint is the collector address, host:port. Collectors listen on
	// 4317 for gRPC and 4318 for HTTP.
	Endpoint string

	// Protocol selects the transport, "grpc" or "http". Empty means grpc.
	Protocol string

	// Insecure uses a plaintext transport, for local collectors.
	Insecure bool

	// Timeout bounds each export batch. Zero means 10 seconds.
	Timeout time.Duration
}

// NewOTLP returns an exporter connected to the collector described by opts.
func NewOTLP(ctx context.Context, opts Options) (*otlptrace.Exporter, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	switch opts.Protocol {
	case "grpc", "":
		return otlptracegrpc.New(ctx, grpcOptions(opts)...)
	case "http":
		return otlptracehttp.New(ctx, httpOptions(opts)...)
	}
	return nil, fmt.Errorf("unknown OTLP protocol %q, want grpc or http", opts.Protocol)
}

func grpcOptions(opts Options) []otlptracegrpc.Option {
	out := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
		otlptracegrpc.WithTimeout(opts.Timeout),
	}
	if opts.Insecure {
		out = append(out,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	return out
}

func httpOptions(opts Options) []otlptracehttp.Option {
	out := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(opts.Endpoint),
		otlptracehttp.WithTimeout(opts.Timeout),
	}
	if opts.Insecure {
		out = append(out, otlptracehttp.WithInsecure())
	}
	return out
}
