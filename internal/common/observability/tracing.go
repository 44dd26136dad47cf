package observability

import (
	"context"
	"fmt"
	"os"

	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/config"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customizes the tracer provider built by New.
type Option func(*options)

type options struct {
	processors []sdktrace.SpanProcessor
}

// WithSpanExporter batches finished spans to exp. A nil exporter is ignored.
func WithSpanExporter(exp sdktrace.SpanExporter) Option {
	return func(o *options) {
		if exp != nil {
			o.processors = append(o.processors, sdktrace.NewBatchSpanProcessor(exp))
		}
	}
}

// WithSpanProcessor registers sp on the tracer provider.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) {
		if sp != nil {
			o.processors = append(o.processors, sp)
		}
	}
}

// NewSpanExporter builds the exporter named by cfg.Exporter. It returns a nil
// exporter for "none".
func NewSpanExporter(ctx context.Context, cfg config.TracingConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "", config.TraceExporterNone:
		return nil, nil
	case config.TraceExporterStdout:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
		if err != nil {
			return nil, fmt.Errorf("create stdout trace exporter: %w", err)
		}
		return exp, nil
	case config.TraceExporterOTLP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create otlp trace exporter: %w", err)
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}
}
