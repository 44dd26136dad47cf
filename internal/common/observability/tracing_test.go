package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/config"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/logger"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNew_SpansReachProcessor(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	obs := New("crop-yield-test", promclient.NewRegistry(), logger.NewTestLogger(t), WithSpanProcessor(rec))
	defer obs.Shutdown()

	_, span := obs.StartSpan(context.Background(), "http.predict", attribute.String("crop", "cacao"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "http.predict", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("crop", "cacao"))

	name, ok := ended[0].Resource().Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "crop-yield-test", name.AsString())
}

func TestNew_SpanExporterFlushedOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	exp, err := stdouttrace.New(stdouttrace.WithWriter(&buf))
	require.NoError(t, err)

	obs := New("crop-yield-test", promclient.NewRegistry(), logger.NewTestLogger(t), WithSpanExporter(exp))
	_, span := obs.StartSpan(context.Background(), "inference.Run")
	span.End()
	obs.Shutdown()

	assert.Contains(t, buf.String(), `"Name":"inference.Run"`)
}

func TestNew_NilExporterIgnored(t *testing.T) {
	obs := New("crop-yield-test", promclient.NewRegistry(), logger.NewTestLogger(t), WithSpanExporter(nil))
	defer obs.Shutdown()

	_, span := obs.StartSpan(context.Background(), "noop")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestNewSpanExporter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.TracingConfig
		wantNil bool
		wantErr bool
	}{
		{name: "none", cfg: config.TracingConfig{Exporter: config.TraceExporterNone}, wantNil: true},
		{name: "empty", cfg: config.TracingConfig{}, wantNil: true},
		{name: "stdout", cfg: config.TracingConfig{Exporter: config.TraceExporterStdout}},
		{
			name: "otlp",
			cfg:  config.TracingConfig{Exporter: config.TraceExporterOTLP, Endpoint: "localhost:4318", Insecure: true},
		},
		{name: "unknown", cfg: config.TracingConfig{Exporter: "jaeger"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := NewSpanExporter(context.Background(), tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "jaeger")
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, exp)
				return
			}
			require.NotNil(t, exp)
			assert.NoError(t, exp.Shutdown(context.Background()))
		})
	}
}
