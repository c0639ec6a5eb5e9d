package agentloop

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestNewTracerVariants(t *testing.T) {
	tests := []struct {
		name   string
		config TraceConfig
	}{
		{name: "no endpoint is a no-op tracer", config: TraceConfig{ServiceName: "pilot-test"}},
		{name: "with endpoint", config: TraceConfig{ServiceName: "pilot-test", Endpoint: "localhost:4317", Insecure: true}},
		{name: "with partial sampling", config: TraceConfig{ServiceName: "pilot-test", SamplingRate: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, shutdown := NewTracer(tt.config)
			defer func() { _ = shutdown(context.Background()) }()

			if tracer == nil {
				t.Fatal("NewTracer() returned nil")
			}
			if tracer.tracer == nil {
				t.Error("tracer.tracer is nil")
			}
		})
	}
}

func TestTracerStart(t *testing.T) {
	tracer, shutdown := NewTracer(TraceConfig{ServiceName: "pilot-test"})
	defer func() { _ = shutdown(context.Background()) }()

	ctx, span := tracer.Start(context.Background(), "test-op", trace.SpanKindInternal)
	defer span.End()

	if span == nil {
		t.Fatal("Start() returned nil span")
	}
	if trace.SpanFromContext(ctx) == nil {
		t.Error("expected span in returned context")
	}
}

func TestTracerRecordErrorIsNilSafe(t *testing.T) {
	tracer, shutdown := NewTracer(TraceConfig{ServiceName: "pilot-test"})
	defer func() { _ = shutdown(context.Background()) }()

	_, span := tracer.Start(context.Background(), "test-op", trace.SpanKindInternal)
	defer span.End()

	tracer.RecordError(span, nil)
	tracer.RecordError(span, errors.New("boom"))
}

func TestTraceRunStepLLMTool(t *testing.T) {
	tracer, shutdown := NewTracer(TraceConfig{ServiceName: "pilot-test"})
	defer func() { _ = shutdown(context.Background()) }()

	ctx, runSpan := tracer.TraceRun(context.Background(), "add an item to the cart", "https://example.com")
	defer runSpan.End()

	stepCtx, stepSpan := tracer.TraceStep(ctx, 1)
	defer stepSpan.End()

	_, llmSpan := tracer.TraceLLMRequest(stepCtx, "gemini")
	llmSpan.End()

	_, toolSpan := tracer.TraceToolExecution(stepCtx, "click")
	toolSpan.End()
}

func TestGetTraceIDWithoutSpanIsEmpty(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Fatalf("expected empty trace id outside a span, got %q", id)
	}
}

func TestNewAgentLoopDefaultsToNoOpTracer(t *testing.T) {
	loop := New(nil, nil, Config{}, nil)
	if loop.tracer == nil {
		t.Fatal("expected New() to install a no-op tracer when none is supplied")
	}
}
