package llm

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func tracedProvider(inner Provider) (*TracingProvider, *tracetest.SpanRecorder) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return &TracingProvider{inner: inner, provider: "mock", tracer: tp.Tracer("test")}, rec
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_RecordsSpan(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "ok", Usage: Usage{InputTokens: 7, OutputTokens: 2}})
	p, rec := tracedProvider(mock)

	ctx := WithPurpose(context.Background(), PurposeRoadmap)
	if _, err := p.Generate(ctx, Request{Messages: []Message{{Role: RoleUser, Content: "x"}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "llm.generate" {
		t.Fatalf("unexpected span name %q", span.Name())
	}
	if v, ok := spanAttr(span, "llm.purpose"); !ok || v.AsString() != PurposeRoadmap {
		t.Fatalf("purpose attribute = %v", v)
	}
	if v, ok := spanAttr(span, "llm.input_tokens"); !ok || v.AsInt64() != 7 {
		t.Fatalf("input_tokens attribute = %v", v)
	}
	if span.Status().Code == codes.Error {
		t.Fatal("successful call should not have error status")
	}
}

func TestTracing_RecordsError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("503")}})
	p, rec := tracedProvider(mock)

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}

	span := rec.Ended()[0]
	if span.Status().Code != codes.Error {
		t.Fatalf("expected error status, got %v", span.Status().Code)
	}
	if v, ok := spanAttr(span, "llm.transient"); !ok || !v.AsBool() {
		t.Fatal("expected llm.transient=true")
	}
	if len(span.Events()) == 0 {
		t.Fatal("expected the error to be recorded as a span event")
	}
}
