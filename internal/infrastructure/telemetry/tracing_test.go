package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopcore/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// installRecorder swaps the global tracer provider for one backed by an
// in-memory span recorder and restores it when the test ends.
func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

func singleEndedSpan(t *testing.T, sr *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()
	spans := sr.Ended()
	require.Len(t, spans, 1)
	return spans[0]
}

func attributeMap(span sdktrace.ReadOnlySpan) map[string]interface{} {
	m := make(map[string]interface{})
	for _, attr := range span.Attributes() {
		m[string(attr.Key)] = attr.Value.AsInterface()
	}
	return m
}

func TestStartSpan(t *testing.T) {
	sr := installRecorder(t)

	_, span := telemetry.StartSpan(context.Background(), "inventory.reserve")
	require.NotNil(t, span)
	span.End()

	ended := singleEndedSpan(t, sr)
	assert.Equal(t, "inventory.reserve", ended.Name())
	assert.Equal(t, trace.SpanKindInternal, ended.SpanKind())
}

func TestStartSpan_WithOptions(t *testing.T) {
	sr := installRecorder(t)

	_, span := telemetry.StartSpan(context.Background(), "inventory.restock",
		telemetry.WithAttribute("warehouse", "eu-west"),
		telemetry.WithSpanKind(trace.SpanKindClient),
	)
	span.End()

	ended := singleEndedSpan(t, sr)
	assert.Equal(t, trace.SpanKindClient, ended.SpanKind())
	assert.Equal(t, "eu-west", attributeMap(ended)["warehouse"])
}

func TestStartServiceSpan(t *testing.T) {
	sr := installRecorder(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "stock_record", "reserve")
	span.End()

	assert.Equal(t, "stock_record.reserve", singleEndedSpan(t, sr).Name())
}

func TestSetAttributes(t *testing.T) {
	sr := installRecorder(t)

	_, span := telemetry.StartSpan(context.Background(), "inventory.adjust")
	telemetry.SetAttributes(span,
		"reason", "cycle count",
		"delta", 42,
		"clamped", true,
	)
	span.End()

	attrs := attributeMap(singleEndedSpan(t, sr))
	assert.Equal(t, "cycle count", attrs["reason"])
	assert.Equal(t, int64(42), attrs["delta"])
	assert.Equal(t, true, attrs["clamped"])
}

func TestSetAttribute(t *testing.T) {
	sr := installRecorder(t)

	_, span := telemetry.StartSpan(context.Background(), "inventory.reserve")
	telemetry.SetAttribute(span, "reference", "order-12345")
	span.End()

	assert.Equal(t, "order-12345", attributeMap(singleEndedSpan(t, sr))["reference"])
}

func TestSetAttribute_StringerValue(t *testing.T) {
	sr := installRecorder(t)

	itemID := uuid.New()
	_, span := telemetry.StartSpan(context.Background(), "inventory.lookup")
	telemetry.SetAttribute(span, "item_id", itemID)
	span.End()

	// UUID goes through fmt.Stringer.
	assert.Equal(t, itemID.String(), attributeMap(singleEndedSpan(t, sr))["item_id"])
}

func TestRecordError(t *testing.T) {
	sr := installRecorder(t)

	_, span := telemetry.StartSpan(context.Background(), "inventory.reduce")
	telemetry.RecordError(span, errors.New("insufficient stock"))
	span.End()

	ended := singleEndedSpan(t, sr)
	assert.Equal(t, codes.Error, ended.Status().Code)
	assert.Equal(t, "insufficient stock", ended.Status().Description)

	events := ended.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, "exception", events[0].Name)
}

func TestRecordError_Nil(t *testing.T) {
	sr := installRecorder(t)

	_, span := telemetry.StartSpan(context.Background(), "inventory.reduce")
	telemetry.RecordError(span, nil)
	span.End()

	assert.NotEqual(t, codes.Error, singleEndedSpan(t, sr).Status().Code)
}

func TestSetOK(t *testing.T) {
	sr := installRecorder(t)

	_, span := telemetry.StartSpan(context.Background(), "inventory.release")
	telemetry.SetOK(span)
	span.End()

	assert.Equal(t, codes.Ok, singleEndedSpan(t, sr).Status().Code)
}

func TestAddEvent(t *testing.T) {
	sr := installRecorder(t)

	_, span := telemetry.StartSpan(context.Background(), "inventory.reserve")
	telemetry.AddEvent(span, "stock_reserved",
		"item_id", "SKU-123",
		"quantity", 10,
	)
	span.End()

	events := singleEndedSpan(t, sr).Events()
	require.Len(t, events, 1)
	assert.Equal(t, "stock_reserved", events[0].Name)

	m := make(map[string]interface{})
	for _, attr := range events[0].Attributes {
		m[string(attr.Key)] = attr.Value.AsInterface()
	}
	assert.Equal(t, "SKU-123", m["item_id"])
	assert.Equal(t, int64(10), m["quantity"])
}

func TestNilSpanHelpersDoNotPanic(t *testing.T) {
	telemetry.RecordError(nil, errors.New("boom"))
	telemetry.SetAttributes(nil, "key", "value")
	telemetry.SetAttribute(nil, "key", "value")
	telemetry.SetOK(nil)
	telemetry.AddEvent(nil, "event", "key", "value")
}

func TestSpanFromContext(t *testing.T) {
	installRecorder(t)

	// Empty context yields a usable no-op span.
	assert.NotNil(t, telemetry.SpanFromContext(context.Background()))

	ctx, created := telemetry.StartSpan(context.Background(), "inventory.lookup")
	defer created.End()

	retrieved := telemetry.SpanFromContext(ctx)
	assert.Equal(t, created.SpanContext().SpanID(), retrieved.SpanContext().SpanID())
}

func TestGetTraceID(t *testing.T) {
	installRecorder(t)

	assert.Empty(t, telemetry.GetTraceID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "inventory.lookup")
	defer span.End()

	traceID := telemetry.GetTraceID(ctx)
	assert.Len(t, traceID, 32)
}

func TestGetSpanID(t *testing.T) {
	installRecorder(t)

	assert.Empty(t, telemetry.GetSpanID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "inventory.lookup")
	defer span.End()

	spanID := telemetry.GetSpanID(ctx)
	assert.Len(t, spanID, 16)
}

func TestContextWithSpan(t *testing.T) {
	installRecorder(t)

	_, span := telemetry.StartSpan(context.Background(), "inventory.lookup")
	defer span.End()

	ctx := telemetry.ContextWithSpan(context.Background(), span)
	retrieved := telemetry.SpanFromContext(ctx)
	assert.Equal(t, span.SpanContext().SpanID(), retrieved.SpanContext().SpanID())
}

func TestNestedSpans(t *testing.T) {
	sr := installRecorder(t)

	ctx, parent := telemetry.StartSpan(context.Background(), "stock_record.reduce")
	_, child := telemetry.StartSpan(ctx, "stock_record.apply_mutation")
	child.End()
	parent.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)

	byName := make(map[string]sdktrace.ReadOnlySpan, 2)
	for _, s := range spans {
		byName[s.Name()] = s
	}
	parentSpan, ok := byName["stock_record.reduce"]
	require.True(t, ok)
	childSpan, ok := byName["stock_record.apply_mutation"]
	require.True(t, ok)

	assert.Equal(t, parentSpan.SpanContext().TraceID(), childSpan.SpanContext().TraceID())
	assert.Equal(t, parentSpan.SpanContext().SpanID(), childSpan.Parent().SpanID())
}

func TestSetAttributes_SupportedTypes(t *testing.T) {
	sr := installRecorder(t)

	_, span := telemetry.StartSpan(context.Background(), "inventory.forecast")
	telemetry.SetAttributes(span,
		"string", "value",
		"int", 42,
		"int64", int64(100),
		"float64", 3.14,
		"bool", true,
		"string_slice", []string{"a", "b"},
		"int_slice", []int{1, 2, 3},
		"int64_slice", []int64{10, 20},
		"float64_slice", []float64{1.1, 2.2},
		"bool_slice", []bool{true, false},
	)
	span.End()

	assert.GreaterOrEqual(t, len(singleEndedSpan(t, sr).Attributes()), 10)
}

func TestSetAttributes_MalformedPairs(t *testing.T) {
	t.Run("trailing key without value dropped", func(t *testing.T) {
		sr := installRecorder(t)

		_, span := telemetry.StartSpan(context.Background(), "inventory.forecast")
		telemetry.SetAttributes(span, "key1", "value1", "key2", "value2", "orphan")
		span.End()

		assert.Len(t, singleEndedSpan(t, sr).Attributes(), 2)
	})

	t.Run("non-string key skipped", func(t *testing.T) {
		sr := installRecorder(t)

		_, span := telemetry.StartSpan(context.Background(), "inventory.forecast")
		telemetry.SetAttributes(span, "valid_key", "value", 123, "unreachable")
		span.End()

		assert.Len(t, singleEndedSpan(t, sr).Attributes(), 1)
	})
}
