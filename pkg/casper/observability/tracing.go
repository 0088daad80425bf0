package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the tracer spans are created with.
const InstrumentationName = "github.com/BrandonKowalski/casper"

// Span attribute keys.
const (
	AttrURL      = attribute.Key("casper.url")
	AttrPage     = attribute.Key("casper.page")
	AttrOutcome  = attribute.Key("casper.outcome")
	AttrModule   = attribute.Key("casper.module")
	AttrRoleMask = attribute.Key("casper.role_mask")
)

// Tracer returns the engine tracer from tp, or from the global provider
// when tp is nil.
func Tracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(InstrumentationName)
}

// StartSpan starts an internal span named name.
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal), trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
