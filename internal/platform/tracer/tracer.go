// Package tracer is a thin tracing facade so the verification pipeline can be
// instrumented without spreading OpenTelemetry types through the codebase.
package tracer

import "context"

// Span is one traced unit of work. End records err on the span when non-nil.
type Span interface {
	End(err error)
	SetAttributes(attrs ...Attribute)
}

// Tracer starts spans.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key/value pair attached to a span. Supported value types:
// string, bool, int, int64, float64.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute { return Attribute{Key: key, Value: value} }

func Bool(key string, value bool) Attribute { return Attribute{Key: key, Value: value} }

func Int(key string, value int) Attribute { return Attribute{Key: key, Value: value} }

// NoopTracer does nothing. Used in tests and when tracing is disabled.
type NoopTracer struct{}

func NewNoop() *NoopTracer { return &NoopTracer{} }

func (t *NoopTracer) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

func (noopSpan) SetAttributes(...Attribute) {}

var (
	_ Tracer = (*NoopTracer)(nil)
	_ Span   = noopSpan{}
)
