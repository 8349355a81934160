package authware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNoopTracer(t *testing.T) {
	tracer := &NoopTracer{}

	ctx, span := tracer.StartSpan(context.Background(), "authware.authenticate")
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)

	// Must not panic
	span.SetTag("outcome", "passed")
	span.Finish()
}

func TestOpenTelemetryTracer(t *testing.T) {
	tracer := NewOpenTelemetryTracer(noop.NewTracerProvider().Tracer("test"))

	ctx, span := tracer.StartSpan(context.Background(), "authware.authenticate")
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)

	span.SetTag("outcome", "rejected")
	span.SetTag("attempts", 3)
	span.Finish()
}
