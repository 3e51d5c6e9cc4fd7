package instrument

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/storable/pkg/collection"
	"github.com/vango-dev/storable/pkg/storable"
	"github.com/vango-dev/storable/pkg/ui"
)

const defaultTracerName = "storable"

// SpanName is the name of the span covering one save.
const SpanName = "storable.save"

// TracingConfig configures save tracing.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "storable").
	TracerName string

	// Provider supplies the tracer. Default: the global provider.
	Provider trace.TracerProvider

	// Context is the parent of every save span.
	Context context.Context

	tracer trace.Tracer
}

// TracingOption configures save tracing.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.Provider = tp
	}
}

// WithParentContext sets the context save spans are started from.
func WithParentContext(ctx context.Context) TracingOption {
	return func(c *TracingConfig) {
		c.Context = ctx
	}
}

func defaultTracingConfig() TracingConfig {
	return TracingConfig{
		TracerName: defaultTracerName,
		Context:    context.Background(),
	}
}

// Tracing records a span from storable-beforesave until storable-save or
// storable-exception.
type Tracing struct {
	config TracingConfig
}

// NewTracing resolves the tracer.
func NewTracing(opts ...TracingOption) *Tracing {
	config := defaultTracingConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider != nil {
		config.tracer = config.Provider.Tracer(config.TracerName)
	} else {
		config.tracer = otel.Tracer(config.TracerName)
	}
	return &Tracing{config: config}
}

// Attach traces saves of host under the controller name.
func (t *Tracing) Attach(host ui.Observable, name string) (detach func()) {
	var (
		mu   sync.Mutex
		span trace.Span
	)
	take := func() trace.Span {
		mu.Lock()
		defer mu.Unlock()
		s := span
		span = nil
		return s
	}

	offs := []func(){
		host.On(storable.EventBeforeSave, func(args ...any) bool {
			if action, ok := ui.Arg[collection.Action](args, 1); ok && action == collection.ActionDestroy {
				return true
			}
			mu.Lock()
			defer mu.Unlock()
			if span != nil {
				span.SetStatus(codes.Error, "abandoned")
				span.End()
			}
			_, span = t.config.tracer.Start(t.config.Context, SpanName,
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(attribute.String("storable.controller", name)),
			)
			return true
		}),
		host.On(storable.EventSave, func(args ...any) bool {
			s := take()
			if s == nil {
				return true
			}
			if ev, ok := ui.Arg[collection.WriteEvent](args, 1); ok {
				s.SetAttributes(
					attribute.String("storable.action", string(ev.Action)),
					attribute.Int("storable.records", len(ev.Records)),
				)
			}
			s.SetStatus(codes.Ok, "")
			s.End()
			return true
		}),
		host.On(storable.EventException, func(args ...any) bool {
			s := take()
			if s == nil {
				return true
			}
			msg := "write failed"
			if ev, ok := ui.Arg[collection.ExceptionEvent](args, 1); ok {
				msg = ev.Message()
				s.SetAttributes(
					attribute.String("storable.action", string(ev.Action)),
					attribute.String("storable.exception_type", string(ev.Type)),
				)
			}
			s.RecordError(errors.New(msg))
			s.SetStatus(codes.Error, msg)
			s.End()
			return true
		}),
	}
	return func() {
		for _, off := range offs {
			off()
		}
		if s := take(); s != nil {
			s.End()
		}
	}
}
