package observability

import (
	"context"
	"strings"
	"sync"

	"github.com/aretw0/nest/pkg/fsm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/aretw0/nest"

// Spans opens an OpenTelemetry span when a state is entered and ends it when
// the state is exited. A state's span is the child of its parent state's span;
// the root span is the child of whatever span the dispatch context carries.
//
// It needs a long-lived process, such as an orchestrator Instance or the one
// driven by nest run: a process that is dropped without Shutdown leaves the
// spans of its active states open. The Engine discards its process after
// every call.
type Spans struct {
	tracer trace.Tracer
}

// NewSpans creates the instrumentation from tp. A nil tp uses the global provider.
func NewSpans(tp trace.TracerProvider) *Spans {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Spans{tracer: tp.Tracer(instrumentationName)}
}

// Instrument traces every state p creates from now on.
func (sp *Spans) Instrument(p *fsm.Process) func() {
	var (
		mu    sync.Mutex
		spans = make(map[*fsm.State]trace.Span)
	)
	lookup := func(s *fsm.State) (trace.Span, bool) {
		mu.Lock()
		defer mu.Unlock()
		span, ok := spans[s]
		return span, ok
	}

	removeCreate := p.OnStateCreate(func(s *fsm.State) {
		s.OnEnter(func(ctx context.Context, s *fsm.State) error {
			if parent := s.Parent(); parent != nil {
				if span, ok := lookup(parent); ok {
					ctx = trace.ContextWithSpan(ctx, span)
				}
			}
			_, span := sp.tracer.Start(ctx, "state "+s.Key(),
				trace.WithAttributes(
					attribute.String("nest.state", s.Key()),
					attribute.String("nest.path", strings.Join(s.Path(), "/")),
					attribute.String("nest.enter_event", s.Process().Event()),
				),
			)
			mu.Lock()
			spans[s] = span
			mu.Unlock()
			return nil
		})
		s.OnExit(func(ctx context.Context, s *fsm.State) error {
			mu.Lock()
			span, ok := spans[s]
			delete(spans, s)
			mu.Unlock()
			if ok {
				span.SetAttributes(attribute.String("nest.exit_event", s.Process().Event()))
				span.End()
			}
			return nil
		})
	})
	removeError := p.OnStateError(func(ctx context.Context, s *fsm.State, err error) {
		if span, ok := lookup(s); ok {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	})
	return func() {
		removeCreate()
		removeError()
	}
}
