package observability_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/nest/pkg/fsm"
	"github.com/aretw0/nest/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpans_FollowTheStack(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	p := fsm.New(formConfig())
	observability.NewSpans(tp).Instrument(p)
	p.OnStateCreate(func(s *fsm.State) {
		if s.Key() == "CHECK" {
			s.OnExit(func(ctx context.Context, s *fsm.State) error {
				return errors.New("cleanup failed")
			})
		}
	})

	ctx := context.Background()
	for _, ev := range []string{"", "submit", "ok"} {
		p.Dispatch(ctx, ev)
	}

	ended := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range recorder.Ended() {
		ended[s.Name()] = s
	}
	require.Len(t, ended, 3, "SHOW, CHECK and FORM were exited")

	form := ended["state FORM"]
	show := ended["state SHOW"]
	check := ended["state CHECK"]
	require.NotNil(t, form)
	require.NotNil(t, show)
	require.NotNil(t, check)

	assert.Equal(t, form.SpanContext().SpanID(), show.Parent().SpanID())
	assert.Equal(t, form.SpanContext().SpanID(), check.Parent().SpanID())
	assert.Equal(t, form.SpanContext().TraceID(), check.SpanContext().TraceID())

	assert.Equal(t, codes.Error, check.Status().Code)
	assert.Equal(t, codes.Unset, show.Status().Code)

	started := map[string]bool{}
	for _, s := range recorder.Started() {
		started[s.Name()] = true
	}
	assert.True(t, started["state ROOT"])
	assert.True(t, started["state DONE"])
}

func TestSpans_ShutdownEndsOpenSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	p := fsm.New(formConfig())
	observability.NewSpans(tp).Instrument(p)

	ctx := context.Background()
	p.Dispatch(ctx, "")
	require.NotEmpty(t, recorder.Started())
	assert.Less(t, len(recorder.Ended()), len(recorder.Started()))

	p.Shutdown(ctx, "stop")
	assert.Len(t, recorder.Ended(), len(recorder.Started()))
}
