package observability

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/nest/pkg/fsm"
)

// Styler decorates a trace line before it is written. enter is false for exit lines.
type Styler func(line string, enter bool) string

// Tracer writes one line per entered or exited state:
//
//	<MAIN event="">
//	  <LOGIN event="">
//	  </LOGIN> <!-- event="ok" -->
//
// Lines are indented by the depth of the active state.
type Tracer struct {
	w           io.Writer
	prefix      string
	lineNumbers bool
	style       Styler

	mu   sync.Mutex
	line int
}

// TracerOption configures a Tracer.
type TracerOption func(*Tracer)

// WithPrefix prepends prefix to every line, e.g. to tell processes apart.
func WithPrefix(prefix string) TracerOption {
	return func(t *Tracer) {
		t.prefix = prefix
	}
}

// WithLineNumbers numbers the lines, starting at 1.
func WithLineNumbers() TracerOption {
	return func(t *Tracer) {
		t.lineNumbers = true
	}
}

// WithStyle decorates every line, e.g. with terminal colors.
func WithStyle(style Styler) TracerOption {
	return func(t *Tracer) {
		t.style = style
	}
}

// NewTracer creates a tracer writing to w.
func NewTracer(w io.Writer, opts ...TracerOption) *Tracer {
	t := &Tracer{w: w}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Attach traces every state p creates from now on.
func (t *Tracer) Attach(p *fsm.Process) func() {
	return p.OnStateCreate(t.AttachState)
}

// AttachState traces a single state.
func (t *Tracer) AttachState(s *fsm.State) {
	s.OnEnter(func(ctx context.Context, s *fsm.State) error {
		t.print(s, fmt.Sprintf("<%s event=%q>", s.Key(), s.Process().Event()), true)
		return nil
	})
	s.OnExit(func(ctx context.Context, s *fsm.State) error {
		t.print(s, fmt.Sprintf("</%s> <!-- event=%q -->", s.Key(), s.Process().Event()), false)
		return nil
	})
}

func (t *Tracer) print(s *fsm.State, msg string, enter bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	b.WriteString(t.prefix)
	if t.lineNumbers {
		t.line++
		fmt.Fprintf(&b, "[%d]", t.line)
	}
	b.WriteString(strings.Repeat("  ", s.Depth()))
	b.WriteString(msg)

	line := b.String()
	if t.style != nil {
		line = t.style(line, enter)
	}
	fmt.Fprintln(t.w, line)
}
