package fsm_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/nest/pkg/domain"
	"github.com/aretw0/nest/pkg/fsm"
)

var T = domain.T

// loginConfig declares FORM once at the root and reuses it under LOGIN and PAGE_EDIT.
func loginConfig() domain.StateConfig {
	return domain.StateConfig{
		Key: "MAIN",
		Transitions: []domain.Transition{
			T("", "*", "LOGIN"),
			T("LOGIN", "ok", "MAIN_VIEW"),
			T("MAIN_VIEW", "*", "MAIN_VIEW"),
			T("MAIN_VIEW", "logout", "LOGIN"),
		},
		States: []domain.StateConfig{
			{
				Key:         "LOGIN",
				Transitions: []domain.Transition{T("", "*", "FORM")},
			},
			{
				Key: "MAIN_VIEW",
				Transitions: []domain.Transition{
					T("*", "*", "PAGE_VIEW"),
					T("*", "logout", ""),
					T("PAGE_VIEW", "edit", "PAGE_EDIT"),
					T("PAGE_EDIT", "ok", "PAGE_UPDATED_MESSAGE"),
				},
				States: []domain.StateConfig{
					{
						Key:         "PAGE_EDIT",
						Transitions: []domain.Transition{T("", "*", "FORM")},
					},
				},
			},
			{
				Key: "FORM",
				Transitions: []domain.Transition{
					T("", "*", "SHOW_FORM"),
					T("SHOW_FORM", "*", "VALIDATE_FORM"),
					T("SHOW_FORM", "cancel", ""),
					T("VALIDATE_FORM", "ok", ""),
					T("VALIDATE_FORM", "*", "SHOW_FORM_ERRORS"),
					T("SHOW_FORM_ERRORS", "*", "SHOW_FORM"),
					T("SHOW_FORM_ERRORS", "cancel", ""),
				},
			},
		},
	}
}

// tracer records enter/exit lines indented by the depth of the active stack.
type tracer struct {
	p     *fsm.Process
	lines []string
}

func newTracer(p *fsm.Process) *tracer {
	tr := &tracer{p: p}
	p.OnStateCreate(func(s *fsm.State) {
		s.OnEnter(func(ctx context.Context, s *fsm.State) error {
			tr.print(fmt.Sprintf("<%s event=%q>", s.Key(), s.Process().Event()))
			return nil
		})
		s.OnExit(func(ctx context.Context, s *fsm.State) error {
			tr.print(fmt.Sprintf("</%s>", s.Key()))
			return nil
		})
	})
	return tr
}

func (tr *tracer) print(msg string) {
	tr.lines = append(tr.lines, strings.Repeat("  ", len(tr.p.Path()))+msg)
}

func pathOf(p *fsm.Process) string {
	return strings.Join(p.Path(), "/")
}
