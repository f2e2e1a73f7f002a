package fsm_test

import (
	"context"
	"testing"

	"github.com/aretw0/nest/pkg/domain"
	"github.com/aretw0/nest/pkg/fsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabledTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("not started", func(t *testing.T) {
		p := fsm.New(loginConfig())
		assert.Empty(t, fsm.EnabledTransitions(p))
	})

	t.Run("inside the login form", func(t *testing.T) {
		p := fsm.New(loginConfig())
		p.Dispatch(ctx, "")
		require.Equal(t, "MAIN/LOGIN/FORM/SHOW_FORM", pathOf(p))

		assert.Equal(t, []domain.Transition{
			T("LOGIN", "ok", "MAIN_VIEW"),
			T("SHOW_FORM", "*", "VALIDATE_FORM"),
			T("SHOW_FORM", "cancel", ""),
		}, fsm.EnabledTransitions(p))
	})

	t.Run("inner wildcard shadows outer rule, final target does not", func(t *testing.T) {
		p := fsm.New(loginConfig())
		for _, ev := range []string{"", "submit", "ok"} {
			p.Dispatch(ctx, ev)
		}
		require.Equal(t, "MAIN/MAIN_VIEW/PAGE_VIEW", pathOf(p))

		assert.Equal(t, []domain.Transition{
			T("MAIN_VIEW", "logout", "LOGIN"),
			T("PAGE_VIEW", "edit", "PAGE_EDIT"),
			T("PAGE_VIEW", "*", "PAGE_VIEW"),
			T("PAGE_VIEW", "logout", ""),
		}, fsm.EnabledTransitions(p))
	})

	t.Run("finished", func(t *testing.T) {
		p := fsm.New(loginConfig())
		p.Dispatch(ctx, "")
		p.Shutdown(ctx, "stop")
		assert.Empty(t, fsm.EnabledTransitions(p))
	})
}

func TestCanDispatch(t *testing.T) {
	ctx := context.Background()
	cfg := domain.StateConfig{
		Key: "ROOT",
		Transitions: []domain.Transition{
			T("", "*", "A"),
			T("A", "go", "B"),
		},
	}
	p := fsm.New(cfg)
	assert.False(t, fsm.CanDispatch(p, "go"), "nothing is enabled before start")

	p.Dispatch(ctx, "")
	assert.True(t, fsm.CanDispatch(p, "go"))
	assert.False(t, fsm.CanDispatch(p, "stop"))

	login := fsm.New(loginConfig())
	login.Dispatch(ctx, "")
	assert.True(t, fsm.CanDispatch(login, "anything"), "wildcard event rule accepts any event")
}
