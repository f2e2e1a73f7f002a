package observability

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aretw0/nest/pkg/fsm"
)

// LogHooks logs state lifecycle events at debug level and handler failures at
// warn level. The returned function detaches the hooks.
func LogHooks(p *fsm.Process, logger *slog.Logger) func() {
	removeCreate := p.OnStateCreate(func(s *fsm.State) {
		s.OnEnter(func(ctx context.Context, s *fsm.State) error {
			logger.DebugContext(ctx, "state entered",
				"state", s.Key(),
				"path", strings.Join(s.Path(), "/"),
				"event", s.Process().Event(),
			)
			return nil
		})
		s.OnExit(func(ctx context.Context, s *fsm.State) error {
			logger.DebugContext(ctx, "state exited",
				"state", s.Key(),
				"path", strings.Join(s.Path(), "/"),
				"event", s.Process().Event(),
			)
			return nil
		})
	})
	removeError := p.OnStateError(func(ctx context.Context, s *fsm.State, err error) {
		logger.WarnContext(ctx, "state handler failed",
			"state", s.Key(),
			"event", s.Process().Event(),
			"err", err,
		)
	})
	return func() {
		removeCreate()
		removeError()
	}
}
