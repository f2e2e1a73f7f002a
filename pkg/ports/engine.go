package ports

import (
	"context"

	"github.com/aretw0/nest/pkg/domain"
)

// SessionEngine is the session-oriented view of the engine used by adapters
// (HTTP, MCP) that keep no process in memory between requests.
type SessionEngine interface {
	// Start creates a session, entering the tree with the start event.
	// An empty id asks the engine to generate one.
	Start(ctx context.Context, id string) (*domain.SessionInfo, error)

	// Dispatch applies event to the session and persists the result.
	Dispatch(ctx context.Context, id, event string) (*domain.SessionInfo, error)

	// Snapshot returns the current view of a session without changing it.
	Snapshot(ctx context.Context, id string) (*domain.SessionInfo, error)

	// Transitions lists the rules enabled from the session's active path.
	Transitions(ctx context.Context, id string) ([]domain.Transition, error)

	// Terminate unwinds the session and removes it from the store.
	Terminate(ctx context.Context, id string) error

	// List returns the IDs of the stored sessions.
	List(ctx context.Context) ([]string, error)

	// Inspect returns the state tree served by the engine.
	Inspect() domain.StateConfig
}
