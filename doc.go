/*
Package nest is a hierarchical finite-state-machine engine.

A machine is a tree of states (domain.StateConfig). Every state owns a
transition table of [from, event, to] rules over its direct substates, where
"*" matches any state or event, "" as source is the initial position and "" as
target leaves the state. At runtime a Process keeps the active path from the
root to a leaf and advances it one tick at a time: leaving the current leaf,
choosing the next sibling, entering default substates until a leaf is reached.

# Concept

The engine is split in layers:

  - pkg/fsm: the stepping engine, state handlers and snapshots;
  - pkg/session and pkg/adapters: persistence of snapshots (memory, file, Redis)
    with per-session locking;
  - pkg/orchestrator: long-running processes with named handler modules and
    event triggers;
  - this package: an Engine serving one tree as persistent sessions, used by
    the HTTP and MCP adapters and the nest CLI.

# Usage

	cfg := dsl.New("App").
		On("", "*", "Login").
		On("Login", "ok", "Main").
		MustBuild()

	eng, err := nest.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	info, err := eng.Start(ctx, "session-123")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(info.Path) // [App Login]

	info, err = eng.Dispatch(ctx, "session-123", "ok")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(info.Path) // [App Main]

Events that no enabled transition accepts are rejected with
domain.ErrEventNotEnabled. Use fsm.Process directly for the raw semantics, where
an unmatched event leaves the current state.
*/
package nest
