/*
Package orchestrator runs fsm processes with business logic attached by name.

Handler code is registered as Modules in a Registry under a process name. When
a state is entered, the Registry resolves the stages whose names match the
state key (KEY, KEYController, KEYView, KEYTrigger, KEYTest and their State
variants, plus "default" for the root state) and the Instance runs them:

  - a Handle stage runs on enter and may return a Cleanup run on exit;
  - a Trigger stage runs in its own goroutine and sends events on a channel
    until the state is exited, which cancels its context.

An Instance owns one fsm.Process and serializes every dispatch on a single
worker goroutine, so handlers never race with each other. Events posted from
outside (Context.Post, Context.Dispatch, triggers) are dropped unless an
enabled transition accepts them.

The Launcher starts the processes listed by a manifest, sharing one parent
Context between them.
*/
package orchestrator
