/*
Package fsm implements the stepping engine of nest: the transition-table
compiler, the live stack of state nodes and the dispatch, shutdown, dump and
restore algorithms.

A Process owns the leaf-most active State. Every State points to its parent, so
the active path is the chain from the leaf up to the root. A single Dispatch call
keeps applying the same event tick after tick: it enters default substates, replaces
nodes with their siblings and pops levels whose table has no rule for the event,
until the stop condition (by default "reached a leaf") is met or the stack empties.

# Resolution

A rule lookup at one level tries (state, event), (*, event), (state, *) and (*, *)
in that order. No match means "leave this level". The target key is materialized
by scanning the parent and its ancestors for the first one declaring a child with
that key, so shared sub-trees can be declared once high in the tree.

# Concurrency

A Process is not safe for concurrent use. Handlers run sequentially on the
goroutine that called Dispatch; callers that receive events from several sources
must serialize them (see package orchestrator).
*/
package fsm
