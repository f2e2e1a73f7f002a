/*
Package domain contains the core data model of the nest state-machine engine.

It defines the author-supplied configuration tree, the sentinel keys used by the
transition rules, the phases a process moves through while dispatching, and the
snapshot structure produced by dump and consumed by restore. The package is kept
pure: no I/O, no engine logic.

# Key Entities

  - StateConfig: one node of the statically declared state tree.
  - Transition: a (from, event, to) rule; "*" matches any state or event.
  - Phase: the position of the stepping algorithm after a tick.
  - Snapshot: the serializable live stack (status, event, root-first node dumps).
*/
package domain
