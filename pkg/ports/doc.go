/*
Package ports defines the driven ports (interfaces) around the nest engine.

The core engine in pkg/fsm is purely in-memory; these interfaces let hosts plug
storage backends, distributed locks and named configuration sources around it.

# Key Interfaces

  - SnapshotStore: persists and loads process snapshots by session ID.
  - DistributedLocker: serializes access to a session across replicas.
  - ConfigLoader: resolves named state trees (registries, manifests).
  - SessionEngine: the session-oriented API served by the HTTP and MCP adapters.
*/
package ports
