package domain

import "errors"

// ErrSnapshotNotFound is returned when a session ID has no stored snapshot.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrConfigNotFound is returned when a named process configuration is not registered.
var ErrConfigNotFound = errors.New("process configuration not found")

// ErrInvalidTransition is returned when a rule is not a [from, event, to] triple.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrHandlerPanic wraps a panic recovered from a user handler.
var ErrHandlerPanic = errors.New("handler panicked")

// ErrProcessTerminated is returned when an event is sent to a terminated process.
var ErrProcessTerminated = errors.New("process terminated")

// ErrEventNotEnabled is returned when an event has no enabled transition from the active path.
var ErrEventNotEnabled = errors.New("event not enabled")

// ErrInvalidConfig is returned when a state tree or manifest cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrSessionExists is returned when starting a session whose ID is already stored.
var ErrSessionExists = errors.New("session already exists")

// ErrInvalidEvent is returned when an event from outside the process is rejected.
var ErrInvalidEvent = errors.New("invalid event")
