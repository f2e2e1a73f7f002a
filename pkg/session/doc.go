/*
Package session implements session management and persistence orchestration.

It serializes access to a session across goroutines (reference-counted local
locks) and, optionally, across replicas (a ports.DistributedLocker), and moves
fsm processes in and out of a ports.SnapshotStore through Resume and Checkpoint.
*/
package session
