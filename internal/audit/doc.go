// Package audit implements the completion audit journal: a SQLite-backed,
// append-only log of terminal request outcomes, written once a request has
// already left the engine's in-memory request table.
//
// This is explicitly not durable queuing: the journal only ever records
// requests that have already reached a terminal state, and the engine never
// reads from it to reconstruct in-flight work.
package audit
