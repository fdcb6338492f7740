// Package daemon wires configuration, the engine, and the completion audit
// journal into a single long-lived process, enforcing single-instance
// execution via a file lock. It sits behind the IPC server that
// cmd/preparserd exposes.
package daemon
