// Package ipc exposes the daemon over JSON-RPC on a Unix domain socket and
// ships the matching client used by the CLI. The engine itself never gains
// a wire protocol; this package is purely the daemon/CLI transport, kept
// separate from the engine's own API.
package ipc
