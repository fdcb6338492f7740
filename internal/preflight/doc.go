// Package preflight runs synchronous, non-blocking checks that gate request
// acceptance without ever touching engine locks: today, a disk-space check
// against the thumbnail scratch directory.
package preflight
