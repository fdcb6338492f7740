// Package engine implements the preparser's request-scheduling core: bounded
// per-domain executors, a request table, and a coordinator guaranteeing
// exactly one terminal callback per accepted request under arbitrary
// interleavings of cancellation, timeout, worker completion, and teardown.
//
// Callers construct an Engine via New, then call EnqueueParse or
// EnqueueThumbnail to accept work and Cancel or Destroy to tear it down.
// Concrete domain-worker implementations live in internal/domainwork.
package engine
