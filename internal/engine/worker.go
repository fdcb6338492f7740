package engine

import "context"

// WorkRequest describes the piece of work a DomainWorker must perform for
// one sub-task of one request.
type WorkRequest struct {
	Domain Domain
	Item   *Item

	// Interact and Subitems are option flags forwarded to the Parse
	// sub-task only.
	Interact bool
	Subitems bool

	// Seek is forwarded to the Thumbnail sub-task only.
	Seek SeekDescriptor
}

// Outcome is what a DomainWorker hands back to the coordinator on
// successful return (err == nil). Picture is only meaningful for the
// Thumbnail domain and only non-nil when Status is StatusOk.
type Outcome struct {
	Status  Status
	Picture *Picture
}

// Reporter lets a running DomainWorker push intermediate events without
// ending its sub-task. Calls are serialized per request through the
// coordinator's per-record lock, so two sub-tasks of the same request never
// have intermediate callbacks in flight at the same time, and calls become
// no-ops once the request has reached its terminal state.
type Reporter interface {
	SubitemsAdded(items []Subitem)
	AttachmentsAdded()
	ArtFound(url string)
}

// DomainWorker is the uniform contract a pluggable extractor implements for
// one domain. Interrupt is realized by ctx cancellation rather than a
// separate method: implementations must observe ctx.Done() promptly at each
// internal step and return Outcome{Status: StatusInterrupted} (or a
// matching error) once it fires, unless they have already produced another
// outcome, which wins.
type DomainWorker interface {
	Run(ctx context.Context, req *WorkRequest, rep Reporter) (Outcome, error)
}
