package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's error taxonomy. Synchronous rejections
// (InvalidArgument, Shutdown) are returned directly from enqueue operations;
// asynchronous outcomes (WorkerFailure, Timeout, Interrupted) only ever
// surface through a terminal callback's Status.
var (
	ErrInvalidArgument = errors.New("engine: invalid argument")
	ErrShutdown        = errors.New("engine: shutting down")
	ErrWorkerFailure   = errors.New("engine: worker failure")
	ErrTimeout         = errors.New("engine: timeout")
	ErrInterrupted     = errors.New("engine: interrupted")
)

// WorkerStatusError pairs a sentinel marker with the aggregate Status the
// coordinator should fold the error into.
type WorkerStatusError struct {
	status Status
	marker error
	detail string
}

func (e *WorkerStatusError) Error() string {
	if e.detail == "" {
		return e.marker.Error()
	}
	return fmt.Sprintf("%s: %s", e.marker, e.detail)
}

func (e *WorkerStatusError) Unwrap() error {
	return e.marker
}

// Status returns the aggregate status this error should contribute.
func (e *WorkerStatusError) Status() Status {
	return e.status
}

// WrapWorkerError tags an arbitrary domain-worker error as a worker failure
// carrying StatusError as its aggregate status.
func WrapWorkerError(domain, detail string, err error) error {
	msg := detail
	if domain != "" {
		if msg == "" {
			msg = domain
		} else {
			msg = domain + ": " + msg
		}
	}
	se := &WorkerStatusError{status: StatusError, marker: ErrWorkerFailure, detail: msg}
	if err == nil {
		return se
	}
	return fmt.Errorf("%w: %w", se, err)
}

// StatusFromError derives the aggregate Status a sub-task outcome should
// contribute given an error returned by a DomainWorker.
func StatusFromError(err error) Status {
	if err == nil {
		return StatusOk
	}
	var se *WorkerStatusError
	if errors.As(err, &se) {
		return se.Status()
	}
	switch {
	case errors.Is(err, ErrTimeout):
		return StatusTimeout
	case errors.Is(err, ErrInterrupted):
		return StatusInterrupted
	default:
		return StatusError
	}
}
