package engine

import (
	"log/slog"
	"time"
)

// Config is the construction-time configuration record for New.
type Config struct {
	// Types is the bitmask selecting which domain executors to instantiate.
	Types Mask
	// MaxParserThreads bounds the width of the Parse/FetchMetaLocal/
	// FetchMetaNet executors; 0 means 1.
	MaxParserThreads int
	// MaxThumbnailerThreads bounds the width of the Thumbnail executor; 0
	// means 1.
	MaxThumbnailerThreads int
	// Timeout is the engine-wide per-request deadline; zero means none.
	Timeout time.Duration

	// Workers supplies the concrete DomainWorker implementation for each
	// domain named in Types. A missing entry for a configured domain is a
	// construction error.
	Workers map[Domain]DomainWorker

	// Audit, if non-nil, receives one AuditRecord per terminal transition.
	Audit AuditSink

	Logger *slog.Logger
}

// PreflightFunc is consulted before accepting a thumbnail request; it
// returns a non-nil error to reject the request with ErrInvalidArgument.
// The Engine Facade never runs this under its own locks.
type PreflightFunc func() error

// Engine is the public construction point: validate config, allocate one
// executor per configured domain, and expose enqueue/cancel/destroy. It is
// a thin, validating wrapper around the Coordinator, which does the actual
// scheduling work.
type Engine struct {
	coord     *Coordinator
	executors []*Executor
	preflight PreflightFunc
	logger    *slog.Logger
}

// New validates cfg and constructs a running Engine. It returns
// ErrInvalidArgument if cfg.Types is empty or names a domain with no
// registered worker.
func New(cfg Config) (*Engine, error) {
	if cfg.Types == 0 {
		return nil, ErrInvalidArgument
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	parserThreads := cfg.MaxParserThreads
	if parserThreads < 1 {
		parserThreads = 1
	}
	thumbThreads := cfg.MaxThumbnailerThreads
	if thumbThreads < 1 {
		thumbThreads = 1
	}

	executors := make(map[Domain]*Executor)
	workers := make(map[Domain]DomainWorker)
	var all []*Executor
	for _, d := range cfg.Types.Domains() {
		w, ok := cfg.Workers[d]
		if !ok || w == nil {
			for _, e := range all {
				e.DrainAndShutdown()
			}
			return nil, ErrInvalidArgument
		}
		threads := parserThreads
		if d == DomainThumbnail {
			threads = thumbThreads
		}
		exec := NewExecutor(threads)
		executors[d] = exec
		workers[d] = w
		all = append(all, exec)
	}

	coord := newCoordinator(executors, workers, cfg.Timeout, cfg.Audit, logger)

	return &Engine{coord: coord, executors: all, logger: logger}, nil
}

// SetPreflight installs the disk-space preflight check run before accepting
// any thumbnail request. It is a synchronous, non-blocking check that never
// touches engine locks.
func (e *Engine) SetPreflight(fn PreflightFunc) {
	e.preflight = fn
}

// EnqueueParse accepts a parse-family request.
func (e *Engine) EnqueueParse(item *Item, mask Mask, interact, subitems bool, cbs ParseCallbacks, userData any) (RequestID, error) {
	return e.coord.EnqueueParse(item, mask, interact, subitems, cbs, userData)
}

// EnqueueThumbnail accepts a thumbnail-family request. Before acceptance it
// runs the configured disk-space preflight check, if any.
func (e *Engine) EnqueueThumbnail(item *Item, seek SeekDescriptor, perRequestTimeout time.Duration, cb ThumbnailCallback, userData any) (RequestID, error) {
	if e.preflight != nil {
		if err := e.preflight(); err != nil {
			e.logger.Warn("thumbnail preflight rejected request",
				slog.String("event_type", "thumbnail_preflight_rejected"),
				slog.Any("error", err))
			return 0, ErrInvalidArgument
		}
	}
	return e.coord.EnqueueThumbnail(item, seek, perRequestTimeout, cb, userData)
}

// Cancel cancels the request matching id, or every live request when
// id == 0, returning the count targeted.
func (e *Engine) Cancel(id RequestID) int {
	return e.coord.Cancel(id)
}

// SetTimeout mutates the engine-wide timeout applied to newly accepted
// requests only; deprecated, retained for interface compatibility.
func (e *Engine) SetTimeout(d time.Duration) {
	e.coord.SetTimeout(d)
}

// LiveRequests reports how many requests are currently in flight.
func (e *Engine) LiveRequests() int {
	return e.coord.liveCount()
}

// Destroy blocks until every in-flight request has delivered its terminal
// callback, then releases every executor. No callback fires after Destroy
// returns.
func (e *Engine) Destroy() {
	e.coord.shutdown()
	for _, exec := range e.executors {
		exec.DrainAndShutdown()
	}
}
