package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// AuditSink receives one record per request after its terminal transition
// has already completed. Implementations must not block the caller; the
// coordinator invokes it from a fire-and-forget goroutine.
type AuditSink interface {
	Record(rec AuditRecord)
}

// AuditRecord describes one already-terminated request, for observability
// only.
type AuditRecord struct {
	RequestID    RequestID
	Kind         Kind
	Domains      Mask
	Status       Status
	AcceptedAt   time.Time
	TerminatedAt time.Time
}

// Coordinator composes 1..N domain sub-tasks into one user-visible request,
// enforcing exactly-one terminal callback under arbitrary interleavings of
// cancellation, timeout, worker completion, and teardown. It is the heart
// of the engine; Engine (facade.go) is a thin, validating wrapper around it.
type Coordinator struct {
	table         *table
	executors     map[Domain]*Executor
	workers       map[Domain]DomainWorker
	engineTimeout atomic.Int64 // time.Duration, deprecated SetTimeout target
	shuttingDown  atomic.Bool
	audit         AuditSink
	logger        *slog.Logger
}

func newCoordinator(executors map[Domain]*Executor, workers map[Domain]DomainWorker, engineTimeout time.Duration, audit AuditSink, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		table:     newTable(),
		executors: executors,
		workers:   workers,
		audit:     audit,
		logger:    logger,
	}
	c.engineTimeout.Store(int64(engineTimeout))
	return c
}

func (c *Coordinator) configuredMask() Mask {
	var m Mask
	for d := range c.executors {
		m |= Mask(d)
	}
	return m
}

// SetTimeout mutates the engine-wide timeout used for newly accepted
// requests only; deprecated, retained for interface compatibility.
func (c *Coordinator) SetTimeout(d time.Duration) {
	c.engineTimeout.Store(int64(d))
}

// EnqueueParse accepts a parse-family request: mask must name one or more
// of Parse, FetchMetaLocal, FetchMetaNet. Thumbnail belongs to the separate
// thumbnail family and is rejected here even if the engine has a Thumbnail
// executor configured.
func (c *Coordinator) EnqueueParse(item *Item, mask Mask, interact, subitems bool, cbs ParseCallbacks, userData any) (RequestID, error) {
	if item == nil || mask == 0 || cbs.isZero() {
		return 0, ErrInvalidArgument
	}
	if mask.Has(DomainThumbnail) {
		return 0, ErrInvalidArgument
	}
	if !mask.Subset(c.configuredMask()) {
		return 0, ErrInvalidArgument
	}
	if c.shuttingDown.Load() {
		return 0, ErrShutdown
	}

	item.Hold()
	id := c.table.allocate()
	rec := &Record{
		ID:         id,
		Kind:       KindParse,
		Item:       item,
		AcceptedAt: time.Now(),
		Callbacks:  cbs,
		UserData:   userData,
		domains:    mask,
		remaining:  mask.Popcount(),
	}
	c.table.insert(rec)

	if timeout := time.Duration(c.engineTimeout.Load()); timeout > 0 {
		rec.tm = newTimer(timeout, func() { c.cancelRecord(rec, StatusTimeout) })
	}

	for _, d := range mask.Domains() {
		c.submit(rec, d, interact, subitems, SeekDescriptor{})
	}

	return id, nil
}

// EnqueueThumbnail accepts a thumbnail-family request. perRequestTimeout,
// when positive, supersedes the engine-wide timeout for this request only.
func (c *Coordinator) EnqueueThumbnail(item *Item, seek SeekDescriptor, perRequestTimeout time.Duration, cb ThumbnailCallback, userData any) (RequestID, error) {
	if item == nil || cb.isZero() {
		return 0, ErrInvalidArgument
	}
	if _, ok := c.executors[DomainThumbnail]; !ok {
		return 0, ErrInvalidArgument
	}
	if c.shuttingDown.Load() {
		return 0, ErrShutdown
	}

	item.Hold()
	id := c.table.allocate()
	rec := &Record{
		ID:            id,
		Kind:          KindThumbnail,
		Item:          item,
		AcceptedAt:    time.Now(),
		ThumbCallback: cb,
		UserData:      userData,
		domains:       Mask(DomainThumbnail),
		remaining:     1,
	}
	c.table.insert(rec)

	timeout := perRequestTimeout
	if timeout <= 0 {
		timeout = time.Duration(c.engineTimeout.Load())
	}
	if timeout > 0 {
		rec.tm = newTimer(timeout, func() { c.cancelRecord(rec, StatusTimeout) })
	}

	c.submit(rec, DomainThumbnail, false, false, seek)

	return id, nil
}

func (c *Coordinator) submit(rec *Record, d Domain, interact, subitems bool, seek SeekDescriptor) {
	exec, ok := c.executors[d]
	if !ok {
		c.completeSubtask(rec, d, Outcome{Status: StatusError}, ErrInvalidArgument)
		return
	}
	worker := c.workers[d]
	req := &WorkRequest{Domain: d, Item: rec.Item, Interact: interact, Subitems: subitems, Seek: seek}
	rep := newReporter(rec)

	run := func(ctx context.Context) (Outcome, error) {
		if worker == nil {
			return Outcome{Status: StatusError}, ErrInvalidArgument
		}
		return worker.Run(ctx, req, rep)
	}
	handle, ok := exec.Submit(run, func(outcome Outcome, err error) {
		c.completeSubtask(rec, d, outcome, err)
	})
	if !ok {
		c.completeSubtask(rec, d, Outcome{Status: StatusInterrupted}, nil)
		return
	}

	rec.mu.Lock()
	if rec.subHandles == nil {
		rec.subHandles = make(map[Domain]subTaskHandle)
	}
	rec.subHandles[d] = subTaskHandle{executor: exec, handle: handle}
	rec.mu.Unlock()
}

// completeSubtask merges one sub-task's outcome into the request's
// aggregate status and, once every sub-task has reported in, finishes it.
func (c *Coordinator) completeSubtask(rec *Record, d Domain, outcome Outcome, err error) {
	status := outcome.Status
	if err != nil {
		status = StatusFromError(err)
	}

	rec.mu.Lock()
	rec.status = CombineStatus(rec.status, status)
	delete(rec.subHandles, d)
	rec.remaining--
	if d == DomainThumbnail && status == StatusOk && outcome.Picture != nil {
		rec.picture = outcome.Picture
	}
	remaining := rec.remaining
	var siblings []subTaskHandle
	if status != StatusOk {
		for _, h := range rec.subHandles {
			siblings = append(siblings, h)
		}
	}
	rec.mu.Unlock()

	for _, h := range siblings {
		h.executor.Cancel(h.handle)
	}

	if remaining <= 0 {
		c.finish(rec)
	}
}

// cancelRecord merges tag into rec's aggregate status and cancels every
// outstanding sub-task. It is used both by user-initiated cancel and by the
// timeout timer's fire callback. Returns true if it targeted a live
// (non-terminal) record.
func (c *Coordinator) cancelRecord(rec *Record, tag Status) bool {
	rec.mu.Lock()
	if rec.terminal {
		rec.mu.Unlock()
		return false
	}
	rec.status = CombineStatus(rec.status, tag)
	handles := make([]subTaskHandle, 0, len(rec.subHandles))
	for _, h := range rec.subHandles {
		handles = append(handles, h)
	}
	rec.mu.Unlock()

	for _, h := range handles {
		h.executor.Cancel(h.handle)
	}
	return true
}

// Cancel cancels the request matching id, or every record currently in the
// table when id == 0.
func (c *Coordinator) Cancel(id RequestID) int {
	if id == 0 {
		n := 0
		for _, rec := range c.table.snapshot() {
			if c.cancelRecord(rec, StatusInterrupted) {
				n++
			}
		}
		return n
	}
	rec, ok := c.table.get(id)
	if !ok {
		return 0
	}
	if c.cancelRecord(rec, StatusInterrupted) {
		return 1
	}
	return 0
}

// finish runs the terminal transition exactly once for rec. The terminal
// flag under rec.mu is the sole arbiter of "exactly once"; whichever caller
// observes remaining<=0 && !terminal first performs the transition, every
// other racing caller is a no-op.
func (c *Coordinator) finish(rec *Record) {
	rec.mu.Lock()
	if rec.terminal || rec.remaining > 0 {
		rec.mu.Unlock()
		return
	}
	rec.terminal = true
	status := rec.status
	pic := rec.picture
	rec.mu.Unlock()

	rec.tm.disarm()
	c.table.remove(rec.ID)
	rec.Item.Release()

	// A worker can store an Ok picture and then lose the race to a later
	// timeout or cancellation that raises the aggregate status; the picture
	// is only ever delivered when the aggregate itself is Ok.
	deliverPic := pic
	if status != StatusOk {
		deliverPic = nil
	}

	switch rec.Kind {
	case KindParse:
		if cb := rec.Callbacks.OnPreparseEnded; cb != nil {
			cb(rec.Item, status, rec.UserData)
		}
	case KindThumbnail:
		if cb := rec.ThumbCallback.OnEnded; cb != nil {
			cb(rec.Item, status, deliverPic, rec.UserData)
		}
		if pic != nil {
			pic.Release()
		}
	}

	if c.audit != nil {
		go c.audit.Record(AuditRecord{
			RequestID:    rec.ID,
			Kind:         rec.Kind,
			Domains:      rec.domains,
			Status:       status,
			AcceptedAt:   rec.AcceptedAt,
			TerminatedAt: time.Now(),
		})
	}
}

// shutdown marks the coordinator as shutting down (new enqueue calls are
// rejected from this point on) and cancels every live record.
func (c *Coordinator) shutdown() int {
	c.shuttingDown.Store(true)
	return c.Cancel(0)
}

// liveCount reports the number of requests still in the table, for tests
// and status reporting.
func (c *Coordinator) liveCount() int {
	return c.table.len()
}
