package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"preparser/internal/engine"
)

// blockingWorker runs until ctx is cancelled or a result is pushed onto
// resultCh, whichever comes first.
type blockingWorker struct {
	resultCh chan engine.Outcome
	started  chan struct{}
}

func newBlockingWorker() *blockingWorker {
	return &blockingWorker{resultCh: make(chan engine.Outcome, 1), started: make(chan struct{}, 8)}
}

func (w *blockingWorker) Run(ctx context.Context, req *engine.WorkRequest, rep engine.Reporter) (engine.Outcome, error) {
	w.started <- struct{}{}
	select {
	case out := <-w.resultCh:
		return out, nil
	case <-ctx.Done():
		return engine.Outcome{Status: engine.StatusInterrupted}, nil
	}
}

// instantWorker returns a fixed outcome immediately, optionally emitting
// subitems first.
type instantWorker struct {
	outcome  engine.Outcome
	err      error
	subitems []engine.Subitem
	artURL   string
}

func (w *instantWorker) Run(ctx context.Context, req *engine.WorkRequest, rep engine.Reporter) (engine.Outcome, error) {
	if len(w.subitems) > 0 {
		rep.SubitemsAdded(w.subitems)
	}
	if w.artURL != "" {
		rep.ArtFound(w.artURL)
	}
	return w.outcome, w.err
}

// sleepWorker sleeps for d then returns Ok, simulating a worker that
// finishes after a timeout should already have fired.
type sleepWorker struct{ d time.Duration }

func (w *sleepWorker) Run(ctx context.Context, req *engine.WorkRequest, rep engine.Reporter) (engine.Outcome, error) {
	select {
	case <-time.After(w.d):
		return engine.Outcome{Status: engine.StatusOk}, nil
	case <-ctx.Done():
		return engine.Outcome{Status: engine.StatusInterrupted}, nil
	}
}

func newEngine(t *testing.T, types engine.Mask, workers map[engine.Domain]engine.DomainWorker, parserThreads, thumbThreads int, timeout time.Duration) *engine.Engine {
	t.Helper()
	e, err := engine.New(engine.Config{
		Types:                 types,
		MaxParserThreads:      parserThreads,
		MaxThumbnailerThreads: thumbThreads,
		Timeout:               timeout,
		Workers:               workers,
	})
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	return e
}

func TestSingleParseSuccess(t *testing.T) {
	worker := &instantWorker{
		outcome:  engine.Outcome{Status: engine.StatusOk},
		subitems: []engine.Subitem{{Title: "Chapter 1"}, {Title: "Chapter 2"}},
	}
	e := newEngine(t, engine.Mask(engine.DomainParse), map[engine.Domain]engine.DomainWorker{engine.DomainParse: worker}, 1, 1, 0)
	defer e.Destroy()

	item := engine.NewItem("movie.mkv")
	defer item.Release()

	var subitemCalls, endedCalls int
	var endedStatus engine.Status
	done := make(chan struct{})
	_, err := e.EnqueueParse(item, engine.Mask(engine.DomainParse), false, true, engine.ParseCallbacks{
		OnSubitemsAdded: func(it *engine.Item, added []engine.Subitem, ud any) {
			subitemCalls++
			if len(added) != 2 {
				t.Errorf("expected 2 subitems, got %d", len(added))
			}
		},
		OnPreparseEnded: func(it *engine.Item, status engine.Status, ud any) {
			endedCalls++
			endedStatus = status
			close(done)
		},
	}, nil)
	if err != nil {
		t.Fatalf("EnqueueParse failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for terminal callback")
	}

	if subitemCalls != 1 {
		t.Errorf("expected exactly 1 subitems callback, got %d", subitemCalls)
	}
	if endedCalls != 1 {
		t.Errorf("expected exactly 1 terminal callback, got %d", endedCalls)
	}
	if endedStatus != engine.StatusOk {
		t.Errorf("expected StatusOk, got %v", endedStatus)
	}
}

func TestParseAndFetchMetaOneErrorWins(t *testing.T) {
	workers := map[engine.Domain]engine.DomainWorker{
		engine.DomainParse:          &instantWorker{outcome: engine.Outcome{Status: engine.StatusOk}},
		engine.DomainFetchMetaLocal: &instantWorker{outcome: engine.Outcome{Status: engine.StatusOk}},
		engine.DomainFetchMetaNet:   &instantWorker{outcome: engine.Outcome{Status: engine.StatusError}, err: engine.WrapWorkerError("fetchmeta_net", "boom", nil)},
	}
	types := engine.Mask(engine.DomainParse) | engine.Mask(engine.DomainFetchMetaLocal) | engine.Mask(engine.DomainFetchMetaNet)
	e := newEngine(t, types, workers, 2, 1, 0)
	defer e.Destroy()

	item := engine.NewItem("movie.mkv")
	defer item.Release()

	done := make(chan engine.Status, 1)
	_, err := e.EnqueueParse(item, types, false, false, engine.ParseCallbacks{
		OnPreparseEnded: func(it *engine.Item, status engine.Status, ud any) {
			done <- status
		},
	}, nil)
	if err != nil {
		t.Fatalf("EnqueueParse failed: %v", err)
	}

	select {
	case status := <-done:
		if status != engine.StatusError {
			t.Errorf("expected StatusError to win precedence, got %v", status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for terminal callback")
	}
}

func TestTimeoutWinsOverLateCompletion(t *testing.T) {
	worker := &sleepWorker{d: 150 * time.Millisecond}
	e := newEngine(t, engine.Mask(engine.DomainParse), map[engine.Domain]engine.DomainWorker{engine.DomainParse: worker}, 1, 1, 10*time.Millisecond)
	defer e.Destroy()

	item := engine.NewItem("movie.mkv")
	defer item.Release()

	done := make(chan engine.Status, 1)
	_, err := e.EnqueueParse(item, engine.Mask(engine.DomainParse), false, false, engine.ParseCallbacks{
		OnPreparseEnded: func(it *engine.Item, status engine.Status, ud any) {
			done <- status
		},
	}, nil)
	if err != nil {
		t.Fatalf("EnqueueParse failed: %v", err)
	}

	select {
	case status := <-done:
		if status != engine.StatusTimeout {
			t.Errorf("expected StatusTimeout, got %v", status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for terminal callback")
	}
}

func TestCancelDuringQueue(t *testing.T) {
	worker := newBlockingWorker()
	e := newEngine(t, engine.Mask(engine.DomainParse), map[engine.Domain]engine.DomainWorker{engine.DomainParse: worker}, 1, 1, 0)
	defer e.Destroy()

	item := engine.NewItem("movie.mkv")
	defer item.Release()

	var mu sync.Mutex
	results := make(map[int]engine.Status)
	var wg sync.WaitGroup
	ids := make([]engine.RequestID, 5)

	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		id, err := e.EnqueueParse(item, engine.Mask(engine.DomainParse), false, false, engine.ParseCallbacks{
			OnPreparseEnded: func(it *engine.Item, status engine.Status, ud any) {
				mu.Lock()
				results[i] = status
				mu.Unlock()
				wg.Done()
			},
		}, nil)
		if err != nil {
			t.Fatalf("EnqueueParse[%d] failed: %v", i, err)
		}
		ids[i] = id
	}

	<-worker.started // request 0 has been dispatched and is now blocking

	if n := e.Cancel(ids[3]); n != 1 {
		t.Fatalf("expected Cancel to target 1 record, got %d", n)
	}

	// Each of the four requests left (indices 0, 1, 2 and 4) blocks until it
	// receives a result, one at a time on the single worker thread.
	for i := 0; i < 4; i++ {
		worker.resultCh <- engine.Outcome{Status: engine.StatusOk}
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if results[3] != engine.StatusInterrupted {
		t.Errorf("expected request #4 (index 3) to be Interrupted, got %v", results[3])
	}
}

func TestCancelAll(t *testing.T) {
	worker := newBlockingWorker()
	e := newEngine(t, engine.Mask(engine.DomainParse), map[engine.Domain]engine.DomainWorker{engine.DomainParse: worker}, 3, 1, 0)
	defer e.Destroy()

	item := engine.NewItem("movie.mkv")
	defer item.Release()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		_, err := e.EnqueueParse(item, engine.Mask(engine.DomainParse), false, false, engine.ParseCallbacks{
			OnPreparseEnded: func(it *engine.Item, status engine.Status, ud any) {
				wg.Done()
			},
		}, nil)
		if err != nil {
			t.Fatalf("EnqueueParse failed: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		<-worker.started
	}

	if n := e.Cancel(0); n != 3 {
		t.Fatalf("expected Cancel(0) to return 3, got %d", n)
	}

	wg.Wait()

	if n := e.LiveRequests(); n != 0 {
		t.Errorf("expected empty table after cancel-all, got %d live requests", n)
	}
}

func TestThumbnailWithSeek(t *testing.T) {
	pic := engine.NewPicture(nil)
	worker := &instantWorker{outcome: engine.Outcome{Status: engine.StatusOk, Picture: pic}}
	e := newEngine(t, engine.Mask(engine.DomainThumbnail), map[engine.Domain]engine.DomainWorker{engine.DomainThumbnail: worker}, 1, 1, 0)
	defer e.Destroy()

	item := engine.NewItem("movie.mkv")
	defer item.Release()

	seek := engine.SeekDescriptor{Kind: engine.SeekByPosition, Fraction: 0.5, Precision: engine.PrecisionFast}
	done := make(chan struct{})
	var gotPic *engine.Picture
	_, err := e.EnqueueThumbnail(item, seek, 0, engine.ThumbnailCallback{
		OnEnded: func(it *engine.Item, status engine.Status, p *engine.Picture, ud any) {
			if status != engine.StatusOk {
				t.Errorf("expected StatusOk, got %v", status)
			}
			gotPic = p
			p.Hold() // caller retains the picture beyond the callback
			close(done)
		},
	}, nil)
	if err != nil {
		t.Fatalf("EnqueueThumbnail failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for terminal callback")
	}

	if gotPic == nil {
		t.Fatal("expected non-nil picture")
	}
	if gotPic.RefCount() != 1 {
		t.Errorf("expected refcount 1 after hold+coordinator release, got %d", gotPic.RefCount())
	}
}

func TestDestroyDrainsInFlight(t *testing.T) {
	worker := newBlockingWorker()
	e := newEngine(t, engine.Mask(engine.DomainParse), map[engine.Domain]engine.DomainWorker{engine.DomainParse: worker}, 2, 1, 0)

	item := engine.NewItem("movie.mkv")
	defer item.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	statuses := make([]engine.Status, 0, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		_, err := e.EnqueueParse(item, engine.Mask(engine.DomainParse), false, false, engine.ParseCallbacks{
			OnPreparseEnded: func(it *engine.Item, status engine.Status, ud any) {
				mu.Lock()
				statuses = append(statuses, status)
				mu.Unlock()
				wg.Done()
			},
		}, nil)
		if err != nil {
			t.Fatalf("EnqueueParse failed: %v", err)
		}
	}

	<-worker.started
	<-worker.started

	e.Destroy()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for _, s := range statuses {
		if s != engine.StatusInterrupted {
			t.Errorf("expected Interrupted after destroy, got %v", s)
		}
	}
}

func TestEnqueueAfterDestroyRejected(t *testing.T) {
	worker := &instantWorker{outcome: engine.Outcome{Status: engine.StatusOk}}
	e := newEngine(t, engine.Mask(engine.DomainParse), map[engine.Domain]engine.DomainWorker{engine.DomainParse: worker}, 1, 1, 0)
	e.Destroy()

	item := engine.NewItem("movie.mkv")
	defer item.Release()

	id, err := e.EnqueueParse(item, engine.Mask(engine.DomainParse), false, false, engine.ParseCallbacks{
		OnPreparseEnded: func(*engine.Item, engine.Status, any) {
			t.Error("callback must never fire for a request rejected after destroy")
		},
	}, nil)
	if id != 0 || err == nil {
		t.Fatalf("expected rejection after destroy, got id=%d err=%v", id, err)
	}
}

func TestBoundaryBehaviors(t *testing.T) {
	worker := &instantWorker{outcome: engine.Outcome{Status: engine.StatusOk}}
	e := newEngine(t, engine.Mask(engine.DomainParse), map[engine.Domain]engine.DomainWorker{engine.DomainParse: worker}, 1, 1, 0)
	defer e.Destroy()

	item := engine.NewItem("movie.mkv")
	defer item.Release()

	cbs := engine.ParseCallbacks{OnPreparseEnded: func(*engine.Item, engine.Status, any) {}}

	if _, err := e.EnqueueParse(item, 0, false, false, cbs, nil); err == nil {
		t.Error("expected InvalidArgument for zero bitmask")
	}
	if _, err := e.EnqueueParse(item, engine.Mask(engine.DomainThumbnail), false, false, cbs, nil); err == nil {
		t.Error("expected InvalidArgument for unconfigured domain")
	}
	if n := e.Cancel(999); n != 0 {
		t.Errorf("expected 0 for unknown id, got %d", n)
	}
}
