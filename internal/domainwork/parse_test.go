package domainwork_test

import (
	"context"
	"testing"

	"preparser/internal/domainwork"
	"preparser/internal/engine"
)

func TestParseWorkerDerivesTitle(t *testing.T) {
	item := engine.NewItem("/media/The.Matrix-1999_extended.mkv")
	w := &domainwork.ParseWorker{}

	outcome, err := w.Run(context.Background(), &engine.WorkRequest{Item: item}, noopReporter{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Status != engine.StatusOk {
		t.Fatalf("status = %v, want ok", outcome.Status)
	}
	title, ok := item.Meta("title")
	if !ok || title == "" {
		t.Fatal("expected non-empty title")
	}
}

func TestParseWorkerSynthesizesSubitems(t *testing.T) {
	item := engine.NewItem("/media/show.mkv")
	w := &domainwork.ParseWorker{ChapterCount: 3}

	var reported []engine.Subitem
	rep := &recordingReporter{onSubitems: func(s []engine.Subitem) { reported = s }}

	_, err := w.Run(context.Background(), &engine.WorkRequest{Item: item, Subitems: true}, rep)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(reported) != 3 {
		t.Fatalf("got %d subitems, want 3", len(reported))
	}
}

func TestParseWorkerHonorsCancellation(t *testing.T) {
	item := engine.NewItem("/media/show.mkv")
	w := &domainwork.ParseWorker{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := w.Run(ctx, &engine.WorkRequest{Item: item}, noopReporter{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Status != engine.StatusInterrupted {
		t.Fatalf("status = %v, want interrupted", outcome.Status)
	}
}

type noopReporter struct{}

func (noopReporter) SubitemsAdded([]engine.Subitem) {}
func (noopReporter) AttachmentsAdded()              {}
func (noopReporter) ArtFound(string)                {}

type recordingReporter struct {
	onSubitems    func([]engine.Subitem)
	onAttachments func()
	onArt         func(string)
}

func (r *recordingReporter) SubitemsAdded(s []engine.Subitem) {
	if r.onSubitems != nil {
		r.onSubitems(s)
	}
}

func (r *recordingReporter) AttachmentsAdded() {
	if r.onAttachments != nil {
		r.onAttachments()
	}
}

func (r *recordingReporter) ArtFound(url string) {
	if r.onArt != nil {
		r.onArt(url)
	}
}
