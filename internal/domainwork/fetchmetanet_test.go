package domainwork_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"preparser/internal/domainwork"
	"preparser/internal/engine"
)

func TestFetchMetaNetWorkerMergesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("title"); got != "seed title" {
			t.Errorf("title query param = %q, want %q", got, "seed title")
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization header = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"title":   "Real Title",
			"year":    "2021",
			"art_url": "https://example.invalid/art.jpg",
		})
	}))
	defer srv.Close()

	item := engine.NewItem("/media/seed.mkv")
	item.SetMeta("title", "seed title")

	var artURL string
	rep := &recordingReporter{onArt: func(u string) { artURL = u }}

	w := &domainwork.FetchMetaNetWorker{Endpoint: srv.URL, Token: "secret"}
	outcome, err := w.Run(context.Background(), &engine.WorkRequest{Item: item}, rep)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Status != engine.StatusOk {
		t.Fatalf("status = %v, want ok", outcome.Status)
	}
	if title, _ := item.Meta("title"); title != "Real Title" {
		t.Fatalf("title = %q, want Real Title", title)
	}
	if artURL != "https://example.invalid/art.jpg" {
		t.Fatalf("artURL = %q", artURL)
	}
}

func TestFetchMetaNetWorkerNoEndpointIsOk(t *testing.T) {
	item := engine.NewItem("/media/seed.mkv")
	w := &domainwork.FetchMetaNetWorker{}

	outcome, err := w.Run(context.Background(), &engine.WorkRequest{Item: item}, noopReporter{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Status != engine.StatusOk {
		t.Fatalf("status = %v, want ok", outcome.Status)
	}
}

func TestFetchMetaNetWorkerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	item := engine.NewItem("/media/seed.mkv")
	w := &domainwork.FetchMetaNetWorker{Endpoint: srv.URL}

	_, err := w.Run(context.Background(), &engine.WorkRequest{Item: item}, noopReporter{})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if got := engine.StatusFromError(err); got != engine.StatusError {
		t.Fatalf("StatusFromError = %v, want StatusError", got)
	}
}
