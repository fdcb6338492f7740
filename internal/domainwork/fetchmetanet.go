package domainwork

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"preparser/internal/engine"
)

// netMeta is the shape expected back from the configured metadata endpoint.
type netMeta struct {
	Title   string `json:"title"`
	Year    string `json:"year"`
	Summary string `json:"summary"`
	ArtURL  string `json:"art_url"`
}

// FetchMetaNetWorker queries a remote metadata service over HTTP, keyed by
// the item's title (as populated by an earlier Parse sub-task). A found
// artwork URL is reported through Reporter.ArtFound as an attachment-
// discovery event rather than fetched eagerly with a blocking download.
type FetchMetaNetWorker struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
	Client   *http.Client
}

func (w *FetchMetaNetWorker) Run(ctx context.Context, req *engine.WorkRequest, rep engine.Reporter) (engine.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return engine.Outcome{Status: engine.StatusInterrupted}, nil
	}
	if w.Endpoint == "" {
		return engine.Outcome{Status: engine.StatusOk}, nil
	}

	title, _ := req.Item.Meta("title")
	if title == "" {
		title = req.Item.SourcePath()
	}

	timeout := w.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	meta, err := w.fetch(reqCtx, title)
	if err != nil {
		if reqCtx.Err() != nil {
			return engine.Outcome{Status: engine.StatusInterrupted}, nil
		}
		return engine.Outcome{}, engine.WrapWorkerError("fetchmeta_net", err.Error(), err)
	}

	if meta.Title != "" {
		req.Item.SetMeta("title", meta.Title)
	}
	if meta.Year != "" {
		req.Item.SetMeta("year", meta.Year)
	}
	if meta.Summary != "" {
		req.Item.SetMeta("summary", meta.Summary)
	}
	if meta.ArtURL != "" {
		rep.ArtFound(meta.ArtURL)
	}

	return engine.Outcome{Status: engine.StatusOk}, nil
}

func (w *FetchMetaNetWorker) fetch(ctx context.Context, title string) (netMeta, error) {
	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}

	u, err := url.Parse(w.Endpoint)
	if err != nil {
		return netMeta{}, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("title", title)
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return netMeta{}, fmt.Errorf("build request: %w", err)
	}
	if w.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+w.Token)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return netMeta{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return netMeta{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var meta netMeta
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return netMeta{}, fmt.Errorf("decode response: %w", err)
	}
	return meta, nil
}
