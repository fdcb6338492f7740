package domainwork

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"preparser/internal/engine"
)

// sidecarMeta is the shape a JSON sidecar file is expected to contain.
type sidecarMeta struct {
	Title   string `json:"title"`
	Year    string `json:"year"`
	Summary string `json:"summary"`
}

// FetchMetaLocalWorker looks for a sidecar .json or .nfo file next to the
// item's source path and merges any fields it finds into the item.
type FetchMetaLocalWorker struct{}

func (w *FetchMetaLocalWorker) Run(ctx context.Context, req *engine.WorkRequest, rep engine.Reporter) (engine.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return engine.Outcome{Status: engine.StatusInterrupted}, nil
	}

	source := req.Item.SourcePath()
	if source == "" {
		return engine.Outcome{Status: engine.StatusOk}, nil
	}
	base := strings.TrimSuffix(source, filepath.Ext(source))

	if meta, ok := readJSONSidecar(base + ".json"); ok {
		mergeSidecar(req.Item, meta)
		return engine.Outcome{Status: engine.StatusOk}, nil
	}
	if meta, ok := readNFOSidecar(base + ".nfo"); ok {
		mergeSidecar(req.Item, meta)
	}

	return engine.Outcome{Status: engine.StatusOk}, nil
}

func mergeSidecar(item *engine.Item, meta sidecarMeta) {
	if meta.Title != "" {
		item.SetMeta("title", cases.Title(language.Und).String(meta.Title))
	}
	if meta.Year != "" {
		item.SetMeta("year", meta.Year)
	}
	if meta.Summary != "" {
		item.SetMeta("summary", meta.Summary)
	}
}

func readJSONSidecar(path string) (sidecarMeta, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sidecarMeta{}, false
	}
	var meta sidecarMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return sidecarMeta{}, false
	}
	return meta, true
}

// readNFOSidecar parses a simple "key: value" per-line sidecar format; real
// .nfo files vary widely in shape, so this covers the common case without
// pulling in a dedicated XML/NFO parser.
func readNFOSidecar(path string) (sidecarMeta, bool) {
	file, err := os.Open(path)
	if err != nil {
		return sidecarMeta{}, false
	}
	defer file.Close()

	var meta sidecarMeta
	found := false
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch key {
		case "title":
			meta.Title = value
			found = true
		case "year":
			meta.Year = value
			found = true
		case "summary", "plot":
			meta.Summary = value
			found = true
		}
	}
	return meta, found
}
