// Package domainwork provides concrete, minimal implementations of the
// engine's four domain workers, exercising the engine end to end since a
// runnable preparser cannot ship with "pluggable extractor" left empty.
package domainwork

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"preparser/internal/engine"
)

// ParseWorker derives a title from the item's source path name and records
// it, with the source path, as metadata; it does not open the file and sets
// no duration. When requested, it synthesizes chapter-like subitems.
type ParseWorker struct {
	// ChapterCount controls how many subitems are synthesized when the
	// caller sets the Subitems option. Defaults to 2 when zero.
	ChapterCount int
}

func (w *ParseWorker) Run(ctx context.Context, req *engine.WorkRequest, rep engine.Reporter) (engine.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return engine.Outcome{Status: engine.StatusInterrupted}, nil
	}

	title := deriveTitle(req.Item.SourcePath())
	req.Item.SetMeta("title", title)
	req.Item.SetMeta("source_path", req.Item.SourcePath())

	if req.Interact {
		req.Item.SetMeta("interactive", "true")
	}

	if req.Subitems {
		n := w.ChapterCount
		if n <= 0 {
			n = 2
		}
		subitems := make([]engine.Subitem, 0, n)
		for i := 1; i <= n; i++ {
			select {
			case <-ctx.Done():
				return engine.Outcome{Status: engine.StatusInterrupted}, nil
			default:
			}
			subitems = append(subitems, engine.Subitem{
				Title:      fmt.Sprintf("Chapter %d", i),
				StartTicks: int64(i-1) * 600_000_000, // 60s per chapter at a 10,000,000-tick second
			})
		}
		rep.SubitemsAdded(subitems)
	}

	if err := ctx.Err(); err != nil {
		return engine.Outcome{Status: engine.StatusInterrupted}, nil
	}
	return engine.Outcome{Status: engine.StatusOk}, nil
}

func deriveTitle(sourcePath string) string {
	if sourcePath == "" {
		return "Unknown Item"
	}
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var cleaned strings.Builder
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		title = "Unknown Item"
	}
	return cases.Title(language.Und).String(title)
}
