package preflight

import (
	"context"

	"preparser/internal/config"
	"preparser/internal/engine"
)

// RunAll executes every applicable startup preflight check for cfg and
// returns the results; it does not log them or stop anything itself, and the
// daemon does not call it. Per-request disk-space checks go through
// ThumbnailFunc.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result
	if cfg.TypesMask().Has(engine.DomainThumbnail) {
		results = append(results, CheckDirectoryAccess("Thumbnail scratch directory", cfg.Thumbnail.ScratchDir))
		results = append(results, CheckDiskSpace(cfg.Thumbnail.ScratchDir, cfg.Thumbnail.MinFreeBytes))
	}
	return results
}

// ThumbnailFunc returns an engine.PreflightFunc that checks free disk space
// on cfg's thumbnail scratch directory before each thumbnail request is
// accepted. It never blocks on I/O beyond the single statfs syscall.
func ThumbnailFunc(cfg *config.Config) func() error {
	return func() error {
		res := CheckDiskSpace(cfg.Thumbnail.ScratchDir, cfg.Thumbnail.MinFreeBytes)
		if !res.Passed {
			return errInsufficientSpace(res.Detail)
		}
		return nil
	}
}

type errInsufficientSpace string

func (e errInsufficientSpace) Error() string { return "preflight: " + string(e) }
