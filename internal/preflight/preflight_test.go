package preflight_test

import (
	"path/filepath"
	"testing"

	"preparser/internal/config"
	"preparser/internal/preflight"
)

func TestCheckDirectoryAccessCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scratch")
	res := preflight.CheckDirectoryAccess("Scratch", dir)
	if !res.Passed {
		t.Fatalf("expected pass, got %+v", res)
	}
}

func TestCheckDiskSpacePassesForLowFloor(t *testing.T) {
	dir := t.TempDir()
	res := preflight.CheckDiskSpace(dir, 1)
	if !res.Passed {
		t.Fatalf("expected pass for 1-byte floor, got %+v", res)
	}
}

func TestCheckDiskSpaceFailsForImpossibleFloor(t *testing.T) {
	dir := t.TempDir()
	res := preflight.CheckDiskSpace(dir, 1<<62)
	if res.Passed {
		t.Fatalf("expected failure for impossible floor, got %+v", res)
	}
}

func TestThumbnailFuncRejectsWhenSpaceInsufficient(t *testing.T) {
	cfg := config.Default()
	cfg.Thumbnail.ScratchDir = t.TempDir()
	cfg.Thumbnail.MinFreeBytes = 1 << 62

	fn := preflight.ThumbnailFunc(&cfg)
	if err := fn(); err == nil {
		t.Fatal("expected error for insufficient space")
	}
}

func TestThumbnailFuncPassesWhenSpaceSufficient(t *testing.T) {
	cfg := config.Default()
	cfg.Thumbnail.ScratchDir = t.TempDir()
	cfg.Thumbnail.MinFreeBytes = 1

	fn := preflight.ThumbnailFunc(&cfg)
	if err := fn(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestRunAllSkipsWhenThumbnailNotConfigured(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Types = []string{"parse"}
	if results := preflight.RunAll(nil, &cfg); len(results) != 0 {
		t.Fatalf("expected no checks, got %+v", results)
	}
}
