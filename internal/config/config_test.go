package config_test

import (
	"path/filepath"
	"testing"

	"preparser/internal/config"
	"preparser/internal/engine"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantScratch := filepath.Join(tempHome, ".local", "share", "preparser", "scratch")
	if cfg.Thumbnail.ScratchDir != wantScratch {
		t.Fatalf("unexpected scratch dir: got %q want %q", cfg.Thumbnail.ScratchDir, wantScratch)
	}
	if cfg.Engine.MaxParserThreads != 2 {
		t.Fatalf("unexpected max parser threads: %d", cfg.Engine.MaxParserThreads)
	}
	if cfg.Engine.MaxThumbnailerThreads != 1 {
		t.Fatalf("unexpected max thumbnailer threads: %d", cfg.Engine.MaxThumbnailerThreads)
	}
	if cfg.Engine.TimeoutSeconds != 0 {
		t.Fatalf("expected zero engine timeout by default, got %d", cfg.Engine.TimeoutSeconds)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
}

func TestLoadReadsTokenFromEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PREPARSER_FETCHMETA_NET_TOKEN", "s3cr3t")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FetchMetaNet.Token != "s3cr3t" {
		t.Fatalf("expected token from env, got %q", cfg.FetchMetaNet.Token)
	}
}

func TestTypesMask(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Types = []string{"parse", "thumbnail"}

	got := cfg.TypesMask()
	want := engine.Mask(engine.DomainParse) | engine.Mask(engine.DomainThumbnail)
	if got != want {
		t.Fatalf("TypesMask() = %v, want %v", got, want)
	}
}

func TestValidateRejectsEmptyTypes(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Types = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty engine.types")
	}
}

func TestValidateRejectsUnknownDomain(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Types = []string{"parse", "bogus"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown domain name")
	}
}

func TestValidateRejectsDuplicateDomain(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Types = []string{"parse", "parse"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for duplicate domain name")
	}
}

func TestValidateRejectsNonPositiveThreads(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.MaxParserThreads = 0
	// normalize() would fix this up; Validate alone must still catch it.
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero max_parser_threads")
	}
}

func TestParseDomainNames(t *testing.T) {
	got, err := config.ParseDomainNames([]string{"parse", "thumbnail"})
	if err != nil {
		t.Fatalf("ParseDomainNames: %v", err)
	}
	want := engine.Mask(engine.DomainParse) | engine.Mask(engine.DomainThumbnail)
	if got != want {
		t.Fatalf("ParseDomainNames() = %v, want %v", got, want)
	}
}

func TestParseDomainNamesRejectsUnknown(t *testing.T) {
	if _, err := config.ParseDomainNames([]string{"bogus"}); err == nil {
		t.Fatal("expected error for unknown domain name")
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preparser.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample config to load: exists=%v err=%v", exists, err)
	}
}
