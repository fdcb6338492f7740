package daemon_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"preparser/internal/config"
	"preparser/internal/daemon"
	"preparser/internal/engine"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Engine.Types = []string{"parse", "thumbnail"}
	cfg.Thumbnail.ScratchDir = filepath.Join(dir, "scratch")
	cfg.Thumbnail.MinFreeBytes = 1
	cfg.Audit.Path = filepath.Join(dir, "audit.db")
	cfg.Daemon.LockPath = filepath.Join(dir, "preparserd.lock")
	cfg.Daemon.SocketPath = filepath.Join(dir, "preparserd.sock")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return &cfg
}

func TestDaemonEnqueueParseAndStatus(t *testing.T) {
	cfg := testConfig(t)
	d, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Close()

	done := make(chan engine.Status, 1)
	id, err := d.EnqueueParse("/media/movie.mkv", engine.Mask(engine.DomainParse), false, false)
	if err != nil {
		t.Fatalf("EnqueueParse: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero request id")
	}

	// Poll until the audit journal has recorded the terminal outcome.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		outcomes, err := d.RecentOutcomes(context.Background(), 1)
		if err == nil && len(outcomes) == 1 {
			done <- outcomes[0].Status
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	select {
	case status := <-done:
		if status != engine.StatusOk {
			t.Fatalf("status = %v, want ok", status)
		}
	default:
		t.Fatal("timed out waiting for audit record")
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
}

func TestDaemonSecondStartFailsToAcquireLock(t *testing.T) {
	cfg := testConfig(t)
	d1, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d1.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d1.Close()

	d2, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d2.Start(); err == nil {
		t.Fatal("expected second Start to fail while first instance holds the lock")
	}
}
