package daemon

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"preparser/internal/audit"
	"preparser/internal/config"
	"preparser/internal/domainwork"
	"preparser/internal/engine"
	"preparser/internal/logging"
	"preparser/internal/preflight"
)

// Daemon wires configuration, the engine, and the completion audit journal
// into one long-lived process, mirroring the corpus's daemon shape: a thin
// wrapper that owns lifecycle (lock, start, stop, close) around collaborators
// constructed elsewhere.
type Daemon struct {
	cfg    *config.Config
	eng    *engine.Engine
	audit  *audit.Journal
	logger *slog.Logger

	lock      *flock.Flock
	startedAt time.Time
	running   atomic.Bool
}

// Status reports current daemon runtime information for the IPC Status call.
type Status struct {
	Running      bool
	PID          int
	LockPath     string
	SocketPath   string
	AuditPath    string
	LiveRequests int
	UptimeSecs   int64
}

// New constructs a Daemon from cfg, including a running engine, without
// acquiring the instance lock; call Start to acquire it.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon: config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	mask := cfg.TypesMask()
	if mask == 0 {
		return nil, errors.New("daemon: no domains configured")
	}

	workers := make(map[engine.Domain]engine.DomainWorker)
	if mask.Has(engine.DomainParse) {
		workers[engine.DomainParse] = &domainwork.ParseWorker{}
	}
	if mask.Has(engine.DomainFetchMetaLocal) {
		workers[engine.DomainFetchMetaLocal] = &domainwork.FetchMetaLocalWorker{}
	}
	if mask.Has(engine.DomainFetchMetaNet) {
		workers[engine.DomainFetchMetaNet] = &domainwork.FetchMetaNetWorker{
			Endpoint: cfg.FetchMetaNet.Endpoint,
			Token:    cfg.FetchMetaNet.Token,
			Timeout:  time.Duration(cfg.FetchMetaNet.TimeoutSeconds) * time.Second,
		}
	}
	if mask.Has(engine.DomainThumbnail) {
		workers[engine.DomainThumbnail] = &domainwork.ThumbnailWorker{
			Width:        cfg.Thumbnail.Width,
			Height:       cfg.Thumbnail.Height,
			PreciseExtra: time.Duration(cfg.Thumbnail.PreciseExtraMS) * time.Millisecond,
		}
	}

	var auditSink engine.AuditSink
	var journal *audit.Journal
	if cfg.Audit.Path != "" {
		j, err := audit.Open(cfg.Audit.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("open audit journal: %w", err)
		}
		journal = j
		auditSink = j
	}

	eng, err := engine.New(engine.Config{
		Types:                 mask,
		MaxParserThreads:      cfg.Engine.MaxParserThreads,
		MaxThumbnailerThreads: cfg.Engine.MaxThumbnailerThreads,
		Timeout:               time.Duration(cfg.Engine.TimeoutSeconds) * time.Second,
		Workers:               workers,
		Audit:                 auditSink,
		Logger:                logger,
	})
	if err != nil {
		if journal != nil {
			journal.Close()
		}
		return nil, fmt.Errorf("construct engine: %w", err)
	}

	if mask.Has(engine.DomainThumbnail) {
		eng.SetPreflight(preflight.ThumbnailFunc(cfg))
	}

	return &Daemon{
		cfg:    cfg,
		eng:    eng,
		audit:  journal,
		logger: logger,
		lock:   flock.New(cfg.Daemon.LockPath),
	}, nil
}

// Start acquires the single-instance lock. It returns an error if another
// preparserd instance already holds it.
func (d *Daemon) Start() error {
	if d.running.Load() {
		return errors.New("daemon: already running")
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !ok {
		return errors.New("another preparserd instance is already running")
	}
	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("preparserd started",
		logging.String(logging.FieldEventType, "daemon_start"),
		logging.String("lock", d.cfg.Daemon.LockPath))
	return nil
}

// Close drains the engine, closes the audit journal, and releases the lock.
// No further callbacks fire after Close returns.
func (d *Daemon) Close() {
	if !d.running.Load() {
		return
	}
	d.eng.Destroy()
	if d.audit != nil {
		if err := d.audit.Close(); err != nil {
			d.logger.Warn("failed to close audit journal", logging.Error(err))
		}
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("preparserd stopped", logging.String(logging.FieldEventType, "daemon_stop"))
}

// EnqueueParse accepts a parse-family request for the item at sourcePath.
func (d *Daemon) EnqueueParse(sourcePath string, mask engine.Mask, interact, subitems bool) (engine.RequestID, error) {
	item := engine.NewItem(sourcePath)
	defer item.Release()

	logger := d.logger
	cbs := engine.ParseCallbacks{
		OnPreparseEnded: func(it *engine.Item, status engine.Status, _ any) {
			logger.Info("parse request finished",
				logging.String(logging.FieldEventType, "parse_finished"),
				logging.String("source_path", it.SourcePath()),
				logging.String("status", status.String()))
		},
	}
	return d.eng.EnqueueParse(item, mask, interact, subitems, cbs, nil)
}

// EnqueueThumbnail accepts a thumbnail-family request. On success, the
// generated frame is written as a PNG file under the thumbnail scratch
// directory, named after the source file's base name plus a nanosecond
// timestamp, and the path is logged.
func (d *Daemon) EnqueueThumbnail(sourcePath string, seek engine.SeekDescriptor, timeout time.Duration) (engine.RequestID, error) {
	item := engine.NewItem(sourcePath)
	defer item.Release()

	logger := d.logger
	scratchDir := d.cfg.Thumbnail.ScratchDir
	cb := engine.ThumbnailCallback{
		OnEnded: func(it *engine.Item, status engine.Status, pic *engine.Picture, _ any) {
			if status == engine.StatusOk && pic != nil {
				if path, err := writeThumbnail(scratchDir, it, pic); err != nil {
					logger.Warn("failed to write thumbnail",
						logging.String(logging.FieldEventType, "thumbnail_write_failed"),
						logging.Error(err))
				} else {
					logger.Info("thumbnail request finished",
						logging.String(logging.FieldEventType, "thumbnail_finished"),
						logging.String("source_path", it.SourcePath()),
						logging.String("status", status.String()),
						logging.String("output_path", path))
					return
				}
			}
			logger.Info("thumbnail request finished",
				logging.String(logging.FieldEventType, "thumbnail_finished"),
				logging.String("source_path", it.SourcePath()),
				logging.String("status", status.String()))
		},
	}
	return d.eng.EnqueueThumbnail(item, seek, timeout, cb, nil)
}

func writeThumbnail(scratchDir string, item *engine.Item, pic *engine.Picture) (string, error) {
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	name := fmt.Sprintf("%s-%d.png", filepath.Base(item.SourcePath()), time.Now().UnixNano())
	path := filepath.Join(scratchDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create thumbnail file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, pic.Image()); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return path, nil
}

// Cancel cancels the request matching id, or every live request when
// id == 0, returning the count targeted.
func (d *Daemon) Cancel(id engine.RequestID) int {
	return d.eng.Cancel(id)
}

// RecentOutcomes returns up to limit of the most recently terminated
// requests from the audit journal, or an error if no journal is configured.
func (d *Daemon) RecentOutcomes(ctx context.Context, limit int) ([]audit.Outcome, error) {
	if d.audit == nil {
		return nil, errors.New("daemon: audit journal is not configured")
	}
	return d.audit.RecentOutcomes(ctx, limit)
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	uptime := int64(0)
	if d.running.Load() {
		uptime = int64(time.Since(d.startedAt).Seconds())
	}
	auditPath := ""
	if d.audit != nil {
		auditPath = d.audit.Path()
	}
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockPath:     d.cfg.Daemon.LockPath,
		SocketPath:   d.cfg.Daemon.SocketPath,
		AuditPath:    auditPath,
		LiveRequests: d.eng.LiveRequests(),
		UptimeSecs:   uptime,
	}
}
