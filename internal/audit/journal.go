package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"preparser/internal/engine"
	"preparser/internal/logging"
)

// Outcome is one already-terminated request as read back from the journal.
type Outcome struct {
	CorrelationID string
	RequestID     engine.RequestID
	Kind          engine.Kind
	Domains       engine.Mask
	Status        engine.Status
	AcceptedAt    time.Time
	TerminatedAt  time.Time
}

// Journal is the completion audit journal: a SQLite-backed, append-only log
// of terminal request outcomes. It implements engine.AuditSink.
type Journal struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open creates or connects to the audit database at path and applies the
// schema. An empty path is invalid; callers should skip constructing a
// Journal entirely when the audit feature is disabled.
func Open(path string, logger *slog.Logger) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("audit: path must not be empty")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite is not safe for concurrent writers on one handle

	j := &Journal{db: db, path: path, logger: logger}
	if err := j.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Path returns the filesystem path backing the journal.
func (j *Journal) Path() string {
	return j.path
}

// Record implements engine.AuditSink. It is invoked from a fire-and-forget
// goroutine by the coordinator after a request's terminal transition has
// already completed and its callback delivered; a slow or failing write
// here can never delay or abort callback delivery.
func (j *Journal) Record(rec engine.AuditRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	correlationID := uuid.NewString()
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO outcomes (correlation_id, request_id, kind, domains, status, accepted_at, terminated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		correlationID,
		int64(rec.RequestID),
		kindString(rec.Kind),
		int64(rec.Domains),
		rec.Status.String(),
		nullableTime(rec.AcceptedAt),
		rec.TerminatedAt,
	)
	if err != nil {
		j.logger.Warn("audit journal write failed",
			logging.String(logging.FieldEventType, "audit_write_failed"),
			logging.Uint64(logging.FieldRequestID, uint64(rec.RequestID)),
			logging.Error(err))
	}
}

// RecentOutcomes returns up to limit of the most recently terminated
// requests, newest first. This is the CLI status command's read path; it
// never touches the engine's in-memory request table.
func (j *Journal) RecentOutcomes(ctx context.Context, limit int) ([]Outcome, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT correlation_id, request_id, kind, domains, status, accepted_at, terminated_at
		 FROM outcomes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var (
			o          Outcome
			kind       string
			status     string
			domains    int64
			requestID  int64
			acceptedAt sql.NullTime
		)
		if err := rows.Scan(&o.CorrelationID, &requestID, &kind, &domains, &status, &acceptedAt, &o.TerminatedAt); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.RequestID = engine.RequestID(requestID)
		o.Kind = kindFromString(kind)
		o.Domains = engine.Mask(domains)
		o.Status = statusFromString(status)
		if acceptedAt.Valid {
			o.AcceptedAt = acceptedAt.Time
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func kindString(k engine.Kind) string {
	if k == engine.KindThumbnail {
		return "thumbnail"
	}
	return "parse"
}

func kindFromString(s string) engine.Kind {
	if s == "thumbnail" {
		return engine.KindThumbnail
	}
	return engine.KindParse
}

func statusFromString(s string) engine.Status {
	switch s {
	case "interrupted":
		return engine.StatusInterrupted
	case "timeout":
		return engine.StatusTimeout
	case "error":
		return engine.StatusError
	default:
		return engine.StatusOk
	}
}
