package ipc

import "time"

// EnqueueParseRequest requests a parse-family request over IPC. Domains
// names the sub-tasks to run, using the same names accepted in the
// configuration file's engine.types list.
type EnqueueParseRequest struct {
	SourcePath string   `json:"source_path"`
	Domains    []string `json:"domains"`
	Interact   bool     `json:"interact"`
	Subitems   bool     `json:"subitems"`
}

// EnqueueParseResponse reports the accepted request's identifier.
type EnqueueParseResponse struct {
	RequestID uint64 `json:"request_id"`
}

// EnqueueThumbnailRequest requests a thumbnail-family request over IPC.
// SeekKind is one of "none", "time", "position"; Precise selects the
// Precise precision hint over the default Fast one.
type EnqueueThumbnailRequest struct {
	SourcePath     string  `json:"source_path"`
	SeekKind       string  `json:"seek_kind"`
	Ticks          int64   `json:"ticks"`
	Fraction       float64 `json:"fraction"`
	Precise        bool    `json:"precise"`
	TimeoutSeconds int     `json:"timeout_seconds"`
}

// EnqueueThumbnailResponse reports the accepted request's identifier.
type EnqueueThumbnailResponse struct {
	RequestID uint64 `json:"request_id"`
}

// CancelRequest cancels one request, or every live request when
// RequestID == 0.
type CancelRequest struct {
	RequestID uint64 `json:"request_id"`
}

// CancelResponse reports how many requests were targeted.
type CancelResponse struct {
	Cancelled int `json:"cancelled"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse mirrors daemon.Status for wire transport.
type StatusResponse struct {
	Running      bool   `json:"running"`
	PID          int    `json:"pid"`
	LockPath     string `json:"lock_path"`
	SocketPath   string `json:"socket_path"`
	AuditPath    string `json:"audit_path"`
	LiveRequests int    `json:"live_requests"`
	UptimeSecs   int64  `json:"uptime_secs"`
}

// OutcomesRequest fetches the most recent terminal outcomes from the audit
// journal.
type OutcomesRequest struct {
	Limit int `json:"limit"`
}

// Outcome is one already-terminated request as reported over IPC.
type Outcome struct {
	CorrelationID string    `json:"correlation_id"`
	RequestID     uint64    `json:"request_id"`
	Kind          string    `json:"kind"`
	Domains       []string  `json:"domains"`
	Status        string    `json:"status"`
	AcceptedAt    time.Time `json:"accepted_at"`
	TerminatedAt  time.Time `json:"terminated_at"`
}

// OutcomesResponse contains the requested outcomes, newest first.
type OutcomesResponse struct {
	Outcomes []Outcome `json:"outcomes"`
}
