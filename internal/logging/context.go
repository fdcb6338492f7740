package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRequestID is the standardized structured logging key for preparser request identifiers.
	FieldRequestID = "request_id"
	// FieldDomain is the standardized structured logging key for the domain worker (parse, fetchmeta_local, fetchmeta_net, thumbnail).
	FieldDomain = "domain"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
	// FieldEventType names the kind of event a log line reports, for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries a short, actionable hint alongside an error log.
	FieldErrorHint = "error_hint"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyDomain
	ctxKeyCorrelationID
)

// WithRequestID attaches a request identifier to the context for logging.
func WithRequestID(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// WithDomain attaches a domain name to the context for logging.
func WithDomain(ctx context.Context, domain string) context.Context {
	return context.WithValue(ctx, ctxKeyDomain, domain)
}

// WithCorrelationID attaches a correlation identifier to the context for logging.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationID, id)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := ctx.Value(ctxKeyRequestID).(uint64); ok {
		fields = append(fields, slog.Uint64(FieldRequestID, id))
	}
	if domain, ok := ctx.Value(ctxKeyDomain).(string); ok && domain != "" {
		fields = append(fields, slog.String(FieldDomain, domain))
	}
	if rid, ok := ctx.Value(ctxKeyCorrelationID).(string); ok && rid != "" {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
