package observability

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"
)

type SpanStatus string

const (
	SpanStatusOK    SpanStatus = "OK"
	SpanStatusError SpanStatus = "ERROR"
)

// Span times one operation. Spans started from a context carrying another
// span join its trace. A Span is not safe for concurrent use.
type Span struct {
	TraceID   string
	SpanID    string
	ParentID  string
	Operation string
	StartTime time.Time

	duration time.Duration
	finished bool
	tags     []slog.Attr
	err      error
}

type spanContextKey struct{}

func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	span := &Span{
		SpanID:    generateID(),
		Operation: operation,
		StartTime: time.Now(),
	}

	if parent := GetSpan(ctx); parent != nil {
		span.ParentID = parent.SpanID
		span.TraceID = parent.TraceID
	} else {
		span.TraceID = generateID()
	}

	return context.WithValue(ctx, spanContextKey{}, span), span
}

// Finish records the span duration. Later calls are no-ops.
func (s *Span) Finish() {
	if s.finished {
		return
	}
	s.finished = true
	s.duration = time.Since(s.StartTime)
}

func (s *Span) Duration() time.Duration {
	if !s.finished {
		return time.Since(s.StartTime)
	}
	return s.duration
}

// SetTag records a key/value pair. Tags keep their insertion order.
func (s *Span) SetTag(key string, value any) {
	s.tags = append(s.tags, slog.Any("tag."+key, value))
}

func (s *Span) SetError(err error) {
	s.err = err
}

func (s *Span) Status() SpanStatus {
	if s.err != nil {
		return SpanStatusError
	}
	return SpanStatusOK
}

func (s *Span) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("trace_id", s.TraceID),
		slog.String("span_id", s.SpanID),
		slog.String("operation", s.Operation),
		slog.String("status", string(s.Status())),
	}
	if s.ParentID != "" {
		attrs = append(attrs, slog.String("parent_id", s.ParentID))
	}
	if s.finished {
		attrs = append(attrs, slog.Duration("duration", s.duration))
	}
	if s.err != nil {
		attrs = append(attrs, slog.String("error", s.err.Error()))
	}
	attrs = append(attrs, s.tags...)
	return slog.GroupValue(attrs...)
}

func GetSpan(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanContextKey{}).(*Span); ok {
		return span
	}
	return nil
}

// TraceID returns the trace of the span in ctx, or "" without one.
func TraceID(ctx context.Context) string {
	if span := GetSpan(ctx); span != nil {
		return span.TraceID
	}
	return ""
}

func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
