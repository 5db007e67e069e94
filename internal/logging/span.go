package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span times a named unit of work (an upload, an aggregation) inside a request.
type Span struct {
	logger *slog.Logger
	start  time.Time
	failed error
}

// StartSpan derives a child span from ctx and tags its logger with attrs.
// The request id doubles as the trace id when no trace has been started yet.
func StartSpan(ctx context.Context, name string, attrs ...any) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	traceID := TraceIDFromContext(ctx)
	fresh := traceID == ""
	if fresh {
		if traceID = RequestIDFromContext(ctx); traceID == "" {
			traceID = uuid.NewString()
		}
		ctx = WithTraceID(ctx, traceID)
	}

	fields := make([]any, 0, 4+len(attrs))
	if fresh {
		fields = append(fields, slog.String("trace_id", traceID))
	}
	if parent := valueOf(ctx, spanIDKey{}); parent != "" {
		fields = append(fields, slog.String("parent_span_id", parent))
	}
	spanID := uuid.NewString()
	fields = append(fields, slog.String("span_id", spanID), slog.String("span_name", name))
	fields = append(fields, attrs...)

	logger := FromContext(ctx).With(fields...)
	ctx = withValue(WithLogger(ctx, logger), spanIDKey{}, spanID)

	return ctx, &Span{logger: logger, start: time.Now()}
}

// Fail marks the span as failed; End then logs at warn level with err.
func (s *Span) Fail(err error) {
	if s != nil && err != nil {
		s.failed = err
	}
}

// End logs the span duration.
func (s *Span) End() {
	if s == nil {
		return
	}
	elapsed := slog.Duration("duration", time.Since(s.start))
	if s.failed != nil {
		s.logger.Warn("span failed", elapsed, slog.Any("error", s.failed))
		return
	}
	s.logger.Debug("span completed", elapsed)
}
