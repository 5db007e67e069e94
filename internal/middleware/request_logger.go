package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/response"
)

// RequestIDHeader carries the correlation id in and out of the API.
const RequestIDHeader = "X-Request-ID"

// statusRecorder remembers the first status written and counts body bytes.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(status int) {
	if s.status != 0 {
		return
	}
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.WriteHeader(http.StatusOK)
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func (s *statusRecorder) written() bool {
	return s.status != 0
}

func (s *statusRecorder) code() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

// RequestLogger attaches a request-scoped logger and id to every request,
// logs its outcome and turns panics into a 500 envelope.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			logger := base.With(
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			ctx := logging.WithRequestID(logging.WithLogger(r.Context(), logger), requestID)

			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				if p := recover(); p != nil {
					logger.Error("panic recovered", "panic", p)
					if !rec.written() {
						response.WriteError(ctx, rec, response.Internal("Something went wrong", fmt.Errorf("panic: %v", p)))
					}
				}

				level := slog.LevelInfo
				if rec.code() >= http.StatusInternalServerError {
					level = slog.LevelError
				}
				logger.Log(ctx, level, "request completed",
					slog.Int("status", rec.code()),
					slog.Int("bytes", rec.bytes),
					slog.String("remote_addr", r.RemoteAddr),
					slog.Duration("duration", time.Since(started)),
				)
			}()

			next.ServeHTTP(rec, r.WithContext(ctx))
		})
	}
}
