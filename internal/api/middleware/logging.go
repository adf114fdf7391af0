package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type logContextKey string

const (
	LoggerKey     = logContextKey("logger")
	requestLogKey = logContextKey("request_log")

	RequestIDHeader = "X-Request-ID"
)

// requestLog is the logger shared by every layer of one request. Inner
// middleware annotate it, so the completion line carries their fields too.
type requestLog struct {
	logger *slog.Logger
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// Logging installs a request logger keyed by correlation id and logs one line
// when the request completes, at a level that follows the response status.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()

		correlationID := r.Header.Get(RequestIDHeader)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, correlationID)

		entry := &requestLog{
			logger: slog.Default().With(
				slog.String("correlation_id", correlationID),
				slog.String("http_method", r.Method),
				slog.String("http_path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
			),
		}

		entry.logger.Debug("Incoming request", slog.String("user_agent", r.UserAgent()))

		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sr, r.WithContext(context.WithValue(r.Context(), requestLogKey, entry)))

		level := slog.LevelInfo
		switch {
		case sr.status >= http.StatusInternalServerError:
			level = slog.LevelError
		case sr.status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		entry.logger.Log(r.Context(), level, "Request completed",
			slog.Int("http_status", sr.status),
			slog.Int("response_bytes", sr.bytes),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func LoggerFromContext(ctx context.Context) *slog.Logger {
	if entry, ok := ctx.Value(requestLogKey).(*requestLog); ok {
		return entry.logger
	}

	if logger, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return logger
	}

	return slog.Default()
}

// Annotate adds attrs to the request logger. Under Logging the fields also
// appear on the completion line.
func Annotate(ctx context.Context, attrs ...any) context.Context {
	if entry, ok := ctx.Value(requestLogKey).(*requestLog); ok {
		entry.logger = entry.logger.With(attrs...)
		return ctx
	}

	return WithLogger(ctx, LoggerFromContext(ctx).With(attrs...))
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}
