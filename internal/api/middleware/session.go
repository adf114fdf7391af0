package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/errors"
	"github.com/aaravmahajanofficial/pharmacy-checkout/internal/utils/response"
	"github.com/google/uuid"
)

const SessionHeader = "X-Session-ID"

type sessionContextKey struct{}

// Session resolves the shopper's cart session from X-Session-ID. A session is
// issued when the header is absent and echoed back so the client can keep it.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		sessionID := r.Header.Get(SessionHeader)

		if sessionID == "" {
			sessionID = uuid.NewString()
			logger.Info("Issued new cart session", slog.String("sessionId", sessionID))
		} else if _, err := uuid.Parse(sessionID); err != nil {
			logger.Warn("Malformed session id", slog.String("sessionId", sessionID))
			response.Error(w, errors.BadRequestError("Invalid session id"))
			return
		}

		w.Header().Set(SessionHeader, sessionID)

		ctx := context.WithValue(r.Context(), sessionContextKey{}, sessionID)
		ctx = Annotate(ctx, slog.String("sessionId", sessionID))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func SessionFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionContextKey{}).(string)
	return sessionID, ok && sessionID != ""
}

// WithSession is used by tests and internal callers that bypass the middleware.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sessionID)
}
