package quote

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

type loggerKey struct{}

// withLogger returns a context carrying a request-scoped logger
func withLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// loggerFrom returns the request-scoped logger, or the default logger outside a request
func loggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// requestLogger tags every request with an id, echoed back in X-Request-ID
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		logger := slog.Default().With("request_id", id)
		logger.Debug("Request started", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(withLogger(r.Context(), logger)))
	})
}
