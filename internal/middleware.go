package courier

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

func SecHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "0")
		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware attaches a request-scoped logger (with request id) to the
// context, recovers panics, and logs one line per request.
func LoggingMiddleware(baseLogger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(reqID); err != nil {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			requestLogger := baseLogger.With(
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), requestLogger)
			r = r.WithContext(ctx)

			lrw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				if rec := recover(); rec != nil {
					requestLogger.Error("panic recovered",
						"err", rec,
						"type", fmt.Sprintf("%T", rec),
						"stack", string(debug.Stack()),
					)
					if !lrw.wrote {
						writeJSON(lrw, http.StatusInternalServerError, response{Error: msgSendFailed})
					}
				}
				level := slog.LevelInfo
				switch {
				case lrw.status >= 500:
					level = slog.LevelError
				case lrw.status >= 400:
					level = slog.LevelWarn
				}
				requestLogger.Log(ctx, level, "request completed",
					"status", lrw.status,
					"duration_ms", time.Since(start).Milliseconds(),
					"bytes", lrw.length,
				)
			}()

			next.ServeHTTP(lrw, r)
		})
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	length int
	wrote  bool
}

func (lrw *loggingResponseWriter) WriteHeader(status int) {
	if !lrw.wrote {
		lrw.ResponseWriter.WriteHeader(status)
		lrw.wrote = true
	}
	lrw.status = status
}

func (lrw *loggingResponseWriter) Write(p []byte) (int, error) {
	if !lrw.wrote {
		lrw.WriteHeader(http.StatusOK)
	}
	n, err := lrw.ResponseWriter.Write(p)
	lrw.length += n
	return n, err
}

// Unwrap lets http.ResponseController and http.MaxBytesReader reach the real writer.
func (lrw *loggingResponseWriter) Unwrap() http.ResponseWriter { return lrw.ResponseWriter }
