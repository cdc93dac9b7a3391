package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/nkiryanov/portfolio/internal/handlers/render"
)

type errorLogger interface {
	Error(msg string, args ...any)
}

// Remembers whether response has been started
type headerWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *headerWriter) WriteHeader(statusCode int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *headerWriter) Write(p []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(p)
}

func (w *headerWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// RecovererMiddleware turns handler panic into 500 internal_error response.
// If the response is already started it can't be replaced: the connection is aborted instead
func RecovererMiddleware(l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hw := &headerWriter{ResponseWriter: w}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// Let net/http abort the connection as it does by default
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				l.Error("panic while handling request",
					"panic", rec,
					"method", r.Method,
					"uri", r.RequestURI,
					"response_started", hw.wroteHeader,
					"stack", string(debug.Stack()),
				)

				if hw.wroteHeader {
					panic(http.ErrAbortHandler)
				}
				render.InternalError(w)
			}()

			next.ServeHTTP(hw, r)
		})
	}
}
