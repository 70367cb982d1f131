package middleware

import (
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
)

// Logger returns a middleware that logs every HTTP request with its status,
// duration and request ID. Server errors are logged at error level.
func Logger(log logger.Logger) func(http.Handler) http.Handler {
	log = log.With("component", "http")
	sanitize := strings.NewReplacer("\n", "", "\r", "").Replace

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response writer wrapper to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			// Sanitize user-supplied values to prevent log injection: strip CR/LF before logging.
			method, path := sanitize(r.Method), sanitize(r.URL.Path)
			reqID := chimiddleware.GetReqID(r.Context())
			elapsed := time.Since(start)

			if wrapped.statusCode >= http.StatusInternalServerError {
				log.Errorf("%s %s %d %s [%s]", method, path, wrapped.statusCode, elapsed, reqID)
				return
			}
			log.Debugf("%s %s %d %s [%s]", method, path, wrapped.statusCode, elapsed, reqID)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController and the websocket upgrader reach the
// underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
