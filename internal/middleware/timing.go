package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"

	"github.com/henriod/featherweight-mpesaCallback/internal/logcontext"
)

var requestDurationHistogram = metrics.GetOrCreateHistogram(`http_request_duration_seconds`)

// bufferedResponseWriter holds status and body back until the wrapping
// middleware has finished setting response headers.
type bufferedResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *bufferedResponseWriter) WriteHeader(status int) {
	w.status = status
}

func (w *bufferedResponseWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bufferedResponseWriter) flush() {
	w.ResponseWriter.WriteHeader(w.status)
	w.ResponseWriter.Write(w.body.Bytes())
}

// Timing records wall-clock duration of every request, attaches it as a
// Server-Timing header (seconds) and emits a log line with method, duration
// and URL. A per-request correlation id is stamped into the log context.
func Timing(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := logcontext.AppendCtx(r.Context(), slog.String("requestId", uuid.New().String()))

			buffered := &bufferedResponseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(buffered, r.WithContext(ctx))

			elapsed := time.Since(start).Seconds()
			requestDurationHistogram.Update(elapsed)

			w.Header().Set("Server-Timing", strconv.FormatFloat(elapsed, 'f', -1, 64))
			buffered.flush()

			logger.InfoContext(ctx, "Request completed",
				"method", r.Method,
				"durationSeconds", elapsed,
				"url", r.URL.String(),
			)
		})
	}
}
