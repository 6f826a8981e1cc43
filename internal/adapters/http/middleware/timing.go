package middleware

import (
	"bufio"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"schoolhub/internal/adapters/http/perf"
)

// DefaultSlowRequest is the threshold above which a request is logged at warn level.
const DefaultSlowRequest = 200 * time.Millisecond

var requestIDCounter atomic.Uint64

// statusWriter captures the response status. It stays hijackable so
// websocket upgrades pass through.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Hijack hands the connection to websocket upgraders.
func (sw *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	sw.status = http.StatusSwitchingProtocols
	return http.NewResponseController(sw.ResponseWriter).Hijack()
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// Timing logs request duration and feeds the perf collector.
// Samples are labelled with the matched route pattern so path
// parameters do not explode the dashboard, so it must wrap the mux directly.
func Timing(collector *perf.Collector, slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequest
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := requestIDCounter.Add(1)
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			elapsed := time.Since(start)
			ms := float64(elapsed.Microseconds()) / 1000.0
			label := r.Pattern
			if label == "" {
				label = r.Method + " " + r.URL.Path
			}
			attrs := []any{
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", ms,
			}
			if elapsed >= slow {
				slog.Warn("slow_request", attrs...)
			} else {
				slog.Debug("request", attrs...)
			}
			if collector != nil {
				collector.Record(perf.Sample{Kind: perf.KindRequest, Path: label, Status: sw.status, DurationMs: ms, At: start})
			}
		})
	}
}
