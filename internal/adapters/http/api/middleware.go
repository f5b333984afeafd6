package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/pcbvalues/pkg/logger"
	"github.com/okian/pcbvalues/pkg/metrics"
)

// MetricsMiddleware records request counts, durations and error classes for
// endpoint. A panicking handler is answered with 500 and counted as a panic.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}

		defer func() {
			if rec := recover(); rec != nil {
				metrics.RecordErrorByComponent("http", "panic")
				logger.Get().Error(r.Context(), "handler panicked",
					logger.String("endpoint", endpoint),
					logger.Any("panic", rec),
				)
				if !sw.wroteHeader {
					writeError(sw, http.StatusInternalServerError, "internal_error", fmt.Errorf("%w: %v", ErrInternal, rec))
				}
			}
			observe(r, endpoint, sw.status(), time.Since(start))
		}()

		next(sw, r)
	}
}

func observe(r *http.Request, endpoint string, status int, elapsed time.Duration) {
	ms := float64(elapsed.Microseconds()) / 1000
	code := strconv.Itoa(status)
	metrics.RecordHTTPRequest(endpoint, r.Method, code)
	metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, ms)

	if status >= http.StatusBadRequest {
		kind, severity := classify(status)
		metrics.RecordErrorByEndpoint(endpoint, r.Method, kind)
		metrics.RecordErrorByType(kind, severity)
		metrics.RecordErrorLatency("http", kind, ms)
	}
	logger.Get().Debug(r.Context(), "request served",
		logger.String("endpoint", endpoint),
		logger.String("method", r.Method),
		logger.Int("status", status),
		logger.Duration("elapsed", elapsed),
	)
}

// classify maps a response status to an error class and severity label.
// A taken name is an expected outcome of submission, not a client fault.
func classify(status int) (kind, severity string) {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", "high"
	case status == http.StatusConflict:
		return "name_taken", "low"
	case status == http.StatusTooManyRequests:
		return "backpressure", "medium"
	case status == http.StatusRequestEntityTooLarge:
		return "payload_too_large", "medium"
	case status == http.StatusNotFound:
		return "not_found", "low"
	default:
		return "bad_request", "medium"
	}
}

// statusWriter remembers the status code sent to the client.
type statusWriter struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.code = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (w *statusWriter) status() int {
	if !w.wroteHeader {
		return http.StatusOK
	}
	return w.code
}
