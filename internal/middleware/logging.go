package middleware

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the id used to correlate a request across logs and traces
const RequestIDHeader = "X-Request-ID"

// StatusRecorder wraps http.ResponseWriter to capture the status code and size.
// It passes hijacking through so websocket upgrades work behind it.
type StatusRecorder struct {
	http.ResponseWriter
	status   int
	size     int
	hijacked bool
}

// Record wraps w, reusing an existing recorder so stacked middleware share one
func Record(w http.ResponseWriter) *StatusRecorder {
	if rec, ok := w.(*StatusRecorder); ok {
		return rec
	}
	return &StatusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader captures the status code
func (rw *StatusRecorder) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

// Write captures the response size
func (rw *StatusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Hijack hands the connection to a websocket upgrader
func (rw *StatusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	conn, buf, err := hj.Hijack()
	if err == nil {
		rw.hijacked = true
		rw.status = http.StatusSwitchingProtocols
	}
	return conn, buf, err
}

// Unwrap exposes the underlying writer to http.ResponseController
func (rw *StatusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Status returns the captured status code
func (rw *StatusRecorder) Status() int {
	return rw.status
}

// Size returns the captured response size
func (rw *StatusRecorder) Size() int {
	return rw.size
}

// Hijacked reports whether the connection was taken over
func (rw *StatusRecorder) Hijacked() bool {
	return rw.hijacked
}

// RequestID returns the id assigned to a request by Logging
func RequestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}

// Logging creates logging middleware that logs HTTP requests. Each request
// gets an id, keeping one the caller supplied. Websocket sessions are logged
// when they close, so their duration is the session length.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
				r.Header.Set(RequestIDHeader, id)
			}
			w.Header().Set(RequestIDHeader, id)

			wrapped := Record(w)
			next.ServeHTTP(wrapped, r)

			level := slog.LevelInfo
			if wrapped.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("request_id", id),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.status),
				slog.Int("size", wrapped.size),
				slog.Bool("upgraded", wrapped.hijacked),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
