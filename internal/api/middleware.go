package api

import (
	"log/slog"
	"net/http"
	"time"

	"investor-edu/internal/logger"
)

// TraceHeader carries the request trace ID in both directions.
const TraceHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// withTrace attaches a trace ID to the request context and echoes it back.
func withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(TraceHeader)
		if id == "" {
			id = logger.NewTraceID()
		}
		w.Header().Set(TraceHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithTraceID(r.Context(), id)))
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+ProfileHeader+", "+TraceHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument records latency and status per route and logs failures.
func (s *server) instrument(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h(rec, r)
		d := time.Since(start)
		s.Metrics.ObserveHTTP(route, rec.code, d)

		attrs := append([]any{"component", "api", "route", route, "status", rec.code, "duration_ms", d.Milliseconds()},
			logger.LogWithTrace(r.Context())...)
		switch {
		case rec.code >= 500:
			slog.Error("request failed", attrs...)
		case rec.code >= 400:
			slog.Info("request rejected", attrs...)
		default:
			slog.Debug("request served", attrs...)
		}
	})
}
