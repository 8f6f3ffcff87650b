package slogx

import (
	"log/slog"
	"net/http"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := Default()
		ctx := r.Context()

		method := slog.String("method", r.Method+" "+r.URL.Path)
		logger.Debug(ctx, "start handling http request", method)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		durAttr := slog.Duration("duration", time.Since(start))
		statusAttr := slog.Int("status", rec.status)
		if rec.status >= http.StatusInternalServerError {
			logger.Error(ctx, "finish with error", method, statusAttr, durAttr)
		} else {
			logger.Info(ctx, "finish success", method, statusAttr, durAttr)
		}
	})
}
