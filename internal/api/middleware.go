package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/recallhq/recall/internal/metrics"
	"github.com/recallhq/recall/internal/store"
)

// MetricsMiddleware records Prometheus metrics and an analytics row for every
// request. The analytics insert runs off the request path and its failures
// are only logged.
func (h *APIHandler) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}

		m := metrics.Get()
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

		entry := &store.RequestLog{
			Endpoint:   route,
			Method:     r.Method,
			StatusCode: ww.Status(),
			LatencyMs:  elapsed.Milliseconds(),
		}
		if userID, ok := userIDFromContext(r.Context()); ok {
			entry.UserID = &userID
		}
		go func() {
			if err := h.store.InsertRequestLog(entry); err != nil {
				log.Printf("Warning: could not record request log: %v", err)
			}
		}()
	})
}
