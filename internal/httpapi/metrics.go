package httpapi

import (
	"net/http"

	"github.com/mentionharness/harness/internal/observability"
)

// MetricsHandler serves a JSON snapshot of the in-process counters and
// gauges.
func MetricsHandler(reg *observability.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, reg.Snapshot())
	}
}

// MetricsPrometheusHandler serves the same registry in Prometheus text
// exposition format.
func MetricsPrometheusHandler(reg *observability.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(reg.RenderPrometheus()))
	}
}
