package httpapi

import "net/http"

// HealthzHandler reports process liveness only; it never touches the
// database, so it stays up even while readyz is failing.
func HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
