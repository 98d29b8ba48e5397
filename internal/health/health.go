// Package health serves liveness and readiness probes.
package health

import "net/http"

// DatasetSource reports whether Earth orientation data is loaded.
type DatasetSource interface {
	Loaded() bool
}

// Healthz returns 200 "ok\n" unconditionally.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// Readyz returns 200 "ready\n" once src holds an EOP dataset and 503
// otherwise. Transforms with explicit polar motion work without one, but
// time-based requests do not.
func Readyz(src DatasetSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if !src.Loaded() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("eop data not loaded\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready\n"))
	}
}
