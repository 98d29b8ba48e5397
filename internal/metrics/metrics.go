package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stardome_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stardome_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	transformRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stardome_transform_requests_total",
			Help: "TEME to ITRS conversion requests by method and result.",
		},
		[]string{"method", "result"},
	)

	transformPositionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stardome_transform_positions_total",
			Help: "Positions converted from TEME to ITRS.",
		},
		[]string{"method"},
	)

	transformDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stardome_transform_duration_seconds",
			Help:    "Time spent converting one request's positions.",
			Buckets: []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 0.1, 1},
		},
		[]string{"method"},
	)

	eopDatasetAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stardome_eop_dataset_age_seconds",
			Help: "Seconds since the loaded Earth orientation dataset was fetched.",
		},
	)

	eopDatasetEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stardome_eop_dataset_entries",
			Help: "Daily rows in the loaded Earth orientation dataset.",
		},
	)

	eopFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stardome_eop_fetch_total",
			Help: "Earth orientation data fetch attempts by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(transformRequestsTotal)
	prometheus.MustRegister(transformPositionsTotal)
	prometheus.MustRegister(transformDurationSeconds)
	prometheus.MustRegister(eopDatasetAgeSeconds)
	prometheus.MustRegister(eopDatasetEntries)
	prometheus.MustRegister(eopFetchTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordTransform records one conversion request. method is "direct" or
// "matrix"; a non-nil err counts the request as an error and skips the
// position and duration series.
func RecordTransform(method string, positions int, d time.Duration, err error) {
	if err != nil {
		transformRequestsTotal.WithLabelValues(method, "error").Inc()
		return
	}
	transformRequestsTotal.WithLabelValues(method, "ok").Inc()
	transformPositionsTotal.WithLabelValues(method).Add(float64(positions))
	transformDurationSeconds.WithLabelValues(method).Observe(d.Seconds())
}

// SetEOPDatasetAge sets the age of the loaded EOP dataset.
func SetEOPDatasetAge(seconds float64) {
	eopDatasetAgeSeconds.Set(seconds)
}

// SetEOPDatasetEntries sets the row count of the loaded EOP dataset.
func SetEOPDatasetEntries(n int) {
	eopDatasetEntries.Set(float64(n))
}

// RecordEOPFetch counts one fetch attempt.
func RecordEOPFetch(err error) {
	if err != nil {
		eopFetchTotal.WithLabelValues("error").Inc()
		return
	}
	eopFetchTotal.WithLabelValues("ok").Inc()
}

// knownRoutes are the exact paths the server registers.
var knownRoutes = map[string]bool{
	"/":                                  true,
	"/healthz":                           true,
	"/readyz":                            true,
	"/metrics":                           true,
	"/api/v1/transform/teme-itrs":        true,
	"/api/v1/transform/teme-itrs/matrix": true,
	"/api/v1/eop/metadata":               true,
	"/api/v1/eop/fetch":                  true,
	"/api/v1/eop/orientation":            true,
}

// normalizeRoute maps a request path to a bounded label set. Unknown paths
// collapse to "other".
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
