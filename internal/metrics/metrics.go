package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/ErlanBelekov/course-signup/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Notifications

	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signup",
		Name:      "notifications_total",
		Help:      "Confirmation notifications sent, by channel and outcome.",
	}, []string{"channel", "outcome"})

	RegistrationRollbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "signup",
		Name:      "registration_rollbacks_total",
		Help:      "Users deleted because registration failed after the insert.",
	})

	// Roster cleanup

	CleanupRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signup",
		Name:      "cleanup_runs_total",
		Help:      "Roster cleanup runs, by outcome.",
	}, []string{"outcome"})

	RosterEntriesClearedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "signup",
		Name:      "roster_entries_cleared_total",
		Help:      "Enrollment rows removed by the roster cleanup.",
	})

	// Auth

	RevokedTokens = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "signup",
		Name:      "revoked_tokens",
		Help:      "Token IDs currently held in the denylist.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "signup",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "signup",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPResponseBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "signup",
		Name:      "http_response_size_bytes",
		Help:      "HTTP response body size.",
		Buckets:   prometheus.ExponentialBuckets(64, 4, 7),
	}, []string{"method", "path"})
)

func Register() {
	prometheus.MustRegister(
		NotificationsTotal,
		RegistrationRollbacksTotal,
		CleanupRunsTotal,
		RosterEntriesClearedTotal,
		RevokedTokens,
		HTTPRequestDuration,
		HTTPRequestsTotal,
		HTTPResponseBytes,
	)
}

// NewServer serves /metrics plus liveness and readiness probes.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, res health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if res.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(res)
}
