package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pointsd", Name: "logins_total", Help: "Login attempts by path and outcome",
	}, []string{"path", "outcome"})
	RequestsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pointsd", Name: "requests_submitted_total", Help: "Point requests submitted",
	})
	RequestsDisposed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pointsd", Name: "requests_disposed_total", Help: "Point requests disposed by decision",
	}, []string{"decision"})
	PendingRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pointsd", Name: "requests_pending", Help: "Point requests currently pending",
	})
	AuditFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pointsd", Name: "audit_failures_total", Help: "Swallowed audit log write failures",
	})
	LiveSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pointsd", Name: "live_subscribers", Help: "Active live-view subscribers",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pointsd", Name: "handler_errors_total", Help: "Handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pointsd", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(Logins, RequestsSubmitted, RequestsDisposed, PendingRequests,
		AuditFailures, LiveSubscribers, HandlerErrors, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
