package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Save outcomes reported by the app state.
const (
	SaveSaved      = "saved"
	SaveStale      = "stale"
	SaveFailed     = "failed"
	SaveIncomplete = "incomplete"
)

// Cache lookups of the catalog snapshot.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics holds the service collectors. A Metrics built without a registerer
// and a nil *Metrics both record nothing.
type Metrics struct {
	gateSaves      *prometheus.CounterVec
	activeSessions prometheus.Gauge
	transitions    *prometheus.CounterVec
	catalogCache   *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
	jobRuns        *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		gateSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gate_saves_total",
			Help: "Gate save attempts by result.",
		}, []string{"result"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wizard_sessions_active",
			Help: "Open gate configuration sessions.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wizard_transitions_total",
			Help: "Session state transitions by resulting view and gate status.",
		}, []string{"view", "gate_status"}),
		catalogCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_cache_lookups_total",
			Help: "Catalog snapshot cache lookups by result.",
		}, []string{"result"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "job_duration_seconds",
			Help:    "Duration of scheduled jobs in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "job_runs_total",
			Help: "Scheduled job executions by outcome.",
		}, []string{"job", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.gateSaves, m.activeSessions, m.transitions, m.catalogCache, m.jobDuration, m.jobRuns, m.httpRequests, m.httpDuration)
	return m
}

func (m *Metrics) GateSave(result string) {
	if m == nil || m.gateSaves == nil {
		return
	}
	m.gateSaves.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// WizardTransition records a session state change. An empty status means no gate is open.
func (m *Metrics) WizardTransition(view, gateStatus string) {
	if m == nil || m.transitions == nil {
		return
	}
	if gateStatus == "" {
		gateStatus = "none"
	}
	m.transitions.WithLabelValues(normalizeLabel(view), gateStatus).Inc()
}

func (m *Metrics) CatalogCache(result string) {
	if m == nil || m.catalogCache == nil {
		return
	}
	m.catalogCache.WithLabelValues(normalizeLabel(result)).Inc()
}

// JobRun records one execution of a scheduled job.
func (m *Metrics) JobRun(job string, d time.Duration, err error) {
	if m == nil || m.jobRuns == nil {
		return
	}
	job = normalizeLabel(job)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
	m.jobRuns.WithLabelValues(job, outcome).Inc()
}

// HTTPRequest records a served request. route is the chi route pattern.
func (m *Metrics) HTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	route = normalizeLabel(route)
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
