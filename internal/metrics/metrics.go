package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records barrier and heartbeat activity. A nil *Collector, or one
// built without a registerer, drops every observation.
type Collector struct {
	heartbeats  prometheus.Counter
	alerts      *prometheus.CounterVec
	toggles     *prometheus.CounterVec
	purged      prometheus.Counter
	jobDuration *prometheus.HistogramVec
	jobSuccess  *prometheus.CounterVec
	jobFailure  *prometheus.CounterVec
	requests    *prometheus.CounterVec
}

// New registers the collectors on the provided registerer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		return &Collector{}
	}
	c := &Collector{
		heartbeats: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyguard_heartbeats_recorded_total",
			Help: "Heartbeats appended to the log.",
		}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyguard_alerts_raised_total",
			Help: "Barrier alerts raised, by alert type.",
		}, []string{"type"}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyguard_barrier_toggles_total",
			Help: "Barrier toggles, by resulting state.",
		}, []string{"state"}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyguard_heartbeats_purged_total",
			Help: "Heartbeat rows removed by retention.",
		}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "job_duration_seconds",
			Help:    "Duration of background jobs in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		jobSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "job_success",
			Help: "Successful background job executions.",
		}, []string{"job"}),
		jobFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "job_failure",
			Help: "Failed background job executions.",
		}, []string{"job"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "studyguard_http_requests_total",
			Help: "HTTP requests served, by route pattern and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(c.heartbeats, c.alerts, c.toggles, c.purged, c.jobDuration, c.jobSuccess, c.jobFailure, c.requests)
	return c
}

func (c *Collector) HeartbeatRecorded() {
	if c == nil || c.heartbeats == nil {
		return
	}
	c.heartbeats.Inc()
}

func (c *Collector) AlertRaised(alertType string) {
	if c == nil || c.alerts == nil {
		return
	}
	c.alerts.WithLabelValues(normalizeLabel(alertType)).Inc()
}

func (c *Collector) BarrierToggled(active bool) {
	if c == nil || c.toggles == nil {
		return
	}
	state := "inactive"
	if active {
		state = "active"
	}
	c.toggles.WithLabelValues(state).Inc()
}

func (c *Collector) HeartbeatsPurged(n int64) {
	if c == nil || c.purged == nil || n <= 0 {
		return
	}
	c.purged.Add(float64(n))
}

// ObserveJob records the duration and outcome of one run of the named job.
func (c *Collector) ObserveJob(job string, duration time.Duration, err error) {
	if c == nil || c.jobDuration == nil {
		return
	}
	job = normalizeLabel(job)
	c.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
	if err != nil {
		c.jobFailure.WithLabelValues(job).Inc()
		return
	}
	c.jobSuccess.WithLabelValues(job).Inc()
}

func (c *Collector) RequestServed(route string, code string) {
	if c == nil || c.requests == nil {
		return
	}
	c.requests.WithLabelValues(normalizeLabel(route), code).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
