package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing, so components can run without instrumentation.
type Metrics struct {
	Registry           *prometheus.Registry
	SavedToggles       *prometheus.CounterVec
	ProfileSubmissions *prometheus.CounterVec
	SavedListStates    prometheus.Counter
	ActiveSessions     prometheus.Gauge
	RemoteLatency      *prometheus.HistogramVec
}

func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		SavedToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saved_toggles_total",
			Help:      "Saved-room toggle commands by outcome.",
		}, []string{"result"}),
		ProfileSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_submissions_total",
			Help:      "Profile submit commands by outcome.",
		}, []string{"result"}),
		SavedListStates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saved_list_states_total",
			Help:      "Distinct saved-list states emitted.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Open client sessions.",
		}),
		RemoteLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_call_latency_seconds",
			Help:      "Latency of remote store calls by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}

	registry.MustRegister(
		m.SavedToggles,
		m.ProfileSubmissions,
		m.SavedListStates,
		m.ActiveSessions,
		m.RemoteLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ToggleResult(result string) {
	if m == nil {
		return
	}
	m.SavedToggles.WithLabelValues(result).Inc()
}

func (m *Metrics) SubmissionResult(result string) {
	if m == nil {
		return
	}
	m.ProfileSubmissions.WithLabelValues(result).Inc()
}

func (m *Metrics) SavedListStateEmitted() {
	if m == nil {
		return
	}
	m.SavedListStates.Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

// ObserveRemote records the time elapsed since start for op.
func (m *Metrics) ObserveRemote(op string, start time.Time) {
	if m == nil {
		return
	}
	m.RemoteLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
