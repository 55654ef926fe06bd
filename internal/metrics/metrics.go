// Package metrics collects and exposes Prometheus metrics for the
// monitoring loop and notification delivery.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder struct {
	registry      *prometheus.Registry
	cycles        prometheus.Counter
	probes        *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockbot_monitor_cycles_total",
			Help: "Completed monitoring cycles.",
		}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockbot_probes_total",
			Help: "Stock probes by result.",
		}, []string{"result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockbot_transitions_total",
			Help: "Observed availability transitions by kind.",
		}, []string{"kind"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockbot_notifications_total",
			Help: "Restock notifications by delivery kind and result.",
		}, []string{"kind", "result"}),
	}

	r.registry.MustRegister(r.cycles, r.probes, r.transitions, r.notifications)
	return r
}

func (r *Recorder) CycleComplete() {
	r.cycles.Inc()
}

func (r *Recorder) ProbeResult(result string) {
	r.probes.WithLabelValues(result).Inc()
}

func (r *Recorder) Transition(kind string) {
	r.transitions.WithLabelValues(kind).Inc()
}

func (r *Recorder) NotificationResult(kind, result string) {
	r.notifications.WithLabelValues(kind, result).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
