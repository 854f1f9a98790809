package animfsm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver exports controller activity as Prometheus metrics
type MetricsObserver struct {
	BaseObserver

	transitions      *prometheus.CounterVec
	stateEntries     *prometheus.CounterVec
	playbacks        *prometheus.CounterVec
	playbackDuration *prometheus.HistogramVec
	noTransition     *prometheus.CounterVec
	redundant        prometheus.Counter
	errors           prometheus.Counter
}

var _ ExtendedObserver = (*MetricsObserver)(nil)

// NewMetricsObserver creates the metrics and registers them on reg.
// namespace prefixes every metric name; an empty namespace is allowed.
func NewMetricsObserver(reg prometheus.Registerer, namespace string) (*MetricsObserver, error) {
	o := &MetricsObserver{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "animfsm_transitions_total",
			Help:      "Total number of fired transitions by from and to state",
		}, []string{"from", "to"}),
		stateEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "animfsm_state_entries_total",
			Help:      "Total number of state entries by state",
		}, []string{"state"}),
		playbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "animfsm_playbacks_total",
			Help:      "Total number of finished playbacks by animation and outcome (success or error)",
		}, []string{"animation", "outcome"}),
		playbackDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "animfsm_playback_duration_seconds",
			Help:      "Duration of playbacks by animation",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"animation"}),
		noTransition: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "animfsm_evaluations_without_transition_total",
			Help:      "Total number of evaluation passes that found no eligible transition",
		}, []string{"state"}),
		redundant: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "animfsm_redundant_playbacks_total",
			Help:      "Total number of play requests ignored because another animation was playing",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "animfsm_errors_total",
			Help:      "Total number of errors reported by controllers",
		}),
	}

	for _, c := range []prometheus.Collector{
		o.transitions, o.stateEntries, o.playbacks, o.playbackDuration,
		o.noTransition, o.redundant, o.errors,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// OnTransition counts fired transitions
func (o *MetricsObserver) OnTransition(from string, to string, _ *Transition) {
	o.transitions.WithLabelValues(from, to).Inc()
}

// OnStateEnter counts state entries
func (o *MetricsObserver) OnStateEnter(state string) {
	o.stateEntries.WithLabelValues(state).Inc()
}

// OnNoTransition counts no-op evaluation passes
func (o *MetricsObserver) OnNoTransition(state string) {
	o.noTransition.WithLabelValues(state).Inc()
}

// OnPlaybackFinished counts playbacks and records their duration
func (o *MetricsObserver) OnPlaybackFinished(animation string, _ string, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	o.playbacks.WithLabelValues(animation, outcome).Inc()
	o.playbackDuration.WithLabelValues(animation).Observe(elapsed.Seconds())
}

// OnRedundantPlayback counts dropped play requests
func (o *MetricsObserver) OnRedundantPlayback(string, string) {
	o.redundant.Inc()
}

// OnError counts errors
func (o *MetricsObserver) OnError(error) {
	o.errors.Inc()
}
