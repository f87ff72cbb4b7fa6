package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "socialfeed"

// Home timeline read sources.
const (
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// Metrics groups the counters of the fan-out pipeline and the home read path.
// A nil *Metrics records nothing.
type Metrics struct {
	eventsProcessed *prometheus.CounterVec
	eventsDropped   *prometheus.CounterVec
	homeReads       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		eventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fanout",
			Name:      "events_processed_total",
			Help:      "Fan-out events applied to timeline caches.",
		}, []string{"kind"}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fanout",
			Name:      "events_dropped_total",
			Help:      "Fan-out events that failed and were discarded.",
		}, []string{"kind"}),
		homeReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timeline",
			Name:      "home_reads_total",
			Help:      "Home timeline pages served, by source.",
		}, []string{"source"}),
	}
	reg.MustRegister(m.eventsProcessed, m.eventsDropped, m.homeReads)
	return m
}

func (m *Metrics) EventProcessed(kind string) {
	if m == nil {
		return
	}
	m.eventsProcessed.WithLabelValues(kindLabel(kind)).Inc()
}

func (m *Metrics) EventDropped(kind string) {
	if m == nil {
		return
	}
	m.eventsDropped.WithLabelValues(kindLabel(kind)).Inc()
}

func (m *Metrics) HomeRead(source string) {
	if m == nil {
		return
	}
	m.homeReads.WithLabelValues(source).Inc()
}

func kindLabel(kind string) string {
	if kind == "" {
		return "undecodable"
	}
	return kind
}
